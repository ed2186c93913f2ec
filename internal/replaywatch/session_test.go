package replaywatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"launcher/internal/apps"
	"launcher/internal/config"
	"launcher/internal/keystate"
	"launcher/internal/logging"
	"launcher/internal/testsupport"
)

func waitEvent(t *testing.T, events <-chan Event, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event stream closed before %s", want)
			}
			if ev.Path == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %s", want)
		}
	}
}

func TestSubscribeReportsCreationsRecursively(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing")
	if err := os.MkdirAll(existing, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	sub, err := Subscribe(root, logging.NewNop())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	top := filepath.Join(sub.Root(), "top.osr")
	if err := os.WriteFile(top, []byte("r"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitEvent(t, sub.Events(), top)

	inExisting := filepath.Join(sub.Root(), "existing", "a.osr")
	if err := os.WriteFile(inExisting, []byte("r"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitEvent(t, sub.Events(), inExisting)

	fresh := filepath.Join(sub.Root(), "fresh")
	if err := os.Mkdir(fresh, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	waitEvent(t, sub.Events(), fresh)
	inFresh := filepath.Join(fresh, "b.osr")
	if err := os.WriteFile(inFresh, []byte("r"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitEvent(t, sub.Events(), inFresh)
}

func TestSubscribeReportsFilesInsideMovedDirectory(t *testing.T) {
	root := t.TempDir()
	staging := filepath.Join(t.TempDir(), "batch")
	for _, rel := range []string{"one.osr", filepath.Join("nested", "two.osr")} {
		path := filepath.Join(staging, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("r"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	sub, err := Subscribe(root, logging.NewNop())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	moved := filepath.Join(sub.Root(), "batch")
	if err := os.Rename(staging, moved); err != nil {
		t.Skipf("cannot move across temp dirs: %v", err)
	}
	waitEvent(t, sub.Events(), moved)
	waitEvent(t, sub.Events(), filepath.Join(moved, "nested"))
	waitEvent(t, sub.Events(), filepath.Join(moved, "nested", "two.osr"))
	waitEvent(t, sub.Events(), filepath.Join(moved, "one.osr"))

	later := filepath.Join(moved, "nested", "three.osr")
	if err := os.WriteFile(later, []byte("r"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitEvent(t, sub.Events(), later)
}

func TestSubscribeMissingDirectory(t *testing.T) {
	if _, err := Subscribe(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestSubscriptionCloseClosesEvents(t *testing.T) {
	sub, err := Subscribe(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-sub.Events(); ok {
		t.Fatal("expected closed event channel")
	}
	_ = sub.Close()
}

func newRenderer(t *testing.T, edit func(*config.Danser)) *apps.Renderer {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithDanser(func(d *config.Danser) {
		d.Enabled = true
		d.SettingsName = "default"
		d.KeySampleWindowMS = 0
		if edit != nil {
			edit(d)
		}
	}))
	if err := os.MkdirAll(cfg.Danser.ReplaysDir, 0o755); err != nil {
		t.Fatalf("mkdir replays: %v", err)
	}
	exe := filepath.Join(cfg.Danser.Path, cfg.Danser.ExecutableName)
	testsupport.WriteExecutable(t, exe, "exit 0")
	return apps.NewRenderer(cfg.Danser)
}

func TestCheckPreconditions(t *testing.T) {
	cases := map[string]func(*config.Danser){
		"disabled":       func(d *config.Danser) { d.Enabled = false },
		"no settings":    func(d *config.Danser) { d.SettingsName = "" },
		"no replays dir": func(d *config.Danser) { d.ReplaysDir = "" },
	}
	for name, edit := range cases {
		t.Run(name, func(t *testing.T) {
			renderer := newRenderer(t, nil)
			cfgCopy := config.Danser{
				App:          config.App{Enabled: renderer.Enabled(), Path: renderer.Path(), ExecutableName: renderer.ExecutableName()},
				SettingsName: renderer.SettingsName,
				ReplaysDir:   renderer.ReplaysDir,
				RenderKey:    "R",
			}
			edit(&cfgCopy)
			if err := CheckPreconditions(apps.NewRenderer(cfgCopy)); !errors.Is(err, ErrNotApplicable) {
				t.Fatalf("expected ErrNotApplicable, got %v", err)
			}
		})
	}

	missingExe := newRenderer(t, nil)
	if err := os.Remove(filepath.Join(missingExe.Path(), missingExe.ExecutableName())); err != nil {
		t.Fatalf("remove exe: %v", err)
	}
	if err := CheckPreconditions(missingExe); !errors.Is(err, ErrNotApplicable) {
		t.Fatalf("expected ErrNotApplicable for missing executable, got %v", err)
	}

	goneDir := newRenderer(t, nil)
	if err := os.RemoveAll(goneDir.ReplaysDir); err != nil {
		t.Fatalf("remove replays: %v", err)
	}
	if err := CheckPreconditions(goneDir); !errors.Is(err, ErrNotApplicable) {
		t.Fatalf("expected ErrNotApplicable for missing replay dir, got %v", err)
	}

	if err := CheckPreconditions(newRenderer(t, nil)); err != nil {
		t.Fatalf("expected preconditions to hold, got %v", err)
	}
}

func TestStartRendersNewReplayWhileKeyHeld(t *testing.T) {
	renderer := newRenderer(t, nil)
	starter := &recordingStarter{}
	rendered := make(chan Render, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session, err := Start(ctx, Options{
		Renderer: renderer,
		Logger:   logging.NewNop(),
		Keys:     keystate.CheckerFunc(func(keystate.Key) (bool, error) { return true, nil }),
		Starter:  starter,
		OnRender: func(r Render) { rendered <- r },
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	replay := filepath.Join(renderer.ReplaysDir, "replay1.osr")
	if err := os.WriteFile(replay, []byte("osr"), 0o644); err != nil {
		t.Fatalf("write replay: %v", err)
	}

	select {
	case r := <-rendered:
		if r.Err != nil {
			t.Fatalf("unexpected render error: %v", r.Err)
		}
		if r.OutputName != "replay1.osr" || r.Settings != "default" {
			t.Fatalf("unexpected invocation %+v", r.Invocation)
		}
		if filepath.Base(r.ReplayPath) != "replay1.osr" || !filepath.IsAbs(r.ReplayPath) {
			t.Fatalf("expected absolute replay path, got %q", r.ReplayPath)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for render")
	}

	cancel()
	waited := make(chan error, 1)
	go func() { waited <- session.Wait() }()
	select {
	case err := <-waited:
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end after cancellation")
	}
}

func TestStartRunsWithoutReadableKeyboard(t *testing.T) {
	renderer := newRenderer(t, func(d *config.Danser) {
		d.RenderKeyDevice = filepath.Join(t.TempDir(), "missing-event-kbd")
	})
	starter := &recordingStarter{}
	rendered := make(chan Render, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session, err := Start(ctx, Options{
		Renderer: renderer,
		Logger:   logging.NewNop(),
		Starter:  starter,
		OnRender: func(r Render) { rendered <- r },
	})
	if err != nil {
		t.Fatalf("watch must start even when the key cannot be read: %v", err)
	}
	defer session.Close()

	replay := filepath.Join(renderer.ReplaysDir, "unheld.osr")
	if err := os.WriteFile(replay, []byte("osr"), 0o644); err != nil {
		t.Fatalf("write replay: %v", err)
	}
	select {
	case r := <-rendered:
		t.Fatalf("unreadable key must count as not held, got render %+v", r.Invocation)
	case <-time.After(300 * time.Millisecond):
	}
	if calls := starter.invocations(); len(calls) != 0 {
		t.Fatalf("expected no renderer launches, got %d", len(calls))
	}
}

func TestSystemCheckerFallsBackToNotHeld(t *testing.T) {
	checker := systemChecker(filepath.Join(t.TempDir(), "missing-event-kbd"), logging.NewNop())
	key, err := keystate.Parse("R")
	if err != nil {
		t.Fatal(err)
	}
	if held, _ := checker.Held(key); held {
		t.Fatal("expected an unreadable device to read as not held")
	}
}

func TestStartNotApplicableWhenDisabled(t *testing.T) {
	renderer := newRenderer(t, func(d *config.Danser) { d.Enabled = false })
	_, err := Start(context.Background(), Options{Renderer: renderer})
	if !errors.Is(err, ErrNotApplicable) {
		t.Fatalf("expected ErrNotApplicable, got %v", err)
	}
}

func TestStartRejectsUnknownKey(t *testing.T) {
	renderer := newRenderer(t, func(d *config.Danser) { d.RenderKey = "HYPER" })
	_, err := Start(context.Background(), Options{
		Renderer: renderer,
		Keys:     keystate.CheckerFunc(func(keystate.Key) (bool, error) { return false, nil }),
	})
	if err == nil || errors.Is(err, ErrNotApplicable) {
		t.Fatalf("expected a key configuration error, got %v", err)
	}
}
