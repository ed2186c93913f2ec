package replaywatch

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"launcher/internal/keystate"
)

type fakeKeys struct {
	held bool
	err  error
}

func (f fakeKeys) Held(context.Context, keystate.Key) (bool, error) { return f.held, f.err }

type recordingStarter struct {
	mu    sync.Mutex
	calls []Invocation
	err   error
}

func (r *recordingStarter) Start(inv Invocation) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, inv)
	if r.err != nil {
		return 0, r.err
	}
	return 1000 + len(r.calls), nil
}

func (r *recordingStarter) invocations() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Invocation(nil), r.calls...)
}

func newTestTrigger(dir string, keys KeyQuery, starter Starter) *Trigger {
	return &Trigger{
		Executable: "/opt/danser/danser-cli.exe",
		Settings:   "default",
		Root:       dir,
		Key:        keystate.Key{Name: "R", VK: 0x52, Code: 19},
		Keys:       keys,
		Starter:    starter,
	}
}

func feed(t *testing.T, trig *Trigger, paths ...string) {
	t.Helper()
	events := make(chan Event, len(paths))
	for _, p := range paths {
		events <- Event{Path: p}
	}
	close(events)
	trig.Run(context.Background(), events)
}

func TestTriggerKeyHeldIssuesOneInvocation(t *testing.T) {
	dir := "/games/osu/Replays"
	starter := &recordingStarter{}
	feed(t, newTestTrigger(dir, fakeKeys{held: true}, starter), filepath.Join(dir, "replay1.osr"))

	calls := starter.invocations()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one invocation, got %d", len(calls))
	}
	want := []string{
		"--out=replay1.osr",
		"--settings=default",
		"--replay=" + filepath.Join(dir, "replay1.osr"),
		"--quickstart",
	}
	if got := calls[0].Args(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", got, want)
	}
	if calls[0].Executable != "/opt/danser/danser-cli.exe" {
		t.Fatalf("unexpected executable %q", calls[0].Executable)
	}
}

func TestTriggerKeyNotHeldIssuesNothing(t *testing.T) {
	starter := &recordingStarter{}
	feed(t, newTestTrigger("/r", fakeKeys{held: false}, starter), "/r/replay1.osr")
	if n := len(starter.invocations()); n != 0 {
		t.Fatalf("expected zero invocations, got %d", n)
	}
}

func TestTriggerKeyQueryErrorCountsAsNotHeld(t *testing.T) {
	starter := &recordingStarter{}
	trig := newTestTrigger("/r", fakeKeys{held: true, err: errors.New("no input access")}, starter)
	if trig.Handle(context.Background(), Event{Path: "/r/a.osr"}) {
		t.Fatal("expected no launch when the key query fails")
	}
	if n := len(starter.invocations()); n != 0 {
		t.Fatalf("expected zero invocations, got %d", n)
	}
}

func TestTriggerRepeatedEventsAreNotDeduplicated(t *testing.T) {
	starter := &recordingStarter{}
	feed(t, newTestTrigger("/r", fakeKeys{held: true}, starter), "/r/a.osr", "/r/a.osr", "/r/b.osr")
	calls := starter.invocations()
	if len(calls) != 3 {
		t.Fatalf("expected three invocations, got %d", len(calls))
	}
	if calls[2].OutputName != "b.osr" {
		t.Fatalf("expected delivery order preserved, got %v", calls)
	}
}

func TestTriggerPatternFilter(t *testing.T) {
	starter := &recordingStarter{}
	trig := newTestTrigger("/r", fakeKeys{held: true}, starter)
	trig.Pattern = "**/*.osr"
	feed(t, trig, "/r/notes.txt", "/r/sub/deep.osr", "/r/top.osr")
	calls := starter.invocations()
	if len(calls) != 2 {
		t.Fatalf("expected two matching invocations, got %d", len(calls))
	}
	if calls[0].OutputName != "deep.osr" || calls[1].OutputName != "top.osr" {
		t.Fatalf("unexpected invocations %v", calls)
	}
}

func TestTriggerLaunchFailureKeepsWatching(t *testing.T) {
	starter := &recordingStarter{err: errors.New("exec format error")}
	var renders []Render
	trig := newTestTrigger("/r", fakeKeys{held: true}, starter)
	trig.OnRender = func(r Render) { renders = append(renders, r) }
	feed(t, trig, "/r/a.osr", "/r/b.osr")

	if len(renders) != 2 {
		t.Fatalf("expected both events handled after a failure, got %d", len(renders))
	}
	for _, r := range renders {
		if r.Err == nil {
			t.Fatalf("expected launch error recorded, got %+v", r)
		}
	}
}

func TestTriggerRunStopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	trig := newTestTrigger("/r", fakeKeys{held: true}, &recordingStarter{})
	done := make(chan struct{})
	go func() {
		trig.Run(ctx, make(chan Event))
		close(done)
	}()
	<-done
}

func TestInvocationArgs(t *testing.T) {
	inv := NewInvocation("/d/danser-cli.exe", "highres", "/r/sub/My Replay.osr")
	want := []string{"--out=My Replay.osr", "--settings=highres", "--replay=/r/sub/My Replay.osr", "--quickstart"}
	if got := inv.Args(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
