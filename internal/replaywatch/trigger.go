package replaywatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"launcher/internal/keystate"
	"launcher/internal/logging"
)

// KeyQuery reports whether the render key is held. keystate.Sampler
// satisfies it.
type KeyQuery interface {
	Held(ctx context.Context, key keystate.Key) (bool, error)
}

// Starter launches the renderer for one invocation without waiting for it
// to finish, returning the process id.
type Starter interface {
	Start(inv Invocation) (int, error)
}

// StarterFunc adapts a function to Starter.
type StarterFunc func(Invocation) (int, error)

func (f StarterFunc) Start(inv Invocation) (int, error) { return f(inv) }

// Render records one renderer launch attempt.
type Render struct {
	Invocation
	PID  int
	Err  error
	Time time.Time
}

// Trigger turns creation events into renderer launches while the render
// key is held. Events are handled one at a time in delivery order with no
// de-duplication.
type Trigger struct {
	Executable string
	Settings   string
	// Root is the watched directory; Pattern is matched against paths
	// relative to it. An empty Pattern accepts every entry.
	Root    string
	Pattern string
	Key     keystate.Key
	Keys    KeyQuery
	Starter Starter
	Logger  *slog.Logger
	// OnRender is called after every launch attempt. Optional.
	OnRender func(Render)
}

// Run consumes events until the channel closes or ctx is done.
func (t *Trigger) Run(ctx context.Context, events <-chan Event) {
	logger := t.logger()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				logger.Debug("replay event stream closed")
				return
			}
			t.Handle(ctx, ev)
		}
	}
}

// Handle applies the trigger policy to a single event and reports whether
// a renderer launch was attempted. A failed key query counts as not held.
func (t *Trigger) Handle(ctx context.Context, ev Event) bool {
	logger := t.logger()
	if !t.matches(ev.Path) {
		logger.Debug("replay event ignored; pattern mismatch",
			logging.String("path", ev.Path),
			logging.String("pattern", t.Pattern),
		)
		return false
	}

	held := false
	if t.Keys != nil {
		var err error
		held, err = t.Keys.Held(ctx, t.Key)
		if err != nil {
			logger.Debug("render key query failed; treating as not held",
				logging.String("key", t.Key.Name),
				logging.Error(err),
			)
			held = false
		}
	}
	if !held {
		logger.Debug("replay event ignored; render key not held",
			logging.String("path", ev.Path),
			logging.String("key", t.Key.Name),
		)
		return false
	}

	inv := NewInvocation(t.Executable, t.Settings, ev.Path)
	render := Render{Invocation: inv, Time: time.Now()}
	if t.Starter == nil {
		render.Err = errNoStarter
	} else {
		render.PID, render.Err = t.Starter.Start(inv)
	}
	if render.Err != nil {
		logging.WarnWithContext(logger, "renderer launch failed", "render_launch_failed",
			logging.String("replay", inv.ReplayPath),
			logging.Error(render.Err),
			logging.String(logging.FieldErrorHint, "check the danser install and settings profile"),
			logging.String(logging.FieldImpact, "replay was not rendered"),
		)
	} else {
		logger.Info("render started",
			logging.EventType("render_started"),
			logging.String("replay", inv.ReplayPath),
			logging.String("output", inv.OutputName),
			logging.String("settings", inv.Settings),
			logging.Int("pid", render.PID),
		)
	}
	if t.OnRender != nil {
		t.OnRender(render)
	}
	return true
}

func (t *Trigger) matches(path string) bool {
	if t.Pattern == "" {
		return true
	}
	rel := path
	if t.Root != "" {
		if r, err := filepath.Rel(t.Root, path); err == nil {
			rel = r
		}
	}
	ok, err := doublestar.Match(t.Pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

func (t *Trigger) logger() *slog.Logger {
	if t.Logger == nil {
		return logging.NewNop()
	}
	return t.Logger
}
