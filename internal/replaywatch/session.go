package replaywatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"launcher/internal/apps"
	"launcher/internal/fileutil"
	"launcher/internal/keystate"
	"launcher/internal/logging"
)

var (
	// ErrNotApplicable means the renderer is not configured well enough to
	// watch for replays. It is not a failure.
	ErrNotApplicable = errors.New("replay watch not applicable")

	errNoStarter = errors.New("no renderer starter configured")
)

// Options configure a watch session.
type Options struct {
	Renderer *apps.Renderer
	Logger   *slog.Logger
	// Keys overrides the platform key checker.
	Keys keystate.Checker
	// Starter overrides how the renderer is launched.
	Starter  Starter
	OnRender func(Render)
}

// Session is a running replay watch. It ends only when its context is
// done or Close is called.
type Session struct {
	sub  *Subscription
	done chan struct{}
}

// CheckPreconditions reports why the renderer cannot be watched, wrapped in
// ErrNotApplicable, or nil when it can.
func CheckPreconditions(renderer *apps.Renderer) error {
	switch {
	case renderer == nil:
		return fmt.Errorf("%w: renderer not configured", ErrNotApplicable)
	case !renderer.Enabled():
		return fmt.Errorf("%w: renderer disabled", ErrNotApplicable)
	case !apps.ExecutableExists(renderer):
		return fmt.Errorf("%w: renderer executable missing", ErrNotApplicable)
	case strings.TrimSpace(renderer.SettingsName) == "":
		return fmt.Errorf("%w: settings profile not set", ErrNotApplicable)
	case strings.TrimSpace(renderer.ReplaysDir) == "":
		return fmt.Errorf("%w: replay directory not set", ErrNotApplicable)
	case !fileutil.DirExists(renderer.ReplaysDir):
		return fmt.Errorf("%w: replay directory %s does not exist", ErrNotApplicable, renderer.ReplaysDir)
	}
	return nil
}

// Start checks the renderer preconditions, subscribes to the replay
// directory, and runs the trigger loop in the background. Errors wrapping
// ErrNotApplicable mean the watch was skipped; any other error means it
// could not be established and is not retried.
func Start(ctx context.Context, opts Options) (*Session, error) {
	if err := CheckPreconditions(opts.Renderer); err != nil {
		return nil, err
	}
	renderer := opts.Renderer
	logger := logging.NewComponentLogger(opts.Logger, "replay-watch")

	key, err := keystate.Parse(renderer.RenderKey)
	if err != nil {
		return nil, fmt.Errorf("render key: %w", err)
	}
	checker := opts.Keys
	if checker == nil {
		checker = systemChecker(renderer.RenderKeyDevice, logger)
	}
	executable, err := apps.ExecutablePath(renderer)
	if err != nil {
		return nil, err
	}
	starter := opts.Starter
	if starter == nil {
		starter = spawnStarter{app: renderer, logger: logger}
	}

	sub, err := Subscribe(renderer.ReplaysDir, opts.Logger)
	if err != nil {
		return nil, err
	}

	trigger := &Trigger{
		Executable: executable,
		Settings:   renderer.SettingsName,
		Root:       sub.Root(),
		Pattern:    renderer.ReplayPattern,
		Key:        key,
		Keys: keystate.Sampler{
			Checker:  checker,
			Window:   renderer.KeySampleWindow,
			Interval: renderer.KeySampleInterval,
		},
		Starter:  starter,
		Logger:   logger,
		OnRender: opts.OnRender,
	}

	s := &Session{sub: sub, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		defer sub.Close()
		trigger.Run(ctx, sub.Events())
	}()

	logger.Info("replay watch started",
		logging.EventType("replay_watch_started"),
		logging.String("dir", sub.Root()),
		logging.String("key", key.Name),
		logging.String("settings", renderer.SettingsName),
		logging.Duration("key_window", renderer.KeySampleWindow),
	)
	return s, nil
}

// Wait blocks until the session ends. It always returns nil; a watch has
// no failure outcome once started.
func (s *Session) Wait() error {
	<-s.done
	return nil
}

// Close stops watching and waits for the trigger loop to exit.
func (s *Session) Close() error {
	err := s.sub.Close()
	<-s.done
	return err
}

// systemChecker returns the platform key checker. When none is available
// the returned checker fails every query, which the trigger reads as "not
// held", so the watch still runs.
func systemChecker(device string, logger *slog.Logger) keystate.Checker {
	checker, err := keystate.NewSystem(device)
	if err == nil {
		return checker
	}
	logging.WarnWithContext(logger, "render key state unavailable", "key_state_unavailable",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "set render_key_device or check input device permissions"),
		logging.String(logging.FieldImpact, "replays will not trigger renders until the key can be read"),
	)
	return keystate.CheckerFunc(func(keystate.Key) (bool, error) { return false, err })
}

// spawnStarter launches the renderer through apps.Spawn and reaps it in the
// background so the watch loop never blocks on a render.
type spawnStarter struct {
	app    apps.Application
	logger *slog.Logger
}

func (s spawnStarter) Start(inv Invocation) (int, error) {
	proc, err := apps.Spawn(s.app, inv.Args()...)
	if err != nil {
		return 0, err
	}
	go func() {
		code, err := proc.Wait()
		if err != nil {
			s.logger.Debug("renderer wait failed", logging.String("replay", inv.ReplayPath), logging.Error(err))
			return
		}
		s.logger.Info("render finished",
			logging.EventType("render_finished"),
			logging.String("output", inv.OutputName),
			logging.Int("exit_code", code),
		)
	}()
	return proc.PID(), nil
}
