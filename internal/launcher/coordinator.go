package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"launcher/internal/apps"
	"launcher/internal/download"
	"launcher/internal/history"
	"launcher/internal/logging"
	"launcher/internal/replaywatch"
)

// Handle is something the coordinator waits on: a spawned process or a
// replay watch session.
type Handle interface {
	Wait() (int, error)
}

// Recorder persists outcomes and renders. *history.Store satisfies it.
type Recorder interface {
	RecordOutcome(ctx context.Context, outcome history.Outcome) error
	RecordRender(ctx context.Context, entry history.RenderEntry) error
}

// Coordinator drives the download and launch phases over a fixed set of
// applications. No single application's failure stops the others.
type Coordinator struct {
	apps     []apps.Application
	fetcher  apps.Fetcher
	extract  func(archive string) (int, error)
	spawn    func(app apps.Application) (Handle, error)
	watch    func(ctx context.Context, renderer *apps.Renderer) (Handle, error)
	base     *slog.Logger
	logger   *slog.Logger
	recorder Recorder
	runID    string
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithFetcher sets the archive fetcher used in the download phase.
func WithFetcher(f apps.Fetcher) Option { return func(c *Coordinator) { c.fetcher = f } }

// WithExtractor replaces archive unpacking.
func WithExtractor(fn func(string) (int, error)) Option {
	return func(c *Coordinator) { c.extract = fn }
}

// WithSpawner replaces process launching.
func WithSpawner(fn func(apps.Application) (Handle, error)) Option {
	return func(c *Coordinator) { c.spawn = fn }
}

// WithWatcher replaces how the renderer's replay watch is started.
func WithWatcher(fn func(context.Context, *apps.Renderer) (Handle, error)) Option {
	return func(c *Coordinator) { c.watch = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.base = logger
		c.logger = logging.NewComponentLogger(logger, "coordinator")
	}
}

// WithRecorder journals every outcome and render.
func WithRecorder(r Recorder, runID string) Option {
	return func(c *Coordinator) {
		c.recorder = r
		c.runID = runID
	}
}

// New builds a coordinator for list. Applications are never added or
// removed afterwards.
func New(list []apps.Application, opts ...Option) *Coordinator {
	c := &Coordinator{
		apps:    slices.Clone(list),
		fetcher: download.NewClient(),
		extract: download.Extract,
		logger:  logging.NewComponentLogger(nil, "coordinator"),
	}
	c.spawn = spawnProcess
	c.watch = c.startWatch
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run downloads what is missing, launches what is enabled, and blocks until
// every launched process has exited and any replay watch has ended.
func (c *Coordinator) Run(ctx context.Context) Report {
	var report Report
	report.Outcomes = append(report.Outcomes, c.Download(ctx)...)
	launched, pending := c.Launch(ctx)
	report.Outcomes = append(report.Outcomes, launched...)
	report.Outcomes = append(report.Outcomes, c.Wait(ctx, pending)...)
	return report
}

type downloadResult struct {
	archive string
	err     error
}

// Download runs phase one. Every downloadable application is fetched
// concurrently; once all fetches have settled each archive is unpacked in
// place. When names are given only those applications are considered.
func (c *Coordinator) Download(ctx context.Context, names ...string) []Outcome {
	var candidates []apps.Application
	for _, app := range c.apps {
		if len(names) > 0 && !slices.Contains(names, app.Name()) {
			continue
		}
		if apps.CanDownload(app) {
			candidates = append(candidates, app)
		}
	}
	if len(candidates) == 0 {
		c.logger.Debug("nothing to download")
		return nil
	}

	results := make([]downloadResult, len(candidates))
	var wg sync.WaitGroup
	for i, app := range candidates {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.logger.Info("downloading", logging.App(app.Name()), logging.Stage(StageDownload), logging.String("url", app.DownloadURL()))
			archive, err := apps.Download(ctx, app, c.fetcher)
			results[i] = downloadResult{archive: archive, err: err}
		}()
	}
	wg.Wait()

	outcomes := make([]Outcome, 0, len(candidates)*2)
	for i, app := range candidates {
		res := results[i]
		if res.err != nil {
			outcomes = append(outcomes, c.report(ctx, failed(app.Name(), StageDownload, res.err)))
			continue
		}
		outcomes = append(outcomes, c.report(ctx, succeeded(app.Name(), StageDownload, res.archive)))

		files, err := c.extract(res.archive)
		if err != nil {
			outcomes = append(outcomes, c.report(ctx, failed(app.Name(), StageUnpack, err)))
			continue
		}
		outcomes = append(outcomes, c.report(ctx, succeeded(app.Name(), StageUnpack, fmt.Sprintf("%d files", files))))
	}
	return outcomes
}

// Pending is a launched process or watch session still to be joined.
type Pending struct {
	App    string
	Stage  string
	Handle Handle
}

// Launch runs phase two against the post-download state. Every
// application except the renderer is spawned; the renderer instead gets a
// replay watch when its preconditions hold. It returns the launch
// outcomes and the handles still to be awaited.
func (c *Coordinator) Launch(ctx context.Context) ([]Outcome, []Pending) {
	outcomes := make([]Outcome, 0, len(c.apps))
	var pending []Pending
	for _, app := range c.apps {
		if renderer, ok := app.(*apps.Renderer); ok {
			handle, err := c.watch(ctx, renderer)
			switch {
			case errors.Is(err, replaywatch.ErrNotApplicable):
				outcomes = append(outcomes, c.report(ctx, skipped(app.Name(), StageWatch, err.Error())))
			case err != nil:
				outcomes = append(outcomes, c.report(ctx, failed(app.Name(), StageWatch, err)))
			default:
				outcomes = append(outcomes, c.report(ctx, succeeded(app.Name(), StageWatch, renderer.ReplaysDir)))
				pending = append(pending, Pending{App: app.Name(), Stage: StageWatch, Handle: handle})
			}
			continue
		}

		handle, err := c.spawn(app)
		switch {
		case err != nil && !app.Enabled():
			outcomes = append(outcomes, c.report(ctx, skipped(app.Name(), StageLaunch, "disabled")))
		case err != nil:
			outcomes = append(outcomes, c.report(ctx, failed(app.Name(), StageLaunch, err)))
		default:
			o := succeeded(app.Name(), StageLaunch, "")
			if p, ok := handle.(interface{ PID() int }); ok {
				o.PID = p.PID()
			}
			outcomes = append(outcomes, c.report(ctx, o))
			pending = append(pending, Pending{App: app.Name(), Stage: StageWait, Handle: handle})
		}
	}
	return outcomes, pending
}

// Wait joins every pending handle. It returns only after all of them have
// resolved, whether by exit or by a failed wait.
func (c *Coordinator) Wait(ctx context.Context, pending []Pending) []Outcome {
	results := make([]Outcome, len(pending))
	var wg sync.WaitGroup
	for i, p := range pending {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := p.Handle.Wait()
			var o Outcome
			switch {
			case err != nil:
				o = failed(p.App, StageWait, err)
			case p.Stage == StageWatch:
				o = succeeded(p.App, StageWait, "watch ended")
			default:
				o = succeeded(p.App, StageWait, fmt.Sprintf("exit code %d", code))
				o.ExitCode = code
			}
			results[i] = c.report(ctx, o)
		}()
	}
	wg.Wait()
	return results
}

func spawnProcess(app apps.Application) (Handle, error) {
	proc, err := apps.Spawn(app)
	if err != nil {
		return nil, err
	}
	return proc, nil
}

type sessionHandle struct {
	session *replaywatch.Session
}

func (h sessionHandle) Wait() (int, error) {
	return 0, h.session.Wait()
}

func (c *Coordinator) startWatch(ctx context.Context, renderer *apps.Renderer) (Handle, error) {
	session, err := replaywatch.Start(ctx, replaywatch.Options{
		Renderer: renderer,
		Logger:   c.base,
		OnRender: func(r replaywatch.Render) { c.recordRender(ctx, r) },
	})
	if err != nil {
		return nil, err
	}
	return sessionHandle{session: session}, nil
}
