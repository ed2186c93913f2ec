package launchrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"launcher/internal/apps"
	"launcher/internal/config"
	"launcher/internal/deps"
	"launcher/internal/download"
	"launcher/internal/history"
	"launcher/internal/launcher"
	"launcher/internal/logging"
)

// ErrAlreadyRunning is returned when another launcher holds the run lock.
var ErrAlreadyRunning = errors.New("another launcher instance is already running")

// Mode selects how much of the run is performed.
type Mode int

const (
	// ModeRun downloads, launches, and waits for everything to exit.
	ModeRun Mode = iota
	// ModeDownload runs only the download phase.
	ModeDownload
)

// Options configures one launcher run.
type Options struct {
	Mode     Mode
	LogLevel string
	// Apps restricts ModeDownload to the named applications.
	Apps []string
	// Coordinator options are appended after the defaults.
	Coordinator []launcher.Option
}

// Result describes a finished run.
type Result struct {
	RunID       string
	LogPath     string
	Report      launcher.Report
	Interrupted bool
}

// Run performs one launcher run: it sets up logging and the history
// journal, takes the single-instance lock, and drives the coordinator. On
// SIGINT or SIGTERM it returns without waiting for launched applications.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) (Result, error) {
	if cfg == nil {
		return Result{}, fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return Result{}, err
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("launcher-%s.log", runID))
	logCfg := *cfg
	if strings.TrimSpace(opts.LogLevel) != "" {
		logCfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(&logCfg, logPath)
	if err != nil {
		return Result{}, fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.RunID(runID))

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update launcher.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "launcher-*.log", Exclude: []string{logPath}},
	)

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return Result{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return Result{}, ErrAlreadyRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release launcher lock", logging.Error(err))
		}
	}()

	catalog := apps.FromConfig(cfg)
	logDependencySnapshot(logger, catalog)

	coordOpts := []launcher.Option{
		launcher.WithLogger(logger),
		launcher.WithFetcher(download.NewClient(download.WithLogger(logger))),
	}
	var records *journal
	if store := openHistory(logger, cfg); store != nil {
		defer store.Close()
		records = newJournal(store)
		defer records.close()
		coordOpts = append(coordOpts, launcher.WithRecorder(records, runID))
	}
	coordOpts = append(coordOpts, opts.Coordinator...)
	coord := launcher.New(catalog.All(), coordOpts...)

	result := Result{RunID: runID, LogPath: logPath}
	if opts.Mode == ModeDownload {
		result.Report = launcher.Report{Outcomes: coord.Download(signalCtx, opts.Apps...)}
		logSummary(logger, result.Report)
		return result, nil
	}

	logger.Info("launcher run started",
		logging.EventType("run_started"),
		logging.String("log_path", logPath),
	)
	done := make(chan launcher.Report, 1)
	go func() { done <- coord.Run(signalCtx) }()

	select {
	case result.Report = <-done:
		logSummary(logger, result.Report)
	case <-signalCtx.Done():
		result.Interrupted = true
		attrs := []logging.Attr{logging.EventType("run_interrupted")}
		if records != nil && records.close() {
			attrs = append(attrs, logging.String("history", "outcomes after shutdown are not recorded"))
		}
		logger.Info("launcher shutting down; launched applications keep running", logging.Args(attrs...)...)
	}
	return result, nil
}

func openHistory(logger *slog.Logger, cfg *config.Config) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		attrs := append([]logging.Attr{logging.Error(err), logging.String("path", cfg.HistoryPath())},
			logging.Guidance("check permissions on the state directory", "this run will not be recorded")...)
		logging.WarnWithContext(logger, "history journal unavailable", "history_open_failed", attrs...)
		return nil
	}
	return store
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "launcher.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func logDependencySnapshot(logger *slog.Logger, catalog apps.Catalog) {
	statuses := deps.CheckApplications(catalog.All())
	attrs := []logging.Attr{
		logging.EventType("dependency_snapshot"),
		logging.Int("ready", deps.Ready(statuses)),
	}
	for _, status := range statuses {
		attrs = append(attrs, logging.String(status.Name, status.Detail))
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}

func logSummary(logger *slog.Logger, report launcher.Report) {
	failures := report.Failures()
	attrs := []logging.Attr{
		logging.EventType("run_finished"),
		logging.Int("outcomes", len(report.Outcomes)),
		logging.Int("failures", len(failures)),
	}
	if len(failures) == 0 {
		logger.Info("launcher run finished", logging.Args(attrs...)...)
		return
	}
	names := make([]string, 0, len(failures))
	for _, f := range failures {
		names = append(names, f.App+"/"+f.Stage)
	}
	attrs = append(attrs, logging.String("failed", strings.Join(names, ", ")))
	attrs = append(attrs, logging.Guidance("see the warnings above for each failed step", "some applications did not run")...)
	logging.WarnWithContext(logger, "launcher run finished with failures", "run_finished", attrs...)
}
