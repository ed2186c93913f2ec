package testsupport

import (
	"path/filepath"
	"testing"

	"launcher/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory. Every
// app path points below <base>/apps and nothing is downloadable unless an
// option sets a URL.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	cfgVal.Osu.Path = filepath.Join(base, "osu")
	cfgVal.Danser.ReplaysDir = filepath.Join(base, "osu", "Replays")
	for name, app := range map[string]*config.App{
		"rewind":             &cfgVal.Rewind,
		"danser":             &cfgVal.Danser.App,
		"open_tablet_driver": &cfgVal.OpenTabletDriver,
		"osu_trainer":        &cfgVal.OsuTrainer,
	} {
		app.Path = filepath.Join(base, "apps", name)
		app.DownloadURL = ""
	}
	cfgVal.Logging.RetentionDays = 0

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithApp edits one app section by its config name.
func WithApp(name string, edit func(*config.App)) ConfigOption {
	return func(b *configBuilder) {
		var target *config.App
		switch name {
		case "osu":
			target = &b.cfg.Osu
		case "rewind":
			target = &b.cfg.Rewind
		case "danser":
			target = &b.cfg.Danser.App
		case "open_tablet_driver":
			target = &b.cfg.OpenTabletDriver
		case "osu_trainer":
			target = &b.cfg.OsuTrainer
		default:
			b.t.Fatalf("unknown app %q", name)
		}
		edit(target)
	}
}

// WithDanser edits the renderer section.
func WithDanser(edit func(*config.Danser)) ConfigOption {
	return func(b *configBuilder) {
		edit(&b.cfg.Danser)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
