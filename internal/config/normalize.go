package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Osu.Path) == "" {
		c.Osu.Path = defaultOsuPath()
	}
	for _, entry := range []struct {
		key string
		app *App
	}{
		{"osu", &c.Osu},
		{"rewind", &c.Rewind},
		{"danser", &c.Danser.App},
		{"open_tablet_driver", &c.OpenTabletDriver},
		{"osu_trainer", &c.OsuTrainer},
	} {
		if err := normalizeApp(entry.key, entry.app); err != nil {
			return err
		}
	}
	if err := c.normalizeDanser(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

// normalizeApp trims fields and expands the install path. A whitespace-only
// path collapses to empty, which downstream code treats as unset.
func normalizeApp(key string, app *App) error {
	var err error
	app.Path = strings.TrimSpace(app.Path)
	if app.Path, err = expandPath(app.Path); err != nil {
		return fmt.Errorf("%s.path: %w", key, err)
	}
	app.ExecutableName = strings.TrimSpace(app.ExecutableName)
	app.DownloadURL = strings.TrimSpace(app.DownloadURL)
	return nil
}

func (c *Config) normalizeDanser() error {
	var err error
	c.Danser.SettingsName = strings.TrimSpace(c.Danser.SettingsName)
	c.Danser.ReplaysDir = strings.TrimSpace(c.Danser.ReplaysDir)
	if c.Danser.ReplaysDir == "" && c.Osu.Path != "" {
		c.Danser.ReplaysDir = filepath.Join(c.Osu.Path, replaysSubdir)
	}
	if c.Danser.ReplaysDir, err = expandPath(c.Danser.ReplaysDir); err != nil {
		return fmt.Errorf("danser.replays_dir: %w", err)
	}
	c.Danser.RenderKey = strings.ToUpper(strings.TrimSpace(c.Danser.RenderKey))
	if c.Danser.RenderKey == "" {
		c.Danser.RenderKey = defaultRenderKey
	}
	c.Danser.RenderKeyDevice = strings.TrimSpace(c.Danser.RenderKeyDevice)
	if c.Danser.KeySampleWindowMS < 0 {
		c.Danser.KeySampleWindowMS = 0
	}
	if c.Danser.KeySampleIntervalMS <= 0 {
		c.Danser.KeySampleIntervalMS = defaultKeySampleIntervalMS
	}
	c.Danser.ReplayPattern = strings.TrimSpace(c.Danser.ReplayPattern)
	return nil
}

func (c *Config) normalizeHistory() error {
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("LAUNCHER_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
