package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	for _, entry := range []struct {
		key string
		app App
	}{
		{"osu", c.Osu},
		{"rewind", c.Rewind},
		{"danser", c.Danser.App},
		{"open_tablet_driver", c.OpenTabletDriver},
		{"osu_trainer", c.OsuTrainer},
	} {
		if err := validateApp(entry.key, entry.app); err != nil {
			return err
		}
	}
	if err := c.validateDanser(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func validateApp(key string, app App) error {
	if app.DownloadURL == "" {
		return nil
	}
	parsed, err := url.Parse(app.DownloadURL)
	if err != nil {
		return fmt.Errorf("%s.download_url: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s.download_url must be an http(s) URL, got %q", key, app.DownloadURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s.download_url is missing a host", key)
	}
	return nil
}

func (c *Config) validateDanser() error {
	if c.Danser.KeySampleWindowMS > 0 && c.Danser.KeySampleIntervalMS > c.Danser.KeySampleWindowMS {
		return errors.New("danser.key_sample_interval_ms must not exceed danser.key_sample_window_ms")
	}
	if strings.ContainsAny(c.Danser.RenderKey, " \t") {
		return fmt.Errorf("danser.render_key must be a single key name, got %q", c.Danser.RenderKey)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}
