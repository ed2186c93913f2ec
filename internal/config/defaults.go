package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfigPath           = "~/.config/launcher/config.toml"
	defaultLogDir               = "~/.local/share/launcher/logs"
	defaultStateDir             = "~/.local/share/launcher"
	defaultAppsDir              = "~/.local/share/launcher/apps"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	defaultOsuExecutable        = "osu!.exe"
	defaultRewindExecutable     = "Rewind.exe"
	defaultRewindDownloadURL    = "https://github.com/abstrakt8/rewind/releases/download/v0.2.1/Rewind-0.2.1-win.zip"
	defaultDanserExecutable     = "danser-cli.exe"
	defaultDanserDownloadURL    = "https://github.com/Wieku/danser-go/releases/download/0.9.1/danser-0.9.1-win.zip"
	defaultDanserSettings       = "default"
	defaultRenderKey            = "R"
	defaultKeySampleWindowMS    = 150
	defaultKeySampleIntervalMS  = 25
	defaultOTDExecutable        = "OpenTabletDriver.UX.Wpf.exe"
	defaultOTDDownloadURL       = "https://github.com/OpenTabletDriver/OpenTabletDriver/releases/download/v0.6.4.0/OpenTabletDriver.win-x64.zip"
	defaultOsuTrainerExecutable = "osu-trainer.exe"
	defaultOsuTrainerURL        = "https://github.com/FunOrange/osu-trainer/releases/download/1.7.0/osu-trainer-v1.7.0.zip"
	replaysSubdir               = "Replays"
)

// Default returns a Config populated with repository defaults. Only osu! is
// enabled out of the box; companion tools are opt-in.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Osu: App{
			Enabled:        true,
			Path:           defaultOsuPath(),
			ExecutableName: defaultOsuExecutable,
		},
		Rewind: App{
			Path:           filepath.Join(defaultAppsDir, "rewind"),
			ExecutableName: defaultRewindExecutable,
			DownloadURL:    defaultRewindDownloadURL,
		},
		Danser: Danser{
			App: App{
				Path:           filepath.Join(defaultAppsDir, "danser"),
				ExecutableName: defaultDanserExecutable,
				DownloadURL:    defaultDanserDownloadURL,
			},
			SettingsName:        defaultDanserSettings,
			RenderKey:           defaultRenderKey,
			KeySampleWindowMS:   defaultKeySampleWindowMS,
			KeySampleIntervalMS: defaultKeySampleIntervalMS,
		},
		OpenTabletDriver: App{
			Path:           filepath.Join(defaultAppsDir, "open_tablet_driver"),
			ExecutableName: defaultOTDExecutable,
			DownloadURL:    defaultOTDDownloadURL,
		},
		OsuTrainer: App{
			Path:           filepath.Join(defaultAppsDir, "osu_trainer"),
			ExecutableName: defaultOsuTrainerExecutable,
			DownloadURL:    defaultOsuTrainerURL,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		History: History{
			Enabled: true,
		},
	}
}

// defaultOsuPath mirrors the stable client's install location under
// %LOCALAPPDATA%. It is empty when that variable is not set.
func defaultOsuPath() string {
	base, ok := os.LookupEnv("LOCALAPPDATA")
	if !ok || strings.TrimSpace(base) == "" {
		return ""
	}
	return filepath.Join(base, "osu!")
}
