package apps

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"launcher/internal/config"
)

// Names of the managed applications, matching their config sections.
const (
	NameOsu              = "osu"
	NameRewind           = "rewind"
	NameDanser           = "danser"
	NameOpenTabletDriver = "open_tablet_driver"
	NameOsuTrainer       = "osu_trainer"
)

// Tool is an Application backed by one config section.
type Tool struct {
	name string
	cfg  config.App
}

// NewTool builds a tool from its config section. The section is copied so
// the tool is immutable for the rest of the run.
func NewTool(name string, cfg config.App) *Tool {
	return &Tool{name: name, cfg: cfg}
}

func (t *Tool) Name() string { return t.name }
func (t *Tool) Enabled() bool { return t.cfg.Enabled }
func (t *Tool) Path() string { return t.cfg.Path }
func (t *Tool) ExecutableName() string { return t.cfg.ExecutableName }
func (t *Tool) DownloadURL() string { return t.cfg.DownloadURL }

// Renderer is the replay renderer. Besides the common accessors it carries
// the settings profile, the watched replay directory, and the render key
// policy.
type Renderer struct {
	Tool
	SettingsName      string
	ReplaysDir        string
	RenderKey         string
	RenderKeyDevice   string
	KeySampleWindow   time.Duration
	KeySampleInterval time.Duration
	ReplayPattern     string
}

// NewRenderer builds the renderer descriptor from the danser section.
func NewRenderer(cfg config.Danser) *Renderer {
	return &Renderer{
		Tool:              Tool{name: NameDanser, cfg: cfg.App},
		SettingsName:      cfg.SettingsName,
		ReplaysDir:        cfg.ReplaysDir,
		RenderKey:         cfg.RenderKey,
		RenderKeyDevice:   cfg.RenderKeyDevice,
		KeySampleWindow:   time.Duration(cfg.KeySampleWindowMS) * time.Millisecond,
		KeySampleInterval: time.Duration(cfg.KeySampleIntervalMS) * time.Millisecond,
		ReplayPattern:     cfg.ReplayPattern,
	}
}

// Catalog is the fixed set of applications for one run.
type Catalog struct {
	Osu              *Tool
	Rewind           *Tool
	Danser           *Renderer
	OpenTabletDriver *Tool
	OsuTrainer       *Tool
}

// FromConfig builds the catalog once at startup.
func FromConfig(cfg *config.Config) Catalog {
	return Catalog{
		Osu:              NewTool(NameOsu, cfg.Osu),
		Rewind:           NewTool(NameRewind, cfg.Rewind),
		Danser:           NewRenderer(cfg.Danser),
		OpenTabletDriver: NewTool(NameOpenTabletDriver, cfg.OpenTabletDriver),
		OsuTrainer:       NewTool(NameOsuTrainer, cfg.OsuTrainer),
	}
}

// All returns every application in a stable order.
func (c Catalog) All() []Application {
	out := make([]Application, 0, 5)
	for _, app := range []Application{c.Osu, c.Rewind, c.Danser, c.OpenTabletDriver, c.OsuTrainer} {
		if app != nil && !isNilApp(app) {
			out = append(out, app)
		}
	}
	return out
}

// Lookup finds an application by config name or display name.
func (c Catalog) Lookup(name string) (Application, bool) {
	want := normalizeName(name)
	for _, app := range c.All() {
		if normalizeName(app.Name()) == want {
			return app, true
		}
	}
	return nil, false
}

func isNilApp(app Application) bool {
	switch v := app.(type) {
	case *Tool:
		return v == nil
	case *Renderer:
		return v == nil
	}
	return false
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer("-", "_", " ", "_", "!", "").Replace(name)
	return name
}

// DisplayName turns a config name such as "open_tablet_driver" into
// "Open Tablet Driver".
func DisplayName(name string) string {
	if name == NameOsu {
		return "osu!"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(strings.TrimSpace(name), "_", " "))
}
