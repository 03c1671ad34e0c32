// Package config implements the persisted-settings-plus-flag-override
// pattern described in SPEC_FULL §B, grounded on the teacher's
// ui.loadSettings/saveSettings (ebitenapp.go): a JSON file under the user's
// config directory, with non-zero CLI flag values overriding the persisted
// field. Generalized here from window/audio settings to the GBA front-end's
// own surface (BIOS path, scale, trace, key bindings).
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds the settings a front-end persists across runs.
type Config struct {
	BIOSPath string `json:"bios_path,omitempty"`
	Title    string `json:"title,omitempty"`
	Scale    int    `json:"scale,omitempty"`
	Trace    bool   `json:"trace,omitempty"`

	// KeyBindings maps a keypad button name (see internal/keypad) to the
	// ebiten key name the front-end reads it from.
	KeyBindings map[string]string `json:"key_bindings,omitempty"`
}

// Defaults fills zero-valued fields with reasonable defaults, mirroring
// the teacher's ui.Config.Defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gba"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if c.KeyBindings == nil {
		c.KeyBindings = defaultKeyBindings()
	}
}

func defaultKeyBindings() map[string]string {
	return map[string]string{
		"A": "KeyX", "B": "KeyZ",
		"Start": "Enter", "Select": "ShiftRight",
		"Up": "ArrowUp", "Down": "ArrowDown",
		"Left": "ArrowLeft", "Right": "ArrowRight",
		"L": "KeyA", "R": "KeyS",
	}
}

// Path returns the settings file location: the user config directory (e.g.
// %AppData%/gba or ~/.config/gba) when available, else alongside the
// running executable — exactly the teacher's settingsPath fallback order.
func Path() string {
	if dir, err := os.UserConfigDir(); err == nil {
		d := filepath.Join(dir, "gba")
		_ = os.MkdirAll(d, 0755)
		return filepath.Join(d, "settings.json")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "gba_settings.json")
}

// Load reads the persisted settings file (ignoring a missing or malformed
// file, which simply yields zero values) and merges non-zero fields from
// override on top, matching the teacher's loadSettings override semantics.
func Load(override Config) Config {
	var cfg Config
	if b, err := os.ReadFile(Path()); err == nil {
		_ = json.Unmarshal(b, &cfg)
	}
	if override.BIOSPath != "" {
		cfg.BIOSPath = override.BIOSPath
	}
	if override.Title != "" {
		cfg.Title = override.Title
	}
	if override.Scale != 0 {
		cfg.Scale = override.Scale
	}
	if override.Trace {
		cfg.Trace = true
	}
	if override.KeyBindings != nil {
		cfg.KeyBindings = override.KeyBindings
	}
	cfg.Defaults()
	return cfg
}

// Save persists cfg to Path(), best-effort (errors are swallowed, matching
// the teacher's saveSettings, since a failed settings write should never
// block an otherwise-successful run).
func Save(cfg Config) {
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(Path(), b, 0644)
}
