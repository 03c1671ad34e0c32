package config

import "testing"

func TestDefaultsFillsZeroValues(t *testing.T) {
	var c Config
	c.Defaults()
	if c.Title == "" || c.Scale == 0 || c.KeyBindings == nil {
		t.Fatalf("Defaults left zero values: %+v", c)
	}
}

func TestDefaultsPreservesExplicitValues(t *testing.T) {
	c := Config{Title: "custom", Scale: 5}
	c.Defaults()
	if c.Title != "custom" || c.Scale != 5 {
		t.Fatalf("Defaults overwrote explicit values: %+v", c)
	}
}

func TestLoadMergesOverrideOnMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := Load(Config{Title: "myfrontend", Scale: 4})
	if cfg.Title != "myfrontend" || cfg.Scale != 4 {
		t.Fatalf("Load did not apply override on missing settings file: %+v", cfg)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	Save(Config{Title: "saved", Scale: 2, BIOSPath: "bios.bin"})
	cfg := Load(Config{})
	if cfg.Title != "saved" || cfg.Scale != 2 || cfg.BIOSPath != "bios.bin" {
		t.Fatalf("round trip mismatch: %+v", cfg)
	}
}
