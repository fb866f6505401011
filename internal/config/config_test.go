package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Missing file must not be an error: %v", err)
	}
	def := Default()
	if cfg != def {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tick_rate: 20\nport: 8080\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TickRate != 20 || cfg.Port != 8080 {
		t.Errorf("Overrides not applied: %+v", cfg)
	}
	if cfg.WorldWidth != Default().WorldWidth || cfg.CellSize != Default().CellSize {
		t.Errorf("Untouched fields must keep defaults: %+v", cfg)
	}
}

func TestLoad_BrokenFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tick_rate: [oops\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Broken YAML must fail loudly")
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.TickRate = 0 },
		func(c *Config) { c.TickRate = -5 },
		func(c *Config) { c.WorldWidth = 0 },
		func(c *Config) { c.CellSize = -1 },
		func(c *Config) { c.InterpolationRate = 0 },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("Case %d: expected validation error for %+v", i, cfg)
		}
	}
}

func TestTickInterval(t *testing.T) {
	cfg := Default()
	cfg.TickRate = 10
	if got := cfg.TickInterval(); got != 0.1 {
		t.Errorf("Expected 0.1s, got %f", got)
	}
}
