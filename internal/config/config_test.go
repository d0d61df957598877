package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Morneplaine/EVE/internal/engine"
)

func TestDefault_Values(t *testing.T) {
	c := Default()
	if c == nil {
		t.Fatal("Default() returned nil")
	}
	if c.DBPath != "eve_manufacturing.db" {
		t.Errorf("DBPath = %q, want eve_manufacturing.db", c.DBPath)
	}
	if c.RegionID != 44992 {
		t.Errorf("RegionID = %d, want 44992", c.RegionID)
	}
	if c.StationID != 60003760 {
		t.Errorf("StationID = %d, want 60003760 (Jita IV-4)", c.StationID)
	}
	if c.MELevel != 0 {
		t.Errorf("MELevel = %d, want 0", c.MELevel)
	}
	if c.FetchDelaySeconds != 1.0 {
		t.Errorf("FetchDelaySeconds = %v, want 1.0", c.FetchDelaySeconds)
	}
	if c.ProgressEvery != 50 {
		t.Errorf("ProgressEvery = %d, want 50", c.ProgressEvery)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "me_level: 5\nmin_profit: 100\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("EVEMFG_CONFIG", path)
	t.Setenv("EVEMFG_ME_LEVEL", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MELevel != 10 {
		t.Errorf("MELevel = %d, want 10 (env over file)", cfg.MELevel)
	}
	if cfg.MinProfit != 100 {
		t.Errorf("MinProfit = %v, want 100 (from file)", cfg.MinProfit)
	}
	if cfg.RegionID != 44992 {
		t.Errorf("RegionID = %d, want default 44992", cfg.RegionID)
	}
}

func TestLoad_RejectsBadMELevel(t *testing.T) {
	t.Setenv("EVEMFG_CONFIG", "")
	t.Setenv("EVEMFG_ME_LEVEL", "11")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for me_level 11")
	}
	var cfgErr *engine.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error = %T, want *engine.ConfigurationError", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"me level 10 ok", func(c *Config) { c.MELevel = 10 }, false},
		{"me level negative", func(c *Config) { c.MELevel = -1 }, true},
		{"me level too high", func(c *Config) { c.MELevel = 11 }, true},
		{"empty db path", func(c *Config) { c.DBPath = "" }, true},
		{"sales tax over 100", func(c *Config) { c.SalesTaxPercent = 101 }, true},
		{"negative fee", func(c *Config) { c.ManufacturingFeePercent = -1 }, true},
		{"negative delay", func(c *Config) { c.FetchDelaySeconds = -0.5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEngineParams(t *testing.T) {
	c := Default()
	c.MELevel = 7
	c.MinProfit = 250
	c.FilterBySkills = true

	p := c.EngineParams()
	if p.MELevel != 7 || p.MinProfit != 250 || !p.FilterBySkills || p.FilterByResources {
		t.Errorf("EngineParams() = %+v", p)
	}
}
