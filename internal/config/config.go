package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Morneplaine/EVE/internal/engine"
	"github.com/Morneplaine/EVE/internal/market"
)

// Config holds application settings.
type Config struct {
	DBPath    string `koanf:"db_path"`
	RegionID  int64  `koanf:"region_id"`
	StationID int64  `koanf:"station_id"`

	MELevel           int     `koanf:"me_level"`
	FilterBySkills    bool    `koanf:"filter_by_skills"`
	FilterByResources bool    `koanf:"filter_by_resources"`
	MinProfit         float64 `koanf:"min_profit"`

	SalesTaxPercent         float64 `koanf:"sales_tax_percent"`
	ManufacturingFeePercent float64 `koanf:"manufacturing_fee_percent"`

	FetchDelaySeconds float64 `koanf:"fetch_delay_seconds"`
	ProgressEvery     int     `koanf:"progress_every"`
}

// Default returns a Config with sensible defaults: Jita prices, The Forge
// history, a polite fetch pace.
func Default() *Config {
	return &Config{
		DBPath:            "eve_manufacturing.db",
		RegionID:          market.TheForgeRegionID,
		StationID:         market.JitaStationID,
		MELevel:           0,
		MinProfit:         0,
		FetchDelaySeconds: 1.0,
		ProgressEvery:     50,
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (Default())
//  2. file (YAML) if EVEMFG_CONFIG is set
//  3. env (prefix EVEMFG_)
func Load() (*Config, error) {
	base := Default()

	k := koanf.New(".")

	if path := os.Getenv("EVEMFG_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// EVEMFG_ME_LEVEL -> me_level, matching the koanf tags.
	envProvider := env.Provider("EVEMFG_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "evemfg_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine would refuse anyway, so bad config
// fails at startup instead of mid-run.
func (c *Config) Validate() error {
	if c.MELevel < 0 || c.MELevel > 10 {
		return &engine.ConfigurationError{Field: "me_level", Reason: "must be between 0 and 10"}
	}
	if c.DBPath == "" {
		return &engine.ConfigurationError{Field: "db_path", Reason: "must not be empty"}
	}
	if c.SalesTaxPercent < 0 || c.SalesTaxPercent > 100 {
		return &engine.ConfigurationError{Field: "sales_tax_percent", Reason: "must be between 0 and 100"}
	}
	if c.ManufacturingFeePercent < 0 {
		return &engine.ConfigurationError{Field: "manufacturing_fee_percent", Reason: "must not be negative"}
	}
	if c.FetchDelaySeconds < 0 {
		return &engine.ConfigurationError{Field: "fetch_delay_seconds", Reason: "must not be negative"}
	}
	return nil
}

// EngineParams converts the configured analysis settings into engine inputs.
func (c *Config) EngineParams() engine.Params {
	return engine.Params{
		MELevel:                 c.MELevel,
		FilterBySkills:          c.FilterBySkills,
		FilterByResources:       c.FilterByResources,
		MinProfit:               c.MinProfit,
		SalesTaxPercent:         c.SalesTaxPercent,
		ManufacturingFeePercent: c.ManufacturingFeePercent,
	}
}
