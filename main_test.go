package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Morneplaine/EVE/internal/config"
	"github.com/Morneplaine/EVE/internal/engine"
)

func TestCmdAnalyzeRejectsBadFlagsBeforeOpeningDB(t *testing.T) {
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "never_created.db")

	err := cmdAnalyze(cfg, []string{"-me", "11"})
	var cfgErr *engine.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want ConfigurationError", err)
	}
	if _, statErr := os.Stat(cfg.DBPath); !os.IsNotExist(statErr) {
		t.Errorf("database file was created despite invalid flags")
	}
}

func TestCmdReprocessRejectsBadFlagsBeforeOpeningDB(t *testing.T) {
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "never_created.db")

	tests := [][]string{
		{"-yield", "0"},
		{"-yield", "101"},
		{"-cost", "-1"},
		{"-batch", "0"},
		{"-item-price", "median"},
	}
	for _, args := range tests {
		err := cmdReprocess(cfg, args)
		var cfgErr *engine.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("cmdReprocess(%v) error = %v, want ConfigurationError", args, err)
		}
	}
	if _, statErr := os.Stat(cfg.DBPath); !os.IsNotExist(statErr) {
		t.Errorf("database file was created despite invalid flags")
	}
}

func TestParseTypeIDs(t *testing.T) {
	ids, err := parseTypeIDs("34, 35,587")
	if err != nil {
		t.Fatalf("parseTypeIDs: %v", err)
	}
	if len(ids) != 3 || ids[0] != 34 || ids[2] != 587 {
		t.Errorf("ids = %v", ids)
	}

	if ids, err := parseTypeIDs(""); err != nil || ids != nil {
		t.Errorf("empty input = %v, %v, want nil, nil", ids, err)
	}
	if _, err := parseTypeIDs("34,abc"); err == nil {
		t.Error("expected error for non-numeric ID")
	}
}
