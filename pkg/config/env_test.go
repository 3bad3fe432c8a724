package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	DBPath string `env:"WATCHLIST_TEST_DB_PATH" envDefault:"watchlist.db"`
	Limit  int    `env:"WATCHLIST_TEST_LIMIT" envDefault:"3"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.DBPath != "watchlist.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Limit != 3 {
		t.Fatalf("expected default limit 3, got %d", cfg.Limit)
	}
}

func TestParseEnvOverride(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("WATCHLIST_TEST_DB_PATH", "/tmp/other.db")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.DBPath != "/tmp/other.db" {
		t.Fatalf("expected overridden db path, got %q", cfg.DBPath)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("WATCHLIST_TEST_LIMIT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
