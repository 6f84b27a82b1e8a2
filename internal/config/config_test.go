package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "secret")

	cfg, err := Load(zerolog.Nop())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DBPath != "cardbattle.db" {
		t.Errorf("DBPath = %q, want cardbattle.db", cfg.DBPath)
	}
	if cfg.HouseDeckID != "house" {
		t.Errorf("HouseDeckID = %q, want house", cfg.HouseDeckID)
	}
	if cfg.PlayMaxRetries != 3 {
		t.Errorf("PlayMaxRetries = %d, want 3", cfg.PlayMaxRetries)
	}
	if cfg.PlayRetryBase != 20*time.Millisecond {
		t.Errorf("PlayRetryBase = %v, want 20ms", cfg.PlayRetryBase)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_SECRET", "secret")
	t.Setenv("DB_PATH", "/tmp/other.db")
	t.Setenv("PLAY_MAX_RETRIES", "7")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(zerolog.Nop())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DBPath != "/tmp/other.db" || cfg.PlayMaxRetries != 7 || cfg.LogLevel != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	if _, err := Load(zerolog.Nop()); err == nil {
		t.Fatal("expected error without AUTH_SECRET")
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	t.Setenv("AUTH_SECRET", "secret")
	t.Setenv("LOG_LEVEL", "loud")
	if _, err := Load(zerolog.Nop()); err == nil {
		t.Fatal("expected error for invalid LOG_LEVEL")
	}
}
