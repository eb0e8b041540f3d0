package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults() should validate cleanly: %v", err)
	}
	if cfg.Engine.FanOut != 8 || cfg.Engine.CohortSize != 50 {
		t.Errorf("engine defaults = %+v", cfg.Engine)
	}
	if cfg.Oracle.PollInterval.Duration != 30*time.Second {
		t.Errorf("poll interval default = %v", cfg.Oracle.PollInterval.Duration)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.LogLevel = "loud"
	cfg.Upstream.BaseURL = ""
	cfg.Engine.FanOut = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want combined error")
	}
	for _, want := range []string{"mode", "log_level", "base_url", "fan_out"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidateModeRequirements(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "overlay"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "roster") {
		t.Errorf("overlay without roster: err = %v", err)
	}
	cfg.Engine.Roster = 12345
	if err := cfg.Validate(); err != nil {
		t.Errorf("overlay with roster: err = %v", err)
	}

	cfg = Defaults()
	cfg.Mode = "cohort"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "league") {
		t.Errorf("cohort without league: err = %v", err)
	}
	cfg.Engine.League = 60
	if err := cfg.Validate(); err != nil {
		t.Errorf("cohort with league: err = %v", err)
	}

	// The team table works without a roster; the roster columns stay zero.
	cfg = Defaults()
	cfg.Mode = "teams"
	if err := cfg.Validate(); err != nil {
		t.Errorf("teams without roster: err = %v", err)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
mode = "cohort"
log_level = "debug"

[upstream]
timeout = "10s"

[redis]
enabled = false

[engine]
cohort_size = 25
league = 60
prune_after = "48h"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "cohort" || cfg.LogLevel != "debug" {
		t.Errorf("top-level fields = %q/%q", cfg.Mode, cfg.LogLevel)
	}
	if cfg.Upstream.Timeout.Duration != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.Upstream.Timeout.Duration)
	}
	if cfg.Redis.Enabled {
		t.Error("redis.enabled not overridden")
	}
	// Unset file keys keep their defaults.
	if cfg.Upstream.BaseURL == "" || !cfg.Postgres.Enabled {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Engine.CohortSize != 25 || cfg.Engine.PruneAfter.Duration != 48*time.Hour {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FPLBOARD_MODE", "overlay")
	t.Setenv("FPLBOARD_ENGINE_ROSTER", "12345")
	t.Setenv("FPLBOARD_REDIS_ADDR", "redis:6380")
	t.Setenv("FPLBOARD_ORACLE_POLL_INTERVAL", "15s")
	t.Setenv("FPLBOARD_POSTGRES_ENABLED", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "overlay" || cfg.Engine.Roster != 12345 {
		t.Errorf("mode/roster = %q/%d", cfg.Mode, cfg.Engine.Roster)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.Oracle.PollInterval.Duration != 15*time.Second {
		t.Errorf("poll interval = %v", cfg.Oracle.PollInterval.Duration)
	}
	if cfg.Postgres.Enabled {
		t.Error("postgres.enabled not overridden")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("env-built config invalid: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Load of a missing path succeeded")
	}
}
