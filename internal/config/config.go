// Package config defines the top-level configuration for the gameweek
// engine and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by FPLBOARD_* environment
// variables.
type Config struct {
	Upstream UpstreamConfig `toml:"upstream"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Oracle   OracleConfig   `toml:"oracle"`
	Engine   EngineConfig   `toml:"engine"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// UpstreamConfig holds the scoring API endpoint parameters.
type UpstreamConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout duration `toml:"timeout"`
}

// PostgresConfig holds connection parameters for the persistent cache store.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds the hot cache tier's connection and TTL parameters.
type RedisConfig struct {
	Enabled     bool     `toml:"enabled"`
	Addr        string   `toml:"addr"`
	Password    string   `toml:"password"`
	DB          int      `toml:"db"`
	PoolSize    int      `toml:"pool_size"`
	MaxRetries  int      `toml:"max_retries"`
	TLSEnabled  bool     `toml:"tls_enabled"`
	RoundTTL    duration `toml:"round_ttl"`
	LeaderTTL   duration `toml:"leader_ttl"`
	SnapshotTTL duration `toml:"snapshot_ttl"`
}

// S3Config holds the optional snapshot archive's object-store parameters.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// OracleConfig tunes the freshness oracle.
type OracleConfig struct {
	PollInterval duration `toml:"poll_interval"`
	// Maintenance forces every derived state into maintenance, as an
	// operator override while the upstream misbehaves.
	Maintenance bool `toml:"maintenance"`
}

// EngineConfig tunes the aggregation passes.
type EngineConfig struct {
	// FanOut bounds concurrent outbound calls during a pass.
	FanOut int `toml:"fan_out"`
	// CohortSize is the default standings slice for league views.
	CohortSize int `toml:"cohort_size"`
	// PruneAfter is how far back the prune mode keeps cache entries.
	PruneAfter duration `toml:"prune_after"`
	// Roster and League seed the one-shot overlay and cohort modes.
	Roster int64 `toml:"roster"`
	League int64 `toml:"league"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Upstream: UpstreamConfig{
			BaseURL: "https://fantasy.premierleague.com/api",
			Timeout: duration{30 * time.Second},
		},
		Postgres: PostgresConfig{
			Enabled:       true,
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:     true,
			Addr:        "localhost:6379",
			DB:          0,
			PoolSize:    20,
			MaxRetries:  3,
			RoundTTL:    duration{60 * time.Second},
			LeaderTTL:   duration{5 * time.Minute},
			SnapshotTTL: duration{time.Hour},
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "fplboard-data",
			ForcePathStyle: true,
		},
		Oracle: OracleConfig{
			PollInterval: duration{30 * time.Second},
		},
		Engine: EngineConfig{
			FanOut:     8,
			CohortSize: 50,
			PruneAfter: duration{7 * 24 * time.Hour},
		},
		Mode:     "status",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"status":   true,
	"baseline": true,
	"overlay":  true,
	"teams":    true,
	"cohort":   true,
	"prune":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: status, baseline, overlay, teams, cohort, prune)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Upstream.BaseURL == "" {
		errs = append(errs, "upstream: base_url must be set")
	}
	if c.Upstream.Timeout.Duration < 0 {
		errs = append(errs, "upstream: timeout must not be negative")
	}

	if c.Postgres.Enabled {
		if c.Postgres.DSN == "" && (c.Postgres.Host == "" || c.Postgres.Database == "" || c.Postgres.User == "") {
			errs = append(errs, "postgres: either dsn or host/database/user must be set")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must be set when enabled")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must be set when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must be set when enabled")
		}
	}

	if c.Oracle.PollInterval.Duration <= 0 {
		errs = append(errs, "oracle: poll_interval must be positive")
	}

	if c.Engine.FanOut < 1 {
		errs = append(errs, "engine: fan_out must be at least 1")
	}
	if c.Engine.CohortSize < 1 {
		errs = append(errs, "engine: cohort_size must be at least 1")
	}
	if mode := strings.ToLower(c.Mode); mode == "overlay" && c.Engine.Roster == 0 {
		errs = append(errs, "engine: roster must be set for mode overlay")
	} else if mode == "cohort" && c.Engine.League == 0 {
		errs = append(errs, "engine: league must be set for mode cohort")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
