package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies FPLBOARD_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known FPLBOARD_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Upstream.BaseURL, "FPLBOARD_UPSTREAM_BASE_URL")
	setDuration(&cfg.Upstream.Timeout, "FPLBOARD_UPSTREAM_TIMEOUT")

	setBool(&cfg.Postgres.Enabled, "FPLBOARD_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "FPLBOARD_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "FPLBOARD_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "FPLBOARD_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "FPLBOARD_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "FPLBOARD_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "FPLBOARD_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "FPLBOARD_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "FPLBOARD_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "FPLBOARD_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "FPLBOARD_POSTGRES_RUN_MIGRATIONS")

	setBool(&cfg.Redis.Enabled, "FPLBOARD_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "FPLBOARD_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "FPLBOARD_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "FPLBOARD_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "FPLBOARD_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "FPLBOARD_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "FPLBOARD_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.RoundTTL, "FPLBOARD_REDIS_ROUND_TTL")
	setDuration(&cfg.Redis.LeaderTTL, "FPLBOARD_REDIS_LEADER_TTL")
	setDuration(&cfg.Redis.SnapshotTTL, "FPLBOARD_REDIS_SNAPSHOT_TTL")

	setBool(&cfg.S3.Enabled, "FPLBOARD_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "FPLBOARD_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "FPLBOARD_S3_REGION")
	setStr(&cfg.S3.Bucket, "FPLBOARD_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "FPLBOARD_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "FPLBOARD_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "FPLBOARD_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "FPLBOARD_S3_FORCE_PATH_STYLE")

	setDuration(&cfg.Oracle.PollInterval, "FPLBOARD_ORACLE_POLL_INTERVAL")
	setBool(&cfg.Oracle.Maintenance, "FPLBOARD_ORACLE_MAINTENANCE")

	setInt(&cfg.Engine.FanOut, "FPLBOARD_ENGINE_FAN_OUT")
	setInt(&cfg.Engine.CohortSize, "FPLBOARD_ENGINE_COHORT_SIZE")
	setDuration(&cfg.Engine.PruneAfter, "FPLBOARD_ENGINE_PRUNE_AFTER")
	setInt64(&cfg.Engine.Roster, "FPLBOARD_ENGINE_ROSTER")
	setInt64(&cfg.Engine.League, "FPLBOARD_ENGINE_LEAGUE")

	setStr(&cfg.Mode, "FPLBOARD_MODE")
	setStr(&cfg.LogLevel, "FPLBOARD_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
