package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gwstat/fplboard/internal/aggregate"
	s3blob "github.com/gwstat/fplboard/internal/blob/s3"
	"github.com/gwstat/fplboard/internal/cache/redis"
	"github.com/gwstat/fplboard/internal/cohort"
	"github.com/gwstat/fplboard/internal/config"
	"github.com/gwstat/fplboard/internal/domain"
	"github.com/gwstat/fplboard/internal/overlay"
	"github.com/gwstat/fplboard/internal/platform/fpl"
	"github.com/gwstat/fplboard/internal/service"
	"github.com/gwstat/fplboard/internal/snapshot"
	"github.com/gwstat/fplboard/internal/status"
	"github.com/gwstat/fplboard/internal/store/postgres"
)

// Dependencies bundles everything the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Client *fpl.Client
	Oracle *status.Oracle
	Engine *service.Engine

	// CacheStore is nil when postgres is disabled; the builders then run
	// uncached.
	CacheStore domain.CacheStore
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	client := fpl.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout.Duration)

	// --- PostgreSQL persistent cache store ---
	var cacheStore domain.CacheStore
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire postgres migrations: %w", err)
			}
		}
		cacheStore = postgres.NewCacheStore(pgClient.Pool())
	} else {
		logger.Warn("postgres disabled, builders run uncached")
	}

	// --- Redis hot tiers ---
	var (
		roundCache    domain.RoundCache
		leaderCache   domain.LeaderCache
		snapshotCache domain.SnapshotCache
	)
	if cfg.Redis.Enabled {
		rdb, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })

		roundCache = redis.NewRoundCache(rdb, cfg.Redis.RoundTTL.Duration)
		leaderCache = redis.NewLeaderCache(rdb, cfg.Redis.LeaderTTL.Duration)
		snapshotCache = redis.NewSnapshotCache(rdb, cfg.Redis.SnapshotTTL.Duration)
	} else {
		logger.Warn("redis disabled, hot tiers run uncached")
	}

	// --- Optional S3 snapshot archive ---
	var archive domain.BlobWriter
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })
		archive = s3blob.NewWriter(s3Client)
	}

	// --- Oracle, snapshot service, and builders ---
	oracle := status.NewOracle(client, cfg.Oracle.PollInterval.Duration, logger,
		status.WithMaintenance(cfg.Oracle.Maintenance))

	snapshots := snapshot.NewService(client, snapshotCache, archive, logger)
	rounds := aggregate.NewRoundSource(client, roundCache, cfg.Engine.FanOut, logger)
	aggregator := aggregate.NewAggregator(rounds, cacheStore, logger)
	overlays := overlay.NewBuilder(client, rounds, cacheStore, cfg.Engine.FanOut, logger)
	cohorts := cohort.NewBuilder(client, rounds, cacheStore, leaderCache, cfg.Engine.FanOut, logger)

	engine := service.NewEngine(oracle, snapshots, aggregator, overlays, cohorts, cfg.Engine.CohortSize, logger)

	return &Dependencies{
		Client:     client,
		Oracle:     oracle,
		Engine:     engine,
		CacheStore: cacheStore,
	}, cleanup, nil
}
