package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gwstat/fplboard/internal/domain"
	"github.com/gwstat/fplboard/internal/platform/fpl"
)

// Source is the slice of the upstream client the service needs.
type Source interface {
	SeasonSnapshot(ctx context.Context) (*fpl.SeasonSnapshot, error)
}

// Archive bodies above the threshold go through the multipart uploader;
// the season snapshot grows past it once form histories fill in.
const (
	archiveMultipartBytes = 8 << 20
	archivePartSize       = 5 << 20
)

// Service serves the season snapshot through the hot cache and archives
// fresh fetches to blob storage when a writer is configured.
type Service struct {
	source      Source
	cache       domain.SnapshotCache
	archive     domain.BlobWriter
	logger      *slog.Logger
	now         func() time.Time
	multipartAt int
}

// NewService creates a snapshot service. cache and archive may be nil.
func NewService(source Source, cache domain.SnapshotCache, archive domain.BlobWriter, logger *slog.Logger) *Service {
	return &Service{
		source:      source,
		cache:       cache,
		archive:     archive,
		logger:      logger,
		now:         time.Now,
		multipartAt: archiveMultipartBytes,
	}
}

// Season returns the season snapshot, cache-first. The cache tier owns the
// TTL; a hit is served as-is regardless of the oracle because static data
// only needs hourly freshness.
func (s *Service) Season(ctx context.Context) (*fpl.SeasonSnapshot, error) {
	if s.cache != nil {
		if body, _, err := s.cache.GetSnapshot(ctx); err == nil {
			var snap fpl.SeasonSnapshot
			if err := json.Unmarshal(body, &snap); err == nil {
				return &snap, nil
			}
			s.logger.Warn("discarding undecodable cached snapshot")
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("snapshot cache read failed", slog.String("error", err.Error()))
		}
	}

	snap, err := s.source.SeasonSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: fetch: %w", err)
	}

	fetched := s.now()
	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, body, fetched); err != nil {
			s.logger.Warn("snapshot cache write failed", slog.String("error", err.Error()))
		}
	}
	s.archiveBody(ctx, body, fetched)

	return snap, nil
}

// Baselines builds the entity baseline map from the current snapshot.
func (s *Service) Baselines(ctx context.Context) (map[domain.EntityID]*domain.EntityBaseline, error) {
	snap, err := s.Season(ctx)
	if err != nil {
		return nil, err
	}
	return Build(snap), nil
}

// CurrentRound returns the round in progress, or ErrPreseason before the
// first round starts.
func (s *Service) CurrentRound(ctx context.Context) (int, error) {
	snap, err := s.Season(ctx)
	if err != nil {
		return 0, err
	}
	round := snap.CurrentRound()
	if round == 0 {
		return 0, domain.ErrPreseason
	}
	return round, nil
}

// TotalRosters returns the number of registered rosters this season.
func (s *Service) TotalRosters(ctx context.Context) (int, error) {
	snap, err := s.Season(ctx)
	if err != nil {
		return 0, err
	}
	return snap.TotalPlayers, nil
}

// archiveBody writes a dated copy of the raw snapshot to blob storage.
// Best effort; the serving path never depends on the archive.
func (s *Service) archiveBody(ctx context.Context, body []byte, fetched time.Time) {
	if s.archive == nil {
		return
	}
	path := fmt.Sprintf("snapshots/%s.json", fetched.UTC().Format("2006-01-02"))
	var err error
	if len(body) >= s.multipartAt {
		err = s.archive.PutMultipart(ctx, path, bytes.NewReader(body), archivePartSize)
	} else {
		err = s.archive.Put(ctx, path, bytes.NewReader(body), "application/json")
	}
	if err != nil {
		s.logger.Warn("snapshot archive failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}
