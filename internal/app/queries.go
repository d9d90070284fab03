package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"storepulse/internal/domain"
)

// QueryService serves the read API over persisted reviews, cache-aside.
// Cache failures degrade to the repository; they are logged, not
// surfaced.
type QueryService struct {
	repo   domain.ReviewRepository
	cache  domain.Cache
	ttlSec int
}

func NewQueryService(repo domain.ReviewRepository, cache domain.Cache, ttlSec int) *QueryService {
	return &QueryService{repo: repo, cache: cache, ttlSec: ttlSec}
}

func (s *QueryService) Reviews(ctx context.Context, limit int) ([]domain.Review, error) {
	key := fmt.Sprintf("reviews:list:%d", limit)
	return cached(ctx, s, key, func() ([]domain.Review, error) {
		return s.repo.ListReviews(ctx, limit)
	})
}

func (s *QueryService) StaffSummary(ctx context.Context) ([]domain.SummaryRow, error) {
	return cached(ctx, s, "summary:staff", func() ([]domain.SummaryRow, error) {
		return s.repo.StaffSummary(ctx)
	})
}

func (s *QueryService) StoreSummary(ctx context.Context) ([]domain.SummaryRow, error) {
	return cached(ctx, s, "summary:store", func() ([]domain.SummaryRow, error) {
		return s.repo.StoreSummary(ctx)
	})
}

func (s *QueryService) CrossSummary(ctx context.Context) ([]domain.SummaryRow, error) {
	return cached(ctx, s, "summary:cross", func() ([]domain.SummaryRow, error) {
		return s.repo.CrossSummary(ctx)
	})
}

func cached[T any](ctx context.Context, s *QueryService, key string, load func() (T, error)) (T, error) {
	var out T
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, key, &out)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if ok {
			return out, nil
		}
	}
	out, err := load()
	if err != nil {
		return out, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, s.ttlSec); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return out, nil
}
