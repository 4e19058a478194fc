package usecase

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	domainCache "github.com/vitrina-shop/media-proxy/domains/cache"
	"github.com/vitrina-shop/media-proxy/pkg/diskcache"
	"github.com/vitrina-shop/media-proxy/validations"
)

type cacheService struct {
	store  *diskcache.Store
	budget *CacheBudget
}

func NewCacheService(store *diskcache.Store, budget *CacheBudget) domainCache.ICacheUsecase {
	return &cacheService{store: store, budget: budget}
}

func (s *cacheService) GetStats(ctx context.Context) (domainCache.CacheStats, error) {
	entries, total, err := s.store.Stats()
	if err != nil {
		return domainCache.CacheStats{}, err
	}
	return domainCache.CacheStats{
		Entries:   entries,
		TotalSize: total,
		HumanSize: humanize.Bytes(uint64(total)),
		MaxSize:   s.budget.Get().MaxBytes,
	}, nil
}

func (s *cacheService) Clear(ctx context.Context) error {
	logrus.Info("[CACHE] Clearing media cache by admin request")
	return s.store.Clear()
}

func (s *cacheService) GetSettings(ctx context.Context) (domainCache.CacheSettings, error) {
	b := s.budget.Get()
	return domainCache.CacheSettings{
		MaxSizeMB:   b.MaxBytes / (1024 * 1024),
		TargetRatio: b.TargetRatio,
	}, nil
}

func (s *cacheService) UpdateSettings(ctx context.Context, settings domainCache.CacheSettings) error {
	if err := validations.ValidateCacheSettings(ctx, settings); err != nil {
		return err
	}

	budget := diskcache.Budget{
		MaxBytes:    settings.MaxSizeMB * 1024 * 1024,
		TargetRatio: settings.TargetRatio,
	}
	s.budget.Set(budget)

	// A shrunk budget takes effect right away instead of waiting for
	// the next write.
	s.store.MaybeEvict(budget)
	return nil
}
