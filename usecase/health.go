package usecase

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vitrina-shop/media-proxy/core/config"
	domainHealth "github.com/vitrina-shop/media-proxy/domains/health"
	"github.com/vitrina-shop/media-proxy/pkg/diskcache"
)

type healthService struct {
	store *diskcache.Store
}

func NewHealthService(store *diskcache.Store) domainHealth.IHealthUsecase {
	return &healthService{store: store}
}

func (s *healthService) GetStatus(ctx context.Context) (domainHealth.HealthStatus, error) {
	entries, total, statsErr := s.store.Stats()

	status := domainHealth.HealthStatus{
		Status:        "ok",
		CacheWritable: s.cacheWritable(),
		CacheEntries:  entries,
		CacheBytes:    total,
		Version:       config.Global.App.Version,
	}
	if statsErr != nil || !status.CacheWritable {
		status.Status = "degraded"
	}
	return status, nil
}

func (s *healthService) cacheWritable() bool {
	if err := os.MkdirAll(s.store.Root(), 0755); err != nil {
		return false
	}
	probe := filepath.Join(s.store.Root(), ".healthprobe")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return false
	}
	_ = os.Remove(probe)
	return true
}
