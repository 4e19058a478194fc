package health

import "context"

type HealthStatus struct {
	Status        string `json:"status"`
	CacheWritable bool   `json:"cache_writable"`
	CacheEntries  int    `json:"cache_entries"`
	CacheBytes    int64  `json:"cache_bytes"`
	Version       string `json:"version"`
}

type IHealthUsecase interface {
	GetStatus(ctx context.Context) (HealthStatus, error)
}
