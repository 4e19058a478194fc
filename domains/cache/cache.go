package cache

import "context"

type CacheStats struct {
	Entries   int    `json:"entries"`
	TotalSize int64  `json:"total_size"`
	HumanSize string `json:"human_size"`
	MaxSize   int64  `json:"max_size"`
}

// CacheSettings exposes the byte budget to the admin API. Changes apply
// immediately to the running eviction policy; they are not persisted
// across restarts (the env configuration remains the source of truth).
type CacheSettings struct {
	MaxSizeMB   int64   `json:"max_size_mb"`
	TargetRatio float64 `json:"target_ratio"`
}

type ICacheUsecase interface {
	GetStats(ctx context.Context) (CacheStats, error)
	Clear(ctx context.Context) error

	GetSettings(ctx context.Context) (CacheSettings, error)
	UpdateSettings(ctx context.Context, settings CacheSettings) error
}
