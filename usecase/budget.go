package usecase

import (
	"sync"

	"github.com/vitrina-shop/media-proxy/pkg/diskcache"
)

// CacheBudget holds the live eviction budget. The admin API may adjust
// it at runtime; the media pipeline reads it on every eviction trigger.
type CacheBudget struct {
	mu     sync.RWMutex
	budget diskcache.Budget
}

func NewCacheBudget(budget diskcache.Budget) *CacheBudget {
	return &CacheBudget{budget: budget}
}

func (c *CacheBudget) Get() diskcache.Budget {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.budget
}

func (c *CacheBudget) Set(budget diskcache.Budget) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.budget = budget
}
