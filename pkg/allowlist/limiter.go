package allowlist

import (
	"sync"
	"time"
)

// logLimiter is a small expiring map used to bound repeated log lines
// per key. It keeps the last emission time per key and sweeps expired
// entries opportunistically once the map grows past maxEntries, so no
// background goroutine is needed.
type logLimiter struct {
	mu         sync.Mutex
	window     time.Duration
	maxEntries int
	lastSeen   map[string]time.Time
	now        func() time.Time
}

func newLogLimiter(window time.Duration, maxEntries int) *logLimiter {
	return &logLimiter{
		window:     window,
		maxEntries: maxEntries,
		lastSeen:   make(map[string]time.Time),
		now:        time.Now,
	}
}

// Allow reports whether an event for key may be logged now, recording
// the emission when it is.
func (l *logLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.lastSeen[key]; ok && now.Sub(last) < l.window {
		return false
	}

	if len(l.lastSeen) >= l.maxEntries {
		l.sweepLocked(now)
	}

	l.lastSeen[key] = now
	return true
}

func (l *logLimiter) sweepLocked(now time.Time) {
	for k, t := range l.lastSeen {
		if now.Sub(t) >= l.window {
			delete(l.lastSeen, k)
		}
	}
}
