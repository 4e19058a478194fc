package diskcache

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Budget caps the total bytes the cache may hold on disk. When a write
// pushes usage past MaxBytes, the eviction pass deletes
// oldest-by-modification-time entries until usage falls back under
// MaxBytes*TargetRatio, leaving headroom before the next trigger.
type Budget struct {
	MaxBytes    int64
	TargetRatio float64
}

type entryInfo struct {
	path    string
	size    int64
	modTime time.Time
}

// MaybeEvict triggers an eviction pass in the background. At most one
// pass runs per store at a time; a trigger that arrives while a pass is
// in flight is dropped, since the running pass already sees the write
// that caused it or the next write will re-trigger.
func (s *Store) MaybeEvict(budget Budget) {
	if !s.evicting.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.evicting.Store(false)
		freed, err := s.EvictOnce(budget)
		if err != nil {
			logrus.WithError(err).Warn("[CACHE] Eviction pass failed")
			return
		}
		if freed > 0 {
			logrus.Debugf("[CACHE] Eviction freed %d bytes", freed)
		}
	}()
}

// EvictOnce runs one synchronous scan-and-delete pass and returns the
// bytes freed. Deleting a file that already disappeared is not an
// error; a concurrent pass or an external cleanup may have raced us.
func (s *Store) EvictOnce(budget Budget) (int64, error) {
	if budget.MaxBytes <= 0 {
		return 0, nil
	}

	entries, total, err := s.scan()
	if err != nil {
		return 0, err
	}
	if total <= budget.MaxBytes {
		return 0, nil
	}

	ratio := budget.TargetRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	target := int64(float64(budget.MaxBytes) * ratio)

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})

	var freed int64
	for _, e := range entries {
		if total-freed <= target {
			break
		}
		if err := os.Remove(e.path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			logrus.WithError(err).Warnf("[CACHE] Could not evict %s", e.path)
			continue
		}
		freed += e.size
	}
	return freed, nil
}

// Stats returns the current entry count and total size of the cache.
func (s *Store) Stats() (int, int64, error) {
	entries, total, err := s.scan()
	if err != nil {
		return 0, 0, err
	}
	return len(entries), total, nil
}

// Clear removes every finished entry. Used by the admin API.
func (s *Store) Clear() error {
	entries, _, err := s.scan()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// scan lists finished entries with size and mtime. In-flight temp files
// are skipped; they are renamed away or cleaned up by their writer.
func (s *Store) scan() ([]entryInfo, int64, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	var (
		entries []entryInfo
		total   int64
	)
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") || strings.Contains(de.Name(), ".tmp-") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, entryInfo{
			path:    filepath.Join(s.root, de.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
		total += info.Size()
	}
	return entries, total, nil
}
