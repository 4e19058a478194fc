package diskcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
)

// Store is a content-addressed, write-once image cache on local disk.
// Entries live flat under root as <key>.<ext>; a different transform
// parameter set always produces a different key, so no file is ever
// rewritten in place. Only the eviction pass deletes entries.
type Store struct {
	root     string
	evicting atomic.Bool
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the cache directory.
func (s *Store) Root() string {
	return s.root
}

// Key derives the deterministic cache identity for one transform. It
// depends on nothing but the four parameters, so the same request always
// lands on the same file regardless of fetch timing or upstream headers.
func Key(normalizedURL string, width, quality int, format string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%d|%s", normalizedURL, width, quality, format))
	return hex.EncodeToString(sum[:])
}

func (s *Store) entryPath(key, ext string) string {
	return filepath.Join(s.root, key+"."+ext)
}

// Exists reports whether a finished entry is present for key/ext.
func (s *Store) Exists(key, ext string) bool {
	info, err := os.Stat(s.entryPath(key, ext))
	return err == nil && !info.IsDir()
}

// Read returns the entry bytes. A missing file surfaces as
// fs.ErrNotExist; callers treat it as a cache miss, never as a failure,
// because an eviction pass may race a read at any time.
func (s *Store) Read(key, ext string) ([]byte, error) {
	return os.ReadFile(s.entryPath(key, ext))
}

// Write persists a new entry. Entries are write-once: when the file is
// already present (a concurrent miss got there first) the bytes are
// identical by construction and the write is skipped. The data goes to a
// temp file first and is renamed into place, so readers can never
// observe a partially written entry.
func (s *Store) Write(key, ext string, data []byte) error {
	final := s.entryPath(key, ext)
	if s.Exists(key, ext) {
		return nil
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", s.root, err)
	}

	tmp := final + ".tmp-" + uuid.NewString()[:8]
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write cache temp file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize cache entry: %w", err)
	}
	return nil
}
