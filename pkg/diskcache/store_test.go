package diskcache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_DeterministicAndDistinct(t *testing.T) {
	base := Key("https://cdn.example.com/foo.jpg", 200, 80, "webp")

	assert.Equal(t, base, Key("https://cdn.example.com/foo.jpg", 200, 80, "webp"))
	assert.Len(t, base, 64)

	assert.NotEqual(t, base, Key("https://cdn.example.com/foo.jpg", 300, 80, "webp"))
	assert.NotEqual(t, base, Key("https://cdn.example.com/foo.jpg", 200, 90, "webp"))
	assert.NotEqual(t, base, Key("https://cdn.example.com/foo.jpg", 200, 80, "jpeg"))
	assert.NotEqual(t, base, Key("https://cdn.example.com/bar.jpg", 200, 80, "webp"))
}

func TestStore_WriteReadRoundtrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "cache"))
	key := Key("https://cdn.example.com/foo.jpg", 200, 80, "webp")

	require.False(t, s.Exists(key, "webp"))
	require.NoError(t, s.Write(key, "webp", []byte("payload")))
	require.True(t, s.Exists(key, "webp"))

	data, err := s.Read(key, "webp")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestStore_ReadMissingIsNotExist(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Read("deadbeef", "webp")
	assert.True(t, os.IsNotExist(err))
}

func TestStore_WriteOnce(t *testing.T) {
	s := NewStore(t.TempDir())
	key := Key("https://cdn.example.com/foo.jpg", 0, 72, "jpeg")

	require.NoError(t, s.Write(key, "jpg", []byte("first")))
	require.NoError(t, s.Write(key, "jpg", []byte("second")))

	data, err := s.Read(key, "jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), data, "existing entries must never be rewritten")
}

func TestStore_WriteCreatesDirLazily(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "cache")
	s := NewStore(root)

	_, err := os.Stat(root)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, s.Write("abc123", "png", []byte("x")))
	require.True(t, s.Exists("abc123", "png"))
}

func TestStore_NoTempFilesLeftBehind(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Write("abc123", "webp", []byte("x")))

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "temp file %s should have been renamed", e.Name())
	}
}
