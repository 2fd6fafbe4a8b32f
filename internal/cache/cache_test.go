package cache

import (
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/node4good/gypninja/internal/generator"
	"github.com/node4good/gypninja/internal/sys"
)

var _ generator.Store = (*Cache)(nil)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c
}

func TestHashBytes(t *testing.T) {
	// Hash should be consistent
	assert.Equal(t, HashBytes([]byte("rule cc")), HashBytes([]byte("rule cc")))
	assert.Len(t, HashBytes(nil), 64)

	// Different content = different hash
	assert.NotEqual(t, HashBytes([]byte("rule cc")), HashBytes([]byte("rule cxx")))
}

func TestHashFile(t *testing.T) {
	m := sys.NewMemFS()
	require.NoError(t, m.WriteFile("build.ninja", []byte("default all\n"), 0o644))

	hash, err := HashFile(m, "build.ninja")
	require.NoError(t, err)
	assert.Equal(t, HashBytes([]byte("default all\n")), hash)

	_, err = HashFile(m, "missing.ninja")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOpen(t *testing.T) {
	outDir := t.TempDir()

	c, err := Open(outDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, DefaultDir), c.Root())
	assert.FileExists(t, filepath.Join(outDir, DefaultDir, "state.db"))
	require.NoError(t, c.Close())

	// Reopening keeps recorded entries
	c, err = Open(outDir)
	require.NoError(t, err)
	defer c.Close()

	entry, err := c.Get("out/Default/build.ninja")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestWriteIfChanged(t *testing.T) {
	c := openTestCache(t)
	m := sys.NewMemFS()

	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return stamp }

	const path = "out/Default/obj/foo.ninja"

	// First write always happens
	written, err := c.WriteIfChanged(m, path, []byte("v1"), "Default")
	require.NoError(t, err)
	assert.True(t, written)

	entry, err := c.Get(path)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, Entry{Path: path, Hash: HashBytes([]byte("v1")), Configuration: "Default", Timestamp: stamp}, *entry)

	// Same content is skipped
	written, err = c.WriteIfChanged(m, path, []byte("v1"), "Default")
	require.NoError(t, err)
	assert.False(t, written)

	// New content is written
	written, err = c.WriteIfChanged(m, path, []byte("v2"), "Default")
	require.NoError(t, err)
	assert.True(t, written)

	data, err := m.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestWriteIfChangedRepairsDisk(t *testing.T) {
	tests := []struct {
		name   string
		damage func(m *sys.MemFS, path string)
	}{
		{
			name:   "file deleted",
			damage: func(m *sys.MemFS, path string) { m.Remove(path) },
		},
		{
			name:   "file edited",
			damage: func(m *sys.MemFS, path string) { m.WriteFile(path, []byte("edited"), 0o644) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := openTestCache(t)
			m := sys.NewMemFS()

			const path = "out/Default/build.ninja"
			_, err := c.WriteIfChanged(m, path, []byte("rules"), "Default")
			require.NoError(t, err)

			tt.damage(m, path)

			written, err := c.WriteIfChanged(m, path, []byte("rules"), "Default")
			require.NoError(t, err)
			assert.True(t, written)

			data, err := m.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "rules", string(data))
		})
	}
}

func TestWriteIfChangedFailure(t *testing.T) {
	c := openTestCache(t)
	m := sys.NewMemFS()
	m.Fail = func(op, _ string) error {
		if op == "write" {
			return fs.ErrPermission
		}
		return nil
	}

	written, err := c.WriteIfChanged(m, "out/Default/build.ninja", []byte("rules"), "Default")
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.False(t, written)

	// Nothing is recorded for a failed write
	entry, err := c.Get("out/Default/build.ninja")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestPrune(t *testing.T) {
	c := openTestCache(t)
	m := sys.NewMemFS()

	files := map[string]string{
		"out/Debug/build.ninja":       "Debug",
		"out/Debug/obj/foo.ninja":     "Debug",
		"out/Debug/obj/old.ninja":     "Debug",
		"out/Debug/obj/gone.ninja":    "Debug",
		"out/Release/obj/old.ninja":   "Release",
		"out/Release/obj/other.ninja": "Release",
	}
	for path, configuration := range files {
		_, err := c.WriteIfChanged(m, path, []byte(path), configuration)
		require.NoError(t, err)
	}

	// A file removed by hand is forgotten but not reported
	require.NoError(t, m.Remove("out/Debug/obj/gone.ninja"))

	removed, err := c.Prune(m, "Debug", []string{"out/Debug/build.ninja", "out/Debug/obj/foo.ninja"})
	require.NoError(t, err)
	assert.Equal(t, []string{"out/Debug/obj/old.ninja"}, removed)

	assert.False(t, m.Exists("out/Debug/obj/old.ninja"))
	assert.True(t, m.Exists("out/Debug/obj/foo.ninja"))
	assert.True(t, m.Exists("out/Release/obj/old.ninja"), "other configurations are untouched")

	for _, path := range []string{"out/Debug/obj/old.ninja", "out/Debug/obj/gone.ninja"} {
		entry, err := c.Get(path)
		require.NoError(t, err)
		assert.Nil(t, entry, path)
	}

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Debug": 2, "Release": 2}, stats)
}

func TestPruneKeepsNativeSpelling(t *testing.T) {
	c := openTestCache(t)
	m := sys.NewMemFS()

	_, err := c.WriteIfChanged(m, "out/Default/obj/foo.ninja", []byte("x"), "Default")
	require.NoError(t, err)

	removed, err := c.Prune(m, "Default", []string{filepath.FromSlash("out/Default/obj/foo.ninja")})
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.True(t, m.Exists("out/Default/obj/foo.ninja"))
}

func TestClear(t *testing.T) {
	c := openTestCache(t)
	m := sys.NewMemFS()

	_, err := c.WriteIfChanged(m, "out/Default/build.ninja", []byte("rules"), "Default")
	require.NoError(t, err)

	require.NoError(t, c.Clear())

	entry, err := c.Get("out/Default/build.ninja")
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.True(t, m.Exists("out/Default/build.ninja"), "files on disk are left alone")

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Empty(t, stats)
}
