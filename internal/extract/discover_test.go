package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFiles_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.pdf"), []byte("x"), 0644))

	paths, err := DiscoverFiles(dir, DefaultExtensions)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	for _, p := range paths {
		assert.NotEqual(t, "c.pdf", filepath.Base(p))
	}
}

func TestDiscoverFiles_SkipsDotDirectories(t *testing.T) {
	dir := t.TempDir()
	hidden := filepath.Join(dir, ".stage-cache")
	require.NoError(t, os.MkdirAll(hidden, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(hidden, "cached.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visible.md"), []byte("x"), 0644))

	paths, err := DiscoverFiles(dir, DefaultExtensions)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "visible.md", filepath.Base(paths[0]))
}

func TestDiscoverFiles_ReturnsPathsInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"charlie.md", "alpha.md", "bravo.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	paths, err := DiscoverFiles(dir, DefaultExtensions)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, "alpha.md", filepath.Base(paths[0]))
	assert.Equal(t, "bravo.md", filepath.Base(paths[1]))
	assert.Equal(t, "charlie.md", filepath.Base(paths[2]))
}

func TestDiscoverFiles_IsCaseInsensitiveOnExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "upper.MD"), []byte("x"), 0644))

	paths, err := DiscoverFiles(dir, DefaultExtensions)
	require.NoError(t, err)
	require.Len(t, paths, 1)
}
