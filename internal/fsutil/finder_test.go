package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtensions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"b.json", "a.yaml", "nested/c.yml", "ignore.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	files, err := FindFilesByExtensions(dir, ".json", ".yaml", ".yml")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(dir, "a.yaml"), files[0], "results are sorted")
}

func TestFindFilesByExtensionsMissingRoot(t *testing.T) {
	_, err := FindFilesByExtensions(filepath.Join(t.TempDir(), "absent"), ".json")
	assert.Error(t, err)
}
