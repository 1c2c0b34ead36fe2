package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileJSON(t *testing.T) {
	path := writeTemp(t, "tasks.json", `[
		{"id":"a","title":"first","context":{"cmd":"build"},"acceptance_criteria":["builds"],"priority":3},
		{"id":"b","title":"second","context":{"cmd":"test"},"acceptance_criteria":["passes"],"dependencies":["a"]}
	]`)

	specs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "a", specs[0].ID)
	assert.Equal(t, 3, specs[0].Priority)
	assert.JSONEq(t, `{"cmd":"build"}`, string(specs[0].Context))
	assert.Equal(t, []string{"a"}, specs[1].Dependencies)
}

func TestLoadFileYAML(t *testing.T) {
	path := writeTemp(t, "tasks.yaml", `
- id: a
  title: first
  context:
    cmd: build
  acceptance_criteria:
    - builds
- id: b
  title: second
  context:
    cmd: test
  acceptance_criteria:
    - passes
  dependencies: [a]
`)

	specs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.JSONEq(t, `{"cmd":"build"}`, string(specs[0].Context))
	assert.Equal(t, []string{"a"}, specs[1].Dependencies)
}

func TestLoadFileBadJSON(t *testing.T) {
	path := writeTemp(t, "tasks.json", `{not json`)

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "failed to parse tasks JSON")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "failed to read tasks file")
}

func TestLoadDirConcatenatesBatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01-base.json"),
		[]byte(`[{"id": "a", "context": {}, "acceptance_criteria": ["x"]}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02-more.yaml"),
		[]byte("- id: b\n  context:\n    k: v\n  acceptance_criteria: [y]\n"), 0o644))

	specs, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "a", specs[0].ID, "files load in sorted path order")
	assert.Equal(t, "b", specs[1].ID)
}

func TestLoadDirEmpty(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "no task files found")
}
