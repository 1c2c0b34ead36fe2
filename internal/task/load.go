package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vk/taskgridgo/internal/fsutil"
)

// Load reads a task batch from a single file, or from every task file
// found under a directory.
func Load(path string) ([]*Spec, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat tasks path: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadDir reads and concatenates every JSON and YAML task file under
// root, in sorted path order.
func LoadDir(root string) ([]*Spec, error) {
	files, err := fsutil.FindFilesByExtensions(root, ".json", ".yaml", ".yml")
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no task files found under %s", root)
	}

	var specs []*Spec
	for _, path := range files {
		batch, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		specs = append(specs, batch...)
	}
	return specs, nil
}

// LoadFile reads an ordered batch of task specs from a JSON or YAML file,
// keyed on the file extension. YAML input is normalized through JSON so the
// opaque Context payload keeps its raw form.
func LoadFile(path string) ([]*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return parseJSON(data)
	}
}

func parseJSON(data []byte) ([]*Spec, error) {
	var specs []*Spec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse tasks JSON: %w", err)
	}
	return specs, nil
}

func parseYAML(data []byte) ([]*Spec, error) {
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tasks YAML: %w", err)
	}
	// Round-trip through JSON so Context lands in json.RawMessage unchanged.
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize tasks YAML: %w", err)
	}
	return parseJSON(buf)
}
