package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry represents one generated file in the manifest.
type Entry struct {
	Package string   `yaml:"package" json:"package"`
	File    string   `yaml:"file" json:"file"` // relative to the module root, slash separated
	Types   []string `yaml:"types" json:"types"`
}

// Manifest tracks the files written by the generator so stale or deleted
// outputs can be detected.
type Manifest struct {
	Files []Entry `yaml:"files" json:"files"`
}

// Load reads a manifest from the provided path. If the file does not exist,
// an empty manifest is returned.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	slices.SortFunc(m.Files, func(a, b Entry) int { return strings.Compare(a.File, b.File) })

	return &m, nil
}

// Save writes the manifest to the provided path, creating parent directories as needed.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// Record adds or replaces the entry for e.File. Entries stay sorted by file.
func (m *Manifest) Record(e Entry) {
	e.Types = slices.Clone(e.Types)
	i, found := slices.BinarySearchFunc(m.Files, e.File, func(x Entry, file string) int {
		return strings.Compare(x.File, file)
	})
	if found {
		m.Files[i] = e
		return
	}
	m.Files = slices.Insert(m.Files, i, e)
}

// Remove drops the entry for file and reports whether there was one.
func (m *Manifest) Remove(file string) bool {
	before := len(m.Files)
	m.Files = slices.DeleteFunc(m.Files, func(e Entry) bool { return e.File == file })
	return len(m.Files) != before
}

// Stale returns the entries under scope, a module relative directory, whose
// file is not in current.
func (m *Manifest) Stale(scope string, current map[string]bool) []Entry {
	var out []Entry
	for _, e := range m.Files {
		if !current[e.File] && InScope(scope, e.File) {
			out = append(out, e)
		}
	}
	return out
}

// InScope reports whether file lies under the module relative directory scope.
func InScope(scope, file string) bool {
	if scope == "." || scope == "" {
		return true
	}
	return strings.HasPrefix(file, strings.TrimSuffix(scope, "/")+"/")
}

// Lookup returns the entry recorded for file, if present.
func (m *Manifest) Lookup(file string) (Entry, bool) {
	for _, e := range m.Files {
		if e.File == file {
			return e, true
		}
	}
	return Entry{}, false
}
