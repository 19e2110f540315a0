package parser

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// Module describes the Go module enclosing a directory.
type Module struct {
	Dir  string // directory holding go.mod
	Path string // module path from the module directive
}

// FindModule walks up from dir until it finds go.mod and parses it.
func FindModule(dir string) (*Module, error) {
	from, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		gomod := filepath.Join(from, "go.mod")
		if _, err = os.Stat(gomod); err == nil {
			data, err := os.ReadFile(gomod)
			if err != nil {
				return nil, err
			}
			mf, err := modfile.ParseLax(gomod, data, nil)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", gomod, err)
			}
			if mf.Module == nil {
				return nil, fmt.Errorf("%s has no module directive", gomod)
			}
			return &Module{Dir: from, Path: mf.Module.Mod.Path}, nil
		}
		parent := filepath.Dir(from)
		if parent == from {
			return nil, fmt.Errorf("no go.mod found above %s", dir)
		}
		from = parent
	}
}

// Rel returns path relative to the module root, slash separated.
func (m *Module) Rel(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	rel, err := filepath.Rel(m.Dir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Abs resolves a module-relative path.
func (m *Module) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Dir, filepath.FromSlash(rel))
}
