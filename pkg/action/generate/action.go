package generate

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmmoran/filecaster/internal/generator"
	"github.com/cmmoran/filecaster/internal/parser"
	"github.com/cmmoran/filecaster/pkg/manifest"
	"github.com/cmmoran/filecaster/pkg/options"
)

// Plan parses the packages under opts.InDir and generates their files in
// memory. Packages with diagnostics produce no output; their errors are joined
// into the returned error next to the outputs of the other packages.
func Plan(opts *options.Options) ([]*generator.Output, error) {
	par, err := parser.NewWithOpts(opts)
	if err != nil {
		return nil, err
	}
	var errs []error
	if err = par.Parse(); err != nil {
		errs = append(errs, err)
	}
	gen := generator.New(par.Opts)
	outputs := make([]*generator.Output, 0, len(par.Packages))
	for _, pkg := range par.Packages {
		out, err := gen.Generate(pkg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		outputs = append(outputs, out)
	}
	return outputs, errors.Join(errs...)
}

// Generate writes the planned files and records them in the manifest kept at
// the module root. When every package planned cleanly, manifest entries under
// opts.InDir that nothing generates anymore are dropped and their files deleted.
func Generate(opts *options.Options) ([]*generator.Output, error) {
	outputs, planErr := Plan(opts)

	mod, err := parser.FindModule(opts.InDir)
	if err != nil {
		return nil, errors.Join(planErr, err)
	}
	manifestPath := mod.Abs(opts.Manifest)
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, errors.Join(planErr, err)
	}

	var (
		written = make([]*generator.Output, 0, len(outputs))
		current = make(map[string]bool, len(outputs))
		pruned  int
	)
	for _, out := range outputs {
		current[mod.Rel(out.Path)] = true
	}
	if planErr == nil {
		pruned, err = prune(mod, m, mod.Rel(opts.InDir), current)
		planErr = errors.Join(planErr, err)
	}
	for _, out := range outputs {
		if err := write(out); err != nil {
			planErr = errors.Join(planErr, err)
			continue
		}
		m.Record(manifest.Entry{
			Package: out.Package.PkgPath,
			File:    mod.Rel(out.Path),
			Types:   out.Types,
		})
		slog.Info("generated", "file", out.Path, "types", out.Types)
		written = append(written, out)
	}
	if len(written) > 0 || pruned > 0 {
		if err := m.Save(manifestPath); err != nil {
			planErr = errors.Join(planErr, err)
		}
	}
	return written, planErr
}

// prune drops the stale entries of m. A stale file is deleted only when it
// still carries the generated header.
func prune(mod *parser.Module, m *manifest.Manifest, scope string, current map[string]bool) (int, error) {
	var (
		errs    []error
		removed int
	)
	for _, e := range m.Stale(scope, current) {
		path := mod.Abs(e.File)
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			errs = append(errs, fmt.Errorf("read %s: %w", path, err))
			continue
		case generator.IsGenerated(data):
			if err = os.Remove(path); err != nil {
				errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
				continue
			}
			slog.Info("removed stale file", "file", path)
		default:
			slog.Warn("stale manifest entry names a file without the generated header, keeping it", "file", path)
		}
		m.Remove(e.File)
		removed++
	}
	return removed, errors.Join(errs...)
}

func write(out *generator.Output) error {
	data, err := out.Bytes()
	if err != nil {
		return err
	}
	if err = os.WriteFile(out.Path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out.Path, err)
	}
	return nil
}
