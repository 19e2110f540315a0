package check

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/google/go-cmp/cmp"

	"github.com/cmmoran/filecaster/internal/parser"
	"github.com/cmmoran/filecaster/pkg/action/generate"
	"github.com/cmmoran/filecaster/pkg/manifest"
	"github.com/cmmoran/filecaster/pkg/options"
)

type Status string

const (
	StatusMissing    Status = "missing"    // expected file is not on disk
	StatusDrift      Status = "drift"      // file on disk differs from a fresh generation
	StatusOrphan     Status = "orphan"     // recorded in the manifest but no longer generated
	StatusUnrecorded Status = "unrecorded" // up to date on disk, but the manifest entry is absent or lists other types
)

// Finding is a generated file that is out of date.
type Finding struct {
	File   string // relative to the module root
	Status Status
	Diff   string // -disk +generated, only for StatusDrift
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.File, f.Status)
}

// Check regenerates every package in memory and compares the result with the
// files on disk and with the manifest. Generation diagnostics are returned as
// the error; findings describe what a generate run would change.
func Check(opts *options.Options) ([]Finding, error) {
	outputs, planErr := generate.Plan(opts)

	mod, err := parser.FindModule(opts.InDir)
	if err != nil {
		return nil, errors.Join(planErr, err)
	}
	m, err := manifest.Load(mod.Abs(opts.Manifest))
	if err != nil {
		return nil, errors.Join(planErr, err)
	}

	var (
		findings   []Finding
		seen       = map[string]bool{}
		planFailed = planErr != nil
		scope      = mod.Rel(opts.InDir)
	)
	for _, out := range outputs {
		rel := mod.Rel(out.Path)
		seen[rel] = true

		want, err := out.Bytes()
		if err != nil {
			planErr = errors.Join(planErr, err)
			continue
		}
		have, err := os.ReadFile(out.Path)
		if errors.Is(err, os.ErrNotExist) {
			findings = append(findings, Finding{File: rel, Status: StatusMissing})
			continue
		}
		if err != nil {
			planErr = errors.Join(planErr, fmt.Errorf("read %s: %w", out.Path, err))
			continue
		}
		if diff := cmp.Diff(string(have), string(want)); diff != "" {
			findings = append(findings, Finding{File: rel, Status: StatusDrift, Diff: diff})
			continue
		}
		if e, ok := m.Lookup(rel); !ok || !slices.Equal(e.Types, out.Types) {
			findings = append(findings, Finding{File: rel, Status: StatusUnrecorded})
		}
	}
	for _, e := range m.Stale(scope, seen) {
		if _, err := os.Stat(mod.Abs(e.File)); errors.Is(err, os.ErrNotExist) {
			findings = append(findings, Finding{File: e.File, Status: StatusMissing})
			continue
		}
		// a package with diagnostics produced no output, it is not an orphan
		if !planFailed {
			findings = append(findings, Finding{File: e.File, Status: StatusOrphan})
		}
	}
	return findings, planErr
}
