package check_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/filecaster/pkg/action/check"
	"github.com/cmmoran/filecaster/pkg/action/generate"
	"github.com/cmmoran/filecaster/pkg/manifest"
	"github.com/cmmoran/filecaster/pkg/options"
)

const source = `package app

//filecaster:generate
type Config struct {
	//filecaster:default="127.0.0.1"
	Host    string
	Workers int
}
`

func writeModule(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/app\n\ngo 1.22\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.go"), []byte(source), 0o644))
	return dir
}

func TestGenerateThenCheck(t *testing.T) {
	dir := writeModule(t)
	opts, err := options.New(options.WithInDir(dir))
	require.NoError(t, err)

	outputs, err := generate.Generate(opts)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, []string{"Config"}, outputs[0].Types)

	gen := filepath.Join(dir, "filecaster_gen.go")
	require.FileExists(t, gen)

	m, err := manifest.Load(filepath.Join(dir, ".filecaster.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []manifest.Entry{{Package: "example.com/app", File: "filecaster_gen.go", Types: []string{"Config"}}}, m.Files)

	t.Run("up to date", func(t *testing.T) {
		findings, err := check.Check(opts)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("edited file drifts", func(t *testing.T) {
		data, err := os.ReadFile(gen)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(gen, append(data, []byte("\n// edited\n")...), 0o644))
		t.Cleanup(func() { _ = os.WriteFile(gen, data, 0o644) })

		findings, err := check.Check(opts)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, check.StatusDrift, findings[0].Status)
		assert.Contains(t, findings[0].Diff, "edited")
	})

	t.Run("recorded file no longer generated", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "old"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "old", "filecaster_gen.go"), []byte("package old\n"), 0o644))
		m.Record(manifest.Entry{Package: "example.com/app/old", File: "old/filecaster_gen.go"})
		m.Record(manifest.Entry{Package: "example.com/app/gone", File: "gone/filecaster_gen.go"})
		require.NoError(t, m.Save(filepath.Join(dir, ".filecaster.yaml")))

		findings, err := check.Check(opts)
		require.NoError(t, err)
		assert.ElementsMatch(t, []check.Finding{
			{File: "gone/filecaster_gen.go", Status: check.StatusMissing},
			{File: "old/filecaster_gen.go", Status: check.StatusOrphan},
		}, findings)
	})
}

func TestCheckMissing(t *testing.T) {
	dir := writeModule(t)
	opts, err := options.New(options.WithInDir(dir))
	require.NoError(t, err)

	findings, err := check.Check(opts)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, check.Finding{File: "filecaster_gen.go", Status: check.StatusMissing}, findings[0])
	assert.Equal(t, "filecaster_gen.go: missing", findings[0].String())
}

func TestCheckUnrecorded(t *testing.T) {
	dir := writeModule(t)
	opts, err := options.New(options.WithInDir(dir))
	require.NoError(t, err)

	_, err = generate.Generate(opts)
	require.NoError(t, err)
	require.NoError(t, (&manifest.Manifest{}).Save(filepath.Join(dir, ".filecaster.yaml")))

	findings, err := check.Check(opts)
	require.NoError(t, err)
	assert.Equal(t, []check.Finding{{File: "filecaster_gen.go", Status: check.StatusUnrecorded}}, findings)

	m := &manifest.Manifest{}
	m.Record(manifest.Entry{Package: "example.com/app", File: "filecaster_gen.go", Types: []string{"Other"}})
	require.NoError(t, m.Save(filepath.Join(dir, ".filecaster.yaml")))

	findings, err = check.Check(opts)
	require.NoError(t, err)
	assert.Equal(t, []check.Finding{{File: "filecaster_gen.go", Status: check.StatusUnrecorded}}, findings)
}

func TestGeneratePrunesStaleEntries(t *testing.T) {
	dir := writeModule(t)
	opts, err := options.New(options.WithInDir(dir))
	require.NoError(t, err)

	_, err = generate.Generate(opts)
	require.NoError(t, err)

	manifestPath := filepath.Join(dir, ".filecaster.yaml")
	m, err := manifest.Load(manifestPath)
	require.NoError(t, err)

	stale := filepath.Join(dir, "stale", "filecaster_gen.go")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("// Code generated by filecaster. DO NOT EDIT.\n\npackage stale\n"), 0o644))
	handwritten := filepath.Join(dir, "old", "filecaster_gen.go")
	require.NoError(t, os.MkdirAll(filepath.Dir(handwritten), 0o755))
	require.NoError(t, os.WriteFile(handwritten, []byte("package old\n"), 0o644))
	m.Record(manifest.Entry{Package: "example.com/app/stale", File: "stale/filecaster_gen.go"})
	m.Record(manifest.Entry{Package: "example.com/app/old", File: "old/filecaster_gen.go"})
	m.Record(manifest.Entry{Package: "example.com/app/gone", File: "gone/filecaster_gen.go"})
	require.NoError(t, m.Save(manifestPath))

	// the marker goes away, so Config is no longer generated
	unmarked := strings.Replace(source, "//filecaster:generate\n", "", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.go"), []byte(unmarked), 0o644))

	outputs, err := generate.Generate(opts)
	require.NoError(t, err)
	assert.Empty(t, outputs)

	assert.NoFileExists(t, filepath.Join(dir, "filecaster_gen.go"))
	assert.NoFileExists(t, stale)
	assert.FileExists(t, handwritten)

	m, err = manifest.Load(manifestPath)
	require.NoError(t, err)
	assert.Empty(t, m.Files)

	findings, err := check.Check(opts)
	require.NoError(t, err)
	assert.Empty(t, findings)
}
