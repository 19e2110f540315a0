package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissing(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, m.Files)
}

func TestRecordSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".filecaster.yaml")

	m := &Manifest{}
	m.Record(Entry{Package: "example.com/app/b", File: "b/filecaster_gen.go", Types: []string{"B"}})
	m.Record(Entry{Package: "example.com/app/a", File: "a/filecaster_gen.go", Types: []string{"A"}})
	m.Record(Entry{Package: "example.com/app/b", File: "b/filecaster_gen.go", Types: []string{"B", "C"}})
	require.NoError(t, m.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	want := []Entry{
		{Package: "example.com/app/a", File: "a/filecaster_gen.go", Types: []string{"A"}},
		{Package: "example.com/app/b", File: "b/filecaster_gen.go", Types: []string{"B", "C"}},
	}
	require.Empty(t, cmp.Diff(want, got.Files))

	e, ok := got.Lookup("b/filecaster_gen.go")
	require.True(t, ok)
	assert.Equal(t, []string{"B", "C"}, e.Types)

	assert.True(t, got.Remove("a/filecaster_gen.go"))
	assert.False(t, got.Remove("a/filecaster_gen.go"))
	_, ok = got.Lookup("a/filecaster_gen.go")
	assert.False(t, ok)
}

func TestLoadSortsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".filecaster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`files:
  - package: z
    file: z/filecaster_gen.go
  - package: m
    file: m/filecaster_gen.go
`), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	require.Len(t, m.Files, 2)
	assert.Equal(t, "m/filecaster_gen.go", m.Files[0].File)

	m.Record(Entry{Package: "q", File: "q/filecaster_gen.go"})
	assert.Equal(t, "q/filecaster_gen.go", m.Files[1].File)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".filecaster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("files: [:"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestStale(t *testing.T) {
	m := &Manifest{}
	for _, f := range []string{"filecaster_gen.go", "a/filecaster_gen.go", "a/b/filecaster_gen.go", "ab/filecaster_gen.go"} {
		m.Record(Entry{File: f})
	}
	current := map[string]bool{"a/filecaster_gen.go": true}

	tests := []struct {
		scope string
		want  []string
	}{
		{scope: ".", want: []string{"a/b/filecaster_gen.go", "ab/filecaster_gen.go", "filecaster_gen.go"}},
		{scope: "", want: []string{"a/b/filecaster_gen.go", "ab/filecaster_gen.go", "filecaster_gen.go"}},
		{scope: "a", want: []string{"a/b/filecaster_gen.go"}},
		{scope: "a/", want: []string{"a/b/filecaster_gen.go"}},
		{scope: "c", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.scope, func(t *testing.T) {
			var got []string
			for _, e := range m.Stale(tt.scope, current) {
				got = append(got, e.File)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Stale(%q) mismatch (-want +got):\n%s", tt.scope, diff)
			}
		})
	}
}
