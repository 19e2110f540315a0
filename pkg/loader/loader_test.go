package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listenerFile struct {
	Host *string `json:"host,omitempty" yaml:"host,omitempty" toml:"host,omitempty" mapstructure:"host" hcl:"host,optional"`
	Port *int    `json:"port,omitempty" yaml:"port,omitempty" toml:"port,omitempty" mapstructure:"port" hcl:"port,optional"`
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"a.json":        JSON,
		"dir/b.YAML":    YAML,
		"c.yml":         YAML,
		"/etc/app.toml": TOML,
		"main.hcl":      HCL,
	}
	for path, want := range tests {
		got, err := FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatOf("config.ini")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDecodeLeavesMissingKeysAbsent(t *testing.T) {
	tests := []struct {
		format Format
		data   string
	}{
		{JSON, `{"port": 80}`},
		{YAML, "port: 80\n"},
		{TOML, "port = 80\n"},
		{HCL, "port = 80\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var f listenerFile
			require.NoError(t, Decode(tt.format, []byte(tt.data), &f))
			assert.Nil(t, f.Host)
			require.NotNil(t, f.Port)
			assert.Equal(t, 80, *f.Port)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	var f listenerFile
	require.ErrorIs(t, Decode("ini", nil, &f), ErrUnknownFormat)
	require.Error(t, Decode(JSON, []byte(`{"port": "x"}`), &f))
	require.Error(t, Decode(HCL, []byte(`port = env.FILECASTER_UNSET_VARIABLE_FOR_TEST`), &f))
	require.Error(t, Decode(HCL, []byte(`unknown = 1`), &f))
}

func TestHCLEnvironment(t *testing.T) {
	t.Setenv("FILECASTER_TEST_LISTEN", "  Example.ORG ")
	var f listenerFile
	require.NoError(t, Decode(HCL, []byte(`host = lower(trimspace(env.FILECASTER_TEST_LISTEN))`), &f))
	require.NotNil(t, f.Host)
	assert.Equal(t, "example.org", *f.Host)
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "listener.toml")
	require.NoError(t, os.WriteFile(path, []byte(`host = "toml.example"`), 0o644))

	var f listenerFile
	require.NoError(t, DecodeFile(path, &f))
	require.NotNil(t, f.Host)
	assert.Equal(t, "toml.example", *f.Host)
	assert.Nil(t, f.Port)

	require.Error(t, DecodeFile(filepath.Join(dir, "missing.json"), &f))
	require.ErrorIs(t, DecodeFile(filepath.Join(dir, "listener.conf"), &f), ErrUnknownFormat)
}

func TestFromMap(t *testing.T) {
	var f listenerFile
	require.NoError(t, FromMap(map[string]any{"port": "8080"}, &f))
	require.NotNil(t, f.Port)
	assert.Equal(t, 8080, *f.Port)
	assert.Nil(t, f.Host)
}
