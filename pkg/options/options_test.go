package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		check   func(t *testing.T, o *Options)
		wantErr bool
	}{
		{
			name: "defaults",
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, "filecaster_gen.go", o.OutFile)
				assert.Equal(t, "File", o.Suffix)
				assert.Equal(t, KnownTags, o.Tags)
				assert.True(t, o.Merge)
				assert.False(t, o.StrictDirectives)
				assert.Equal(t, ".filecaster.yaml", o.Manifest)
			},
		},
		{
			name: "overrides",
			opts: []Option{
				WithOutFile("shadow_gen.go"),
				WithSuffix("Partial"),
				WithMerge(false),
				WithStrictDirectives(),
				WithTypes(" Config ", "", "Server"),
				WithTags("YAML", "json", "yaml"),
			},
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, "shadow_gen.go", o.OutFile)
				assert.Equal(t, "Partial", o.Suffix)
				assert.False(t, o.Merge)
				assert.True(t, o.StrictDirectives)
				assert.Equal(t, []string{"Config", "Server"}, o.Types)
				assert.Equal(t, []string{"yaml", "json"}, o.Tags)
				assert.True(t, o.HasTag(TagJSON))
				assert.False(t, o.HasTag(TagHCL))
			},
		},
		{
			name: "empty suffix falls back",
			opts: []Option{WithSuffix("")},
			check: func(t *testing.T, o *Options) {
				assert.Equal(t, "File", o.Suffix)
			},
		},
		{
			name:    "out file must be go source",
			opts:    []Option{WithOutFile("shadow.txt")},
			wantErr: true,
		},
		{
			name:    "unknown tag",
			opts:    []Option{WithTags("xml")},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := New(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, o)
		})
	}
}
