package options

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Tag keys the shadow declaration can carry.
const (
	TagJSON         = "json"
	TagYAML         = "yaml"
	TagTOML         = "toml"
	TagMapstructure = "mapstructure"
	TagHCL          = "hcl"
)

var KnownTags = []string{TagJSON, TagYAML, TagTOML, TagMapstructure, TagHCL}

// Options control parsing and generation.
//
// InDir            – directory (package pattern root) to load
// OutFile          – name of the generated file written next to each package
// Suffix           – appended to every struct name to form its shadow name
// Types            – struct names to generate even without a marker comment
// Tags             – serialization tags emitted on shadow fields
// Merge            – emit the Merge capability on shadow types
// StrictDirectives – a second default directive on one field is an error instead of ignored
// Manifest         – manifest path, relative to the module root
type Options struct {
	InDir            string   `json:"in_dir,omitempty" yaml:"in_dir,omitempty" toml:"in_dir,omitempty" mapstructure:"in_dir,omitempty"`
	OutFile          string   `json:"out_file,omitempty" yaml:"out_file,omitempty" toml:"out_file,omitempty" mapstructure:"out_file,omitempty"`
	Suffix           string   `json:"suffix,omitempty" yaml:"suffix,omitempty" toml:"suffix,omitempty" mapstructure:"suffix,omitempty"`
	Types            []string `json:"types,omitempty" yaml:"types,omitempty" toml:"types,omitempty" mapstructure:"types,omitempty"`
	Tags             []string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty" mapstructure:"tags,omitempty"`
	Merge            bool     `json:"merge,omitempty" yaml:"merge,omitempty" toml:"merge,omitempty" mapstructure:"merge,omitempty"`
	StrictDirectives bool     `json:"strict_directives,omitempty" yaml:"strict_directives,omitempty" toml:"strict_directives,omitempty" mapstructure:"strict_directives,omitempty"`
	Manifest         string   `json:"manifest,omitempty" yaml:"manifest,omitempty" toml:"manifest,omitempty" mapstructure:"manifest,omitempty"`
}

func NewOptions() *Options {
	return &Options{
		InDir:    ".",
		OutFile:  "filecaster_gen.go",
		Suffix:   "File",
		Tags:     slices.Clone(KnownTags),
		Merge:    true,
		Manifest: ".filecaster.yaml",
	}
}

// Normalize fills empty values with defaults and validates the tag list.
func (o *Options) Normalize() error {
	if len(o.InDir) == 0 {
		o.InDir = "."
	}
	if strings.Contains(o.InDir, ".") {
		o.InDir, _ = filepath.Abs(o.InDir)
	}
	if len(o.OutFile) == 0 {
		o.OutFile = "filecaster_gen.go"
	}
	if !strings.HasSuffix(o.OutFile, ".go") {
		return fmt.Errorf("out file %q must be a .go file", o.OutFile)
	}
	// Ensure Suffix always has *some* value, an empty one would collide with the source type
	if o.Suffix == "" {
		o.Suffix = "File"
	}
	if len(o.Manifest) == 0 {
		o.Manifest = ".filecaster.yaml"
	}

	tags := make([]string, 0, len(o.Tags))
	for _, t := range o.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(tags, t) {
			continue
		}
		if !slices.Contains(KnownTags, t) {
			return fmt.Errorf("unknown tag %q, supported: %s", t, strings.Join(KnownTags, ","))
		}
		tags = append(tags, t)
	}
	o.Tags = tags

	types := make([]string, 0, len(o.Types))
	for _, t := range o.Types {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	o.Types = types
	return nil
}

func (o *Options) HasTag(key string) bool {
	return slices.Contains(o.Tags, key)
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithInDir(d string) Option    { return func(o *Options) { o.InDir = d } }
func WithOutFile(f string) Option  { return func(o *Options) { o.OutFile = f } }
func WithSuffix(s string) Option   { return func(o *Options) { o.Suffix = s } }
func WithManifest(p string) Option { return func(o *Options) { o.Manifest = p } }
func WithMerge(enabled bool) Option {
	return func(o *Options) { o.Merge = enabled }
}
func WithStrictDirectives() Option { return func(o *Options) { o.StrictDirectives = true } }
func WithTypes(names ...string) Option {
	return func(o *Options) {
		for _, n := range names {
			o.Types = append(o.Types, strings.TrimSpace(n))
		}
	}
}
func WithTags(keys ...string) Option {
	return func(o *Options) { o.Tags = append([]string{}, keys...) }
}

// New builds normalized options from defaults and opts.
func New(opts ...Option) (*Options, error) {
	o := NewOptions()
	for _, fn := range opts {
		fn(o)
	}
	if err := o.Normalize(); err != nil {
		return nil, err
	}
	return o, nil
}
