package parser

import (
	"go/ast"
	goparser "go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/filecaster/pkg/options"
)

func parseSource(t *testing.T, src string) (*token.FileSet, *ast.File) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, "input.go", src, goparser.ParseComments)
	require.NoError(t, err)
	return fset, file
}

func TestExtractRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
		line int
	}{
		{
			name: "sum type",
			src:  "type Shape interface{ isShape() }",
			msg:  "sum types are not supported",
		},
		{
			name: "named basic type",
			src:  "type Port int",
			msg:  "is not a struct",
		},
		{
			name: "slice type",
			src:  "type Ports []int",
			msg:  "is not a struct",
		},
		{
			name: "alias",
			src:  "type Other = struct{ A int }",
			msg:  "type alias",
		},
		{
			name: "unit struct",
			src:  "type Empty struct{}",
			msg:  "has no fields",
		},
		{
			name: "positional field",
			src:  "type Wrapped struct {\n\tA int\n\tInner\n}",
			msg:  "embedded field Inner",
			line: 5,
		},
		{
			name: "only blank fields",
			src:  "type Pad struct{ _ int }",
			msg:  "only blank fields",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := options.New(options.WithTypes("Shape", "Port", "Ports", "Other", "Empty", "Wrapped", "Pad"))
			require.NoError(t, err)
			fset, file := parseSource(t, "package app\n\n"+tt.src+"\n")

			pkg, err := NewPackage(fset, "example.com/app", []*ast.File{file}, nil, nil, o)
			require.ErrorIs(t, err, ErrNotNamedStruct)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Empty(t, pkg.Declarations)

			diags := Diagnostics(err)
			require.Len(t, diags, 1)
			assert.Equal(t, "input.go", diags[0].Pos.Filename)
			line := tt.line
			if line == 0 {
				line = 3
			}
			assert.Equal(t, line, diags[0].Pos.Line)
		})
	}
}

func TestExtract(t *testing.T) {
	src := `package app

import (
	"time"

	yml "gopkg.in/yaml.v3"
)

// Config is the app configuration.
//
//filecaster:generate
type Config[T any, N ~int] struct {
	//filecaster:default="localhost"
	Host      string ` + "`json:\"host\"`" + `
	A, B      int
	_         int
	timeout   time.Duration //filecaster:default=time.Second
	Node      yml.Node
	Generic   T
}

type Ignored struct{ A int }
`
	fset, file := parseSource(t, src)
	o, err := options.New()
	require.NoError(t, err)

	pkg, err := NewPackage(fset, "example.com/app", []*ast.File{file}, nil, nil, o)
	require.NoError(t, err)
	require.Len(t, pkg.Declarations, 1)
	assert.Equal(t, []string{"Config"}, pkg.Selected)
	assert.Equal(t, "app", pkg.Name)

	d := pkg.Declarations[0]
	assert.Equal(t, "Config", d.Name)
	assert.True(t, d.Exported)
	assert.True(t, d.IsGeneric())
	assert.Equal(t, "Config is the app configuration.", d.Doc)
	assert.Equal(t, "example.com/app", d.PkgPath)
	assert.Equal(t, "app", d.PkgName)
	assert.Equal(t, map[string]string{"time": "time", "yml": "gopkg.in/yaml.v3"}, d.Imports)
	assert.Equal(t, "ConfigFile", d.ShadowName("File"))

	require.Len(t, d.TypeParams, 2)
	assert.Equal(t, "T", d.TypeParams[0].Name)
	assert.Equal(t, "N", d.TypeParams[1].Name)

	var names []string
	for _, f := range d.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Host", "A", "B", "timeout", "Node", "Generic"}, names)

	host := d.Fields[0]
	assert.Equal(t, "host", host.Tag.Get("json"))
	require.Len(t, host.Directives, 1)
	assert.Equal(t, `filecaster:default="localhost"`, host.Directives[0].Text)

	timeout := d.Fields[3]
	assert.False(t, timeout.Exported)
	require.Len(t, timeout.Directives, 1, "trailing comment directives are collected")
	assert.Equal(t, "filecaster:default=time.Second", timeout.Directives[0].Text)
}

func TestSelection(t *testing.T) {
	src := `package app

type (
	// A is grouped.
	//filecaster:generate
	A struct{ X int }

	B struct{ X int }
)

//filecaster:generate
type C struct{ X int }

// filecaster:generate
type D struct{ X int }
`
	fset, file := parseSource(t, src)

	o, err := options.New(options.WithTypes("B"))
	require.NoError(t, err)
	pkg, err := NewPackage(fset, "example.com/app", []*ast.File{file}, nil, nil, o)
	require.NoError(t, err)

	var names []string
	for _, d := range pkg.Declarations {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"A", "B", "C"}, names, "a spaced comment is not a marker")
}

func TestGuessPackageName(t *testing.T) {
	tests := map[string]string{
		"time":                            "time",
		"gopkg.in/yaml.v3":                "yaml",
		"github.com/pelletier/go-toml/v2": "toml",
		"github.com/hashicorp/hcl/v2":     "hcl",
		"github.com/mattn/go-isatty":      "isatty",
		"example.com/some-pkg":            "some_pkg",
	}
	for in, want := range tests {
		assert.Equal(t, want, guessPackageName(in), in)
	}
}
