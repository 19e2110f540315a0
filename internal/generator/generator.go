package generator

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/cmmoran/filecaster/internal/parser"
	"github.com/cmmoran/filecaster/pkg/options"
)

// RuntimePath is the import path of the package the generated code calls into.
const RuntimePath = "github.com/cmmoran/filecaster"

const header = "Code generated by filecaster. DO NOT EDIT."

type Generator struct {
	Opts options.Options
}

func New(opts options.Options) *Generator {
	return &Generator{Opts: opts}
}

// Output is the generated file of one package.
type Output struct {
	Package *parser.Package
	Path    string // destination, <package dir>/<OutFile>
	File    *jen.File
	Types   []string // declarations generated, in source order
}

func (o *Output) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := o.File.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", o.Path, err)
	}
	return buf.Bytes(), nil
}

// IsGenerated reports whether data starts with the header of a generated file.
func IsGenerated(data []byte) bool {
	return bytes.HasPrefix(data, []byte("// "+header))
}

// Generate emits the shadow declarations of every declaration in pkg. Nothing
// is returned when any declaration fails: generation is all-or-nothing per package.
func (g *Generator) Generate(pkg *parser.Package) (*Output, error) {
	f := jen.NewFilePathName(pkg.PkgPath, pkg.Name)
	f.HeaderComment(header)
	f.ImportName(RuntimePath, "filecaster")

	classifier := &Classifier{
		PkgPath: pkg.PkgPath,
		Suffix:  g.Opts.Suffix,
		Local:   pkg.Declarations,
	}

	out := &Output{
		Package: pkg,
		Path:    filepath.Join(pkg.Dir, g.Opts.OutFile),
		File:    f,
	}
	var errs []error
	for _, d := range pkg.Declarations {
		registerImports(f, d.Imports)
		a := &assembler{
			emitter: &emitter{
				coder:      newCoder(d.Imports),
				decl:       d,
				classifier: classifier,
				pkgPath:    pkg.PkgPath,
				tags:       g.Opts.Tags,
				strict:     g.Opts.StrictDirectives,
			},
			suffix: g.Opts.Suffix,
			merge:  g.Opts.Merge,
		}
		code, err := a.assemble()
		if err != nil {
			errs = append(errs, fmt.Errorf("generate %s.%s: %w", pkg.PkgPath, d.Name, err))
			continue
		}
		for _, c := range code {
			f.Add(c)
			f.Line()
		}
		out.Types = append(out.Types, d.Name)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// registerImports keeps the local names the declaring file used, so copied
// expressions refer to the same packages.
func registerImports(f *jen.File, imports map[string]string) {
	names := make([]string, 0, len(imports))
	for name := range imports {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := imports[name]
		if p == RuntimePath {
			continue
		}
		if path.Base(p) == name {
			f.ImportName(p, name)
		} else {
			f.ImportAlias(p, name)
		}
	}
}
