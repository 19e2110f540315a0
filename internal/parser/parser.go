package parser

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"slices"

	"golang.org/x/tools/go/packages"

	"github.com/cmmoran/filecaster/internal/model"
	"github.com/cmmoran/filecaster/pkg/options"
)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedImports |
	packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo

// Parser holds state/results of a parse run.
type Parser struct {
	Opts options.Options

	Fset     *token.FileSet
	Packages []*Package
}

// Package is one loaded Go package together with the declarations selected
// for generation in it.
type Package struct {
	Name         string
	PkgPath      string
	Dir          string
	Types        *types.Package // nil when not type-checked
	Info         *types.Info    // nil when not type-checked
	Declarations model.Declarations
	Selected     []string // names selected for generation, including rejected ones
}

// New executes the parser with opts.
func New(opts ...options.Option) (*Parser, error) {
	o, err := options.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewWithOpts(o)
}

func NewWithOpts(opts *options.Options) (*Parser, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}
	return &Parser{
		Opts: *opts,
		Fset: token.NewFileSet(),
	}, nil
}

// Parse loads every package under Opts.InDir and extracts the selected
// declarations. All diagnostics are returned joined; packages with none are
// kept in p.Packages.
func (p *Parser) Parse() error {
	pkgs, err := packages.Load(&packages.Config{
		Mode: loadMode,
		Dir:  p.Opts.InDir,
		Fset: p.Fset,
	}, "./...")
	if err != nil {
		return fmt.Errorf("load packages in %s: %w", p.Opts.InDir, err)
	}

	var (
		errs  []error
		found = map[string]bool{}
	)
	for _, pkg := range pkgs {
		// Type errors are expected while a stale generated file is still on disk.
		for _, e := range pkg.Errors {
			slog.Debug("package load error", "pkg", pkg.PkgPath, "error", e.Error())
		}
		if len(pkg.Syntax) == 0 {
			continue
		}
		files := make([]*ast.File, 0, len(pkg.Syntax))
		for _, file := range pkg.Syntax {
			if filepath.Base(p.Fset.File(file.Pos()).Name()) == p.Opts.OutFile {
				continue
			}
			files = append(files, file)
		}
		gp, err := NewPackage(p.Fset, pkg.PkgPath, files, pkg.TypesInfo, pkg.Types, &p.Opts)
		for _, name := range gp.Selected {
			found[name] = true
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(gp.Declarations) == 0 {
			continue
		}
		if len(pkg.GoFiles) > 0 {
			gp.Dir = filepath.Dir(pkg.GoFiles[0])
		}
		slog.Debug("collected declarations", "pkg", gp.PkgPath, "count", len(gp.Declarations))
		p.Packages = append(p.Packages, gp)
	}
	for _, name := range p.Opts.Types {
		if !found[name] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrTypeNotFound, name))
		}
	}
	return errors.Join(errs...)
}

// NewPackage selects and extracts declarations from files. Declarations are
// selected by the generate marker or by name through opts.Types.
func NewPackage(fset *token.FileSet, pkgPath string, files []*ast.File, info *types.Info, typesPkg *types.Package, opts *options.Options) (*Package, error) {
	gp := &Package{
		PkgPath: pkgPath,
		Types:   typesPkg,
		Info:    info,
	}
	if len(files) > 0 {
		gp.Name = files[0].Name.Name
		gp.Dir = filepath.Dir(fset.File(files[0].Pos()).Name())
	}

	var errs []error
	for _, file := range files {
		decls, names, err := collectDeclarations(fset, file, pkgPath, info, opts)
		gp.Declarations = append(gp.Declarations, decls...)
		gp.Selected = append(gp.Selected, names...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return gp, err
	}
	return gp, nil
}

func collectDeclarations(fset *token.FileSet, file *ast.File, pkgPath string, info *types.Info, opts *options.Options) (model.Declarations, []string, error) {
	var (
		out   model.Declarations
		names []string
		errs  []error
	)
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || !selected(gen, ts, opts) {
				continue
			}
			names = append(names, ts.Name.Name)
			d, err := Extract(fset, file, gen, ts, pkgPath, info)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, d)
		}
	}
	return out, names, errors.Join(errs...)
}

func selected(gen *ast.GenDecl, ts *ast.TypeSpec, opts *options.Options) bool {
	if opts != nil && slices.Contains(opts.Types, ts.Name.Name) {
		return true
	}
	// A lone spec's doc comment is attached to the GenDecl.
	if len(gen.Specs) == 1 && hasGenerateMarker(gen.Doc) {
		return true
	}
	return hasGenerateMarker(ts.Doc)
}
