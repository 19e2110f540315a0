package parser

import (
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"path"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/cmmoran/filecaster/internal/model"
)

// Extract validates that spec declares a struct with named fields only and
// builds its Declaration. info may be nil when the source was not type-checked.
func Extract(fset *token.FileSet, file *ast.File, gen *ast.GenDecl, spec *ast.TypeSpec, pkgPath string, info *types.Info) (*model.Declaration, error) {
	name := spec.Name.Name
	pos := fset.Position(spec.Name.Pos())

	if spec.Assign.IsValid() {
		return nil, NotNamedStruct(pos, "%s is a type alias", name)
	}
	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		if _, isIface := spec.Type.(*ast.InterfaceType); isIface {
			return nil, NotNamedStruct(pos, "%s is an interface, sum types are not supported", name)
		}
		return nil, NotNamedStruct(pos, "%s is not a struct", name)
	}
	if st.Fields == nil || len(st.Fields.List) == 0 {
		return nil, NotNamedStruct(pos, "%s has no fields", name)
	}

	decl := &model.Declaration{
		Name:     name,
		Exported: ast.IsExported(name),
		Doc:      declComment(gen, spec),
		PkgPath:  pkgPath,
		PkgName:  file.Name.Name,
		Pos:      pos,
		Imports:  importNames(file, info),
	}
	if spec.TypeParams != nil {
		for _, fp := range spec.TypeParams.List {
			for _, id := range fp.Names {
				decl.TypeParams = append(decl.TypeParams, &model.TypeParam{Name: id.Name, Constraint: fp.Type})
			}
		}
	}

	for _, fld := range st.Fields.List {
		fields, err := extractFields(fset, fld, info)
		if err != nil {
			return nil, err
		}
		decl.Fields = append(decl.Fields, fields...)
	}
	if len(decl.Fields) == 0 {
		return nil, NotNamedStruct(pos, "%s has only blank fields", name)
	}
	return decl, nil
}

func extractFields(fset *token.FileSet, fld *ast.Field, info *types.Info) ([]*model.Field, error) {
	if len(fld.Names) == 0 {
		return nil, NotNamedStruct(fset.Position(fld.Pos()),
			"embedded field %s has no name of its own", embeddedFieldName(fld.Type))
	}

	var (
		tag        reflect.StructTag
		typ        types.Type
		directives = collectDirectives(fset, fld)
	)
	if fld.Tag != nil {
		if raw, err := strconv.Unquote(fld.Tag.Value); err == nil {
			tag = reflect.StructTag(raw)
		}
	}
	if info != nil {
		typ = info.TypeOf(fld.Type)
	}

	out := make([]*model.Field, 0, len(fld.Names))
	for _, id := range fld.Names {
		if id.Name == "_" {
			slog.Debug("skipping blank field", "pos", fset.Position(id.Pos()).String())
			continue
		}
		out = append(out, &model.Field{
			Name:       id.Name,
			TypeExpr:   fld.Type,
			Type:       typ,
			Directives: directives,
			Tag:        tag,
			Exported:   ast.IsExported(id.Name),
			Pos:        fset.Position(id.Pos()),
		})
	}
	return out, nil
}

// helpers
func embeddedFieldName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.StarExpr:
		return embeddedFieldName(t.X)
	case *ast.IndexExpr:
		return embeddedFieldName(t.X)
	case *ast.IndexListExpr:
		return embeddedFieldName(t.X)
	}
	return ""
}

func declComment(gen *ast.GenDecl, spec *ast.TypeSpec) string {
	// Accumulate type-level comments
	typeComment := commentText(gen.Doc)
	if spec.Doc != nil {
		docTxt := commentText(spec.Doc)
		if docTxt != "" {
			if typeComment == "" {
				typeComment = docTxt
			} else {
				typeComment += "\n" + docTxt
			}
		}
	}
	return typeComment
}

// commentText joins a comment group, leaving out filecaster directives.
func commentText(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range cg.List {
		if strings.HasPrefix(c.Text, "//"+DirectivePrefix) {
			continue
		}
		txt := strings.TrimSpace(strings.Trim(strings.TrimPrefix(strings.TrimPrefix(c.Text, "//"), "/*"), "*/"))
		b.WriteString(txt)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

var versionSuffix = regexp.MustCompile(`^v[0-9]+$`)

// importNames maps every usable local import name of file to its path.
func importNames(file *ast.File, info *types.Info) map[string]string {
	out := make(map[string]string, len(file.Imports))
	for _, imp := range file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		if imp.Name != nil {
			if imp.Name.Name != "_" && imp.Name.Name != "." {
				out[imp.Name.Name] = p
			}
			continue
		}
		if info != nil {
			if pn, ok := info.Implicits[imp].(*types.PkgName); ok {
				out[pn.Name()] = p
				continue
			}
		}
		out[guessPackageName(p)] = p
	}
	return out
}

// guessPackageName applies the go tool's naming convention when the package
// was not loaded: "gopkg.in/yaml.v3" → yaml, "example.com/foo/v2" → foo.
func guessPackageName(importPath string) string {
	base := path.Base(importPath)
	if versionSuffix.MatchString(base) {
		base = path.Base(path.Dir(importPath))
	}
	if i := strings.Index(base, ".v"); i > 0 {
		base = base[:i]
	}
	return strings.NewReplacer("-", "_", ".", "_").Replace(strings.TrimPrefix(base, "go-"))
}
