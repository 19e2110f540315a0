package generator

import (
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"

	"github.com/dave/jennifer/jen"

	"github.com/cmmoran/filecaster/internal/model"
	"github.com/cmmoran/filecaster/internal/parser"
)

const (
	fileVar  = "file"
	otherVar = "other"
	outVar   = "out"
)

// fieldCode holds every fragment generated for one field of a declaration.
type fieldCode struct {
	orig  *model.Field
	name  string // shadow field name
	class model.Classification

	decl     jen.Code // shadow struct field
	resolve  jen.Code // statement filling out.<field> in FromFile
	merge    jen.Code // statement in Merge
	clone    jen.Code // key/value in the Clone composite literal
	describe jen.Code // argument of filecaster.Describe
}

// emitter produces the per-field fragments of one declaration.
type emitter struct {
	*coder
	decl       *model.Declaration
	classifier *Classifier
	pkgPath    string
	tags       []string
	strict     bool
}

func (e *emitter) emitField(f *model.Field, name string) (*fieldCode, error) {
	d, err := parser.ResolveDirective(f, e.strict)
	if err != nil {
		return nil, err
	}
	class := e.classifier.Classify(e.decl, f, d)
	slog.Debug("classified field", "field", f.Name, "kind", class.Kind.String(), "explicit", d.IsExplicit())
	fc := &fieldCode{orig: f, name: name, class: class}

	nested := class.Kind == model.KindNested
	var inner jen.Code
	if nested {
		inner = e.shadowType(class.Shadow)
	} else {
		inner = e.code(f.TypeExpr)
	}
	decl := jen.Id(name).Op("*").Add(inner)
	if tags := shadowTags(f, nested, e.tags); len(tags) > 0 {
		decl = decl.Tag(tags)
	}
	fc.decl = decl

	src := jen.Id(fileVar).Dot(name)
	dst := jen.Id(outVar).Dot(f.Name)
	var present jen.Code
	if nested {
		// Inner{}.FromFile(file.X): the nested shadow is passed through even when absent.
		present = jen.Add(e.code(f.TypeExpr)).Values().Dot(resolveMethod).Call(src)
	} else {
		present = jen.Op("*").Add(src)
	}
	switch {
	case d.IsExplicit():
		fc.resolve = jen.If(jen.Add(src).Op("!=").Nil()).Block(
			jen.Add(dst).Op("=").Add(present),
		).Else().Block(
			jen.Add(dst).Op("=").Add(e.defaultValue(f, d)),
		)
	case nested:
		fc.resolve = jen.Add(dst).Op("=").Add(present)
	default:
		// out already holds the zero value
		fc.resolve = jen.If(jen.Add(src).Op("!=").Nil()).Block(
			jen.Add(dst).Op("=").Add(present),
		)
	}

	fc.merge = jen.If(jen.Id(fileVar).Dot(name).Op("==").Nil()).Block(
		jen.Id(fileVar).Dot(name).Op("=").Id(otherVar).Dot(name),
	)
	if nested && class.Shadow.Cloneable {
		fc.clone = jen.Id(name).Op(":").Id(fileVar).Dot(name).Dot("Clone").Call()
	} else {
		fc.clone = jen.Id(name).Op(":").Qual(RuntimePath, "ClonePtr").Call(jen.Id(fileVar).Dot(name))
	}
	fc.describe = jen.Qual(RuntimePath, "Field").Call(jen.Lit(name), jen.Id(fileVar).Dot(name))

	if inlined(f.Tag) {
		slog.Warn("inline tag cannot be honored on an optional field, the field decodes as a nested object",
			"field", f.Name, "pos", f.Pos.String())
	}
	return fc, nil
}

// shadowType renders the nested shadow type, InnerFile or pkg.InnerFile[T].
func (e *emitter) shadowType(ref *model.ShadowRef) *jen.Statement {
	var s *jen.Statement
	if ref.PkgPath == "" || ref.PkgPath == e.pkgPath {
		s = jen.Id(ref.Name)
	} else {
		s = jen.Qual(ref.PkgPath, ref.Name)
	}
	if len(ref.TypeArgs) > 0 {
		s = s.Types(e.codes(ref.TypeArgs)...)
	}
	return s
}

// defaultValue renders the directive expression. A string literal assigned to
// a []byte or []rune field is wrapped in a conversion to the field's type.
func (e *emitter) defaultValue(f *model.Field, d model.Directive) jen.Code {
	if lit, ok := d.Expr.(*ast.BasicLit); ok && lit.Kind == token.STRING && byteOrRuneSlice(f) {
		return jen.Add(e.code(f.TypeExpr)).Call(e.code(lit))
	}
	return e.code(d.Expr)
}

func byteOrRuneSlice(f *model.Field) bool {
	if f.Type != nil {
		sl, ok := f.Type.Underlying().(*types.Slice)
		if !ok {
			return false
		}
		b, ok := sl.Elem().Underlying().(*types.Basic)
		return ok && (b.Kind() == types.Byte || b.Kind() == types.Rune)
	}
	at, ok := f.TypeExpr.(*ast.ArrayType)
	if !ok || at.Len != nil {
		return false
	}
	id, ok := at.Elt.(*ast.Ident)
	return ok && (id.Name == "byte" || id.Name == "uint8" || id.Name == "rune" || id.Name == "int32")
}
