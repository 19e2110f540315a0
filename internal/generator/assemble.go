package generator

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/cmmoran/filecaster/internal/parser"
)

// Methods generated on the shadow type. A shadow field may not take one of
// these names, and the original type may not have a field named FromFile.
var shadowMethods = []string{"Resolve", "Merge", "Clone", "String"}

// assembler stitches the field fragments of one declaration into the shadow
// type, its constructor, the reconstruction method and the two conversions.
type assembler struct {
	*emitter
	suffix string
	merge  bool
}

func (a *assembler) assemble() ([]jen.Code, error) {
	d := a.decl
	names, err := a.fieldNames()
	if err != nil {
		return nil, err
	}

	var (
		fields = make([]*fieldCode, 0, len(d.Fields))
		errs   []error
	)
	for i, f := range d.Fields {
		fc, err := a.emitField(f, names[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fields = append(fields, fc)
	}
	if err = errors.Join(errs...); err != nil {
		return nil, err
	}
	for _, fc := range fields {
		if fc.class.NilZero {
			slog.Warn("field without default resolves to nil when absent",
				"type", d.Name, "field", fc.orig.Name, "pos", fc.orig.Pos.String())
		}
	}

	shadow := d.ShadowName(a.suffix)
	out := []jen.Code{
		a.shadowDecl(shadow, fields),
		a.constructor(shadow),
		a.fromFile(shadow, fields),
		a.resolve(shadow),
		a.conversion(shadow),
	}
	if a.merge {
		out = append(out, a.mergeMethod(shadow, fields))
	}
	out = append(out, a.cloneMethod(shadow, fields), a.stringMethod(shadow, fields))
	if !d.IsGeneric() {
		out = append(out, jen.Var().Id("_").Qual(RuntimePath, "Resolver").
			Types(jen.Id(d.Name), jen.Id(shadow)).Op("=").Id(d.Name).Values())
	}
	return out, nil
}

// fieldNames picks the shadow field names: the exported form of each name,
// or the name itself when the exported form is taken by a sibling.
func (a *assembler) fieldNames() ([]string, error) {
	d := a.decl
	taken := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		taken[f.Name] = true
	}
	names := make([]string, len(d.Fields))
	var errs []error
	for i, f := range d.Fields {
		if f.Name == resolveMethod {
			errs = append(errs, parser.NameCollision(f.Pos, "%s.%s collides with the generated %s method", d.Name, f.Name, resolveMethod))
			continue
		}
		name := exportedName(f.Name)
		if name != f.Name && taken[name] {
			slog.Warn("exported name taken by a sibling, shadow field keeps the original name",
				"type", d.Name, "field", f.Name, "pos", f.Pos.String())
			name = f.Name
		}
		for _, m := range shadowMethods {
			if name == m {
				errs = append(errs, parser.NameCollision(f.Pos, "shadow field %s of %s collides with the generated %s method",
					name, d.ShadowName(a.suffix), m))
			}
		}
		names[i] = name
	}
	return names, errors.Join(errs...)
}

// typeParams renders [T C, U any] for the declaration.
func (a *assembler) typeParams() []jen.Code {
	out := make([]jen.Code, 0, len(a.decl.TypeParams))
	for _, tp := range a.decl.TypeParams {
		out = append(out, jen.Id(tp.Name).Add(a.code(tp.Constraint)))
	}
	return out
}

// inst renders name instantiated with the declaration's own parameters: Name[T, U].
func (a *assembler) inst(name string) *jen.Statement {
	s := jen.Id(name)
	if !a.decl.IsGeneric() {
		return s
	}
	args := make([]jen.Code, 0, len(a.decl.TypeParams))
	for _, tp := range a.decl.TypeParams {
		args = append(args, jen.Id(tp.Name))
	}
	return s.Types(args...)
}

// funcName derives a package-level function name with the visibility of the declaration.
func (a *assembler) funcName(name string) string {
	if a.decl.Exported {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func (a *assembler) shadowDecl(shadow string, fields []*fieldCode) jen.Code {
	decls := make([]jen.Code, 0, len(fields))
	for _, fc := range fields {
		decls = append(decls, fc.decl)
	}
	s := jen.Comment(shadow + " is the all-optional form of " + a.decl.Name + ". A nil field is absent.").Line()
	if a.decl.Doc != "" {
		// carry the documentation of the original type
		s = s.Comment("").Line()
		for _, line := range strings.Split(a.decl.Doc, "\n") {
			s = s.Comment(line).Line()
		}
	}
	s = s.Type().Id(shadow)
	if a.decl.IsGeneric() {
		s = s.Types(a.typeParams()...)
	}
	return s.Struct(decls...)
}

func (a *assembler) constructor(shadow string) jen.Code {
	name := a.funcName("New" + exportedName(shadow))
	s := jen.Comment(name + " returns an empty " + shadow + ".").Line().Func().Id(name)
	if a.decl.IsGeneric() {
		s = s.Types(a.typeParams()...)
	}
	return s.Params().Op("*").Add(a.inst(shadow)).Block(
		jen.Return(jen.Op("&").Add(a.inst(shadow)).Values()),
	)
}

func (a *assembler) fromFile(shadow string, fields []*fieldCode) jen.Code {
	body := []jen.Code{
		jen.If(jen.Id(fileVar).Op("==").Nil()).Block(
			jen.Id(fileVar).Op("=").Op("&").Add(a.inst(shadow)).Values(),
		),
		jen.Var().Id(outVar).Add(a.inst(a.decl.Name)),
	}
	for _, fc := range fields {
		body = append(body, fc.resolve)
	}
	body = append(body, jen.Return(jen.Id(outVar)))

	return jen.Comment(resolveMethod + " builds a " + a.decl.Name + " from file. Absent fields take their default,").Line().
		Comment("or the zero value when none is declared. A nil file resolves every field that way.").Line().
		Func().Params(a.inst(a.decl.Name)).Id(resolveMethod).
		Params(jen.Id(fileVar).Op("*").Add(a.inst(shadow))).
		Add(a.inst(a.decl.Name)).
		Block(body...)
}

func (a *assembler) resolve(shadow string) jen.Code {
	return jen.Comment("Resolve converts file, which may be nil, into a " + a.decl.Name + ".").Line().
		Func().Params(jen.Id(fileVar).Op("*").Add(a.inst(shadow))).Id("Resolve").Params().
		Add(a.inst(a.decl.Name)).
		Block(jen.Return(a.inst(a.decl.Name).Values().Dot(resolveMethod).Call(jen.Id(fileVar))))
}

func (a *assembler) conversion(shadow string) jen.Code {
	name := a.funcName(a.decl.Name + "From" + a.suffix)
	s := jen.Comment(name + " converts a present " + shadow + " into a " + a.decl.Name + ".").Line().
		Func().Id(name)
	if a.decl.IsGeneric() {
		s = s.Types(a.typeParams()...)
	}
	return s.Params(jen.Id(fileVar).Add(a.inst(shadow))).
		Add(a.inst(a.decl.Name)).
		Block(jen.Return(a.inst(a.decl.Name).Values().Dot(resolveMethod).Call(jen.Op("&").Id(fileVar))))
}

func (a *assembler) mergeMethod(shadow string, fields []*fieldCode) jen.Code {
	body := []jen.Code{
		jen.If(jen.Id(fileVar).Op("==").Nil().Op("||").Id(otherVar).Op("==").Nil()).Block(jen.Return()),
	}
	for _, fc := range fields {
		body = append(body, fc.merge)
	}
	return jen.Comment("Merge fills the absent fields of file from other. Present fields are kept.").Line().
		Func().Params(jen.Id(fileVar).Op("*").Add(a.inst(shadow))).Id("Merge").
		Params(jen.Id(otherVar).Op("*").Add(a.inst(shadow))).
		Block(body...)
}

func (a *assembler) cloneMethod(shadow string, fields []*fieldCode) jen.Code {
	values := make([]jen.Code, 0, len(fields)+1)
	for _, fc := range fields {
		values = append(values, jen.Line().Add(fc.clone))
	}
	values = append(values, jen.Line())
	return jen.Comment("Clone returns a copy of file with fresh optional values. Values are copied shallowly.").Line().
		Func().Params(jen.Id(fileVar).Op("*").Add(a.inst(shadow))).Id("Clone").Params().
		Op("*").Add(a.inst(shadow)).
		Block(
			jen.If(jen.Id(fileVar).Op("==").Nil()).Block(jen.Return(jen.Nil())),
			jen.Return(jen.Op("&").Add(a.inst(shadow)).Values(values...)),
		)
}

func (a *assembler) stringMethod(shadow string, fields []*fieldCode) jen.Code {
	args := []jen.Code{jen.Line().Lit(shadow)}
	for _, fc := range fields {
		args = append(args, jen.Line().Add(fc.describe))
	}
	args = append(args, jen.Line())
	return jen.Func().Params(jen.Id(fileVar).Add(a.inst(shadow))).Id("String").Params().String().
		Block(jen.Return(jen.Qual(RuntimePath, "Describe").Call(args...)))
}
