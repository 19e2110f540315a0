package generator

import (
	"go/ast"
	"go/types"

	"github.com/cmmoran/filecaster/internal/model"
)

// resolveMethod is the capability every processed type exposes:
// func (T) FromFile(*TFile) T.
const resolveMethod = "FromFile"

// Classifier decides between nested delegation and leaf wrapping. A field is
// nested only when its type is known to carry a shadow: it is generated in the
// same run, or it already exposes the FromFile capability. The syntactic shape
// of the type alone never makes a field nested.
type Classifier struct {
	PkgPath string
	Suffix  string
	Local   model.Declarations // declarations generated alongside, same package
}

// Classify classifies field f of decl under directive d.
func (c *Classifier) Classify(decl *model.Declaration, f *model.Field, d model.Directive) model.Classification {
	if ref := c.localShadow(decl, f.TypeExpr); ref != nil {
		return model.Classification{Kind: model.KindNested, Directive: d, Shadow: ref}
	}
	if ref := c.typeShadow(f); ref != nil {
		return model.Classification{Kind: model.KindNested, Directive: d, Shadow: ref}
	}
	class := model.Classification{Kind: model.KindLeaf, Directive: d}
	if !d.IsExplicit() {
		class.ZeroObligation = true
		class.NilZero = nilZero(f)
	}
	return class
}

// localShadow matches Name, Name[A] and Name[A, B] against the declarations of
// this run. A type parameter of decl hides a declaration of the same name.
func (c *Classifier) localShadow(decl *model.Declaration, expr ast.Expr) *model.ShadowRef {
	var (
		base *ast.Ident
		args []ast.Expr
	)
	switch e := expr.(type) {
	case *ast.Ident:
		base = e
	case *ast.IndexExpr:
		base, _ = e.X.(*ast.Ident)
		args = []ast.Expr{e.Index}
	case *ast.IndexListExpr:
		base, _ = e.X.(*ast.Ident)
		args = e.Indices
	}
	if base == nil || decl.HasTypeParam(base.Name) {
		return nil
	}
	d := c.Local.Find(base.Name)
	if d == nil || len(d.TypeParams) != len(args) {
		return nil
	}
	return &model.ShadowRef{
		PkgPath:  c.PkgPath,
		Name:     d.ShadowName(c.Suffix),
		Target:   d.Name,
		TypeArgs: args,

		Cloneable: true,
	}
}

// typeShadow checks the type-level capability: the field's named type has a
// value method FromFile(*S) returning itself, S being its shadow.
func (c *Classifier) typeShadow(f *model.Field) *model.ShadowRef {
	if f.Type == nil {
		return nil
	}
	named, ok := types.Unalias(f.Type).(*types.Named)
	if !ok {
		return nil
	}
	if _, isStruct := named.Underlying().(*types.Struct); !isStruct {
		return nil
	}
	obj, _, _ := types.LookupFieldOrMethod(named, false, named.Obj().Pkg(), resolveMethod)
	fn, ok := obj.(*types.Func)
	if !ok {
		return nil
	}
	sig := fn.Type().(*types.Signature)
	if sig.Params().Len() != 1 || sig.Results().Len() != 1 || sig.Variadic() {
		return nil
	}
	if !types.Identical(sig.Results().At(0).Type(), named) {
		return nil
	}
	ptr, ok := sig.Params().At(0).Type().(*types.Pointer)
	if !ok {
		return nil
	}
	shadow, ok := types.Unalias(ptr.Elem()).(*types.Named)
	if !ok {
		return nil
	}
	ref := &model.ShadowRef{
		Name:     shadow.Obj().Name(),
		Target:   named.Obj().Name(),
		TypeArgs: typeArgExprs(f.TypeExpr),

		Cloneable: hasClone(ptr),
	}
	if pkg := shadow.Obj().Pkg(); pkg != nil {
		ref.PkgPath = pkg.Path()
	}
	return ref
}

// hasClone reports whether ptr, a *S, has a method Clone() *S.
func hasClone(ptr *types.Pointer) bool {
	obj, _, _ := types.LookupFieldOrMethod(ptr, false, nil, "Clone")
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	sig := fn.Type().(*types.Signature)
	return sig.Params().Len() == 0 && sig.Results().Len() == 1 &&
		types.Identical(sig.Results().At(0).Type(), ptr)
}

func typeArgExprs(expr ast.Expr) []ast.Expr {
	switch e := expr.(type) {
	case *ast.IndexExpr:
		return []ast.Expr{e.Index}
	case *ast.IndexListExpr:
		return e.Indices
	}
	return nil
}

// nilZero reports whether the field's zero value is nil.
func nilZero(f *model.Field) bool {
	if f.Type != nil {
		switch f.Type.Underlying().(type) {
		case *types.Pointer, *types.Slice, *types.Map, *types.Signature, *types.Chan:
			return true
		case *types.Interface:
			_, isParam := types.Unalias(f.Type).(*types.TypeParam)
			return !isParam
		}
		return false
	}
	switch e := f.TypeExpr.(type) {
	case *ast.StarExpr, *ast.MapType, *ast.FuncType, *ast.ChanType, *ast.InterfaceType:
		return true
	case *ast.ArrayType:
		return e.Len == nil
	}
	return false
}
