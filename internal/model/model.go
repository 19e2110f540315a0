package model

import (
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
)

// RawDirective is one `//filecaster:...` comment attached to a field, unparsed.
type RawDirective struct {
	Text string // comment text without the leading "//"
	Pos  token.Position
}

type Field struct {
	Name       string     // Go identifier
	TypeExpr   ast.Expr   // AST for the type (pointer, slice, selector, …)
	Type       types.Type // nil when the package was not type-checked
	Directives []RawDirective
	Tag        reflect.StructTag
	Exported   bool // ast.IsExported(Name)
	Pos        token.Position
}

type TypeParam struct {
	Name       string
	Constraint ast.Expr
}

// Declaration is the structural description of one named-field struct selected
// for generation. It is built once by the extractor and read-only afterwards.
type Declaration struct {
	Name       string
	Exported   bool
	Doc        string
	TypeParams []*TypeParam
	Fields     []*Field
	PkgPath    string // e.g. "github.com/you/project/config"
	PkgName    string
	Pos        token.Position
	Imports    map[string]string // local import name → import path, from the declaring file
}

func (d *Declaration) IsGeneric() bool {
	return len(d.TypeParams) > 0
}

func (d *Declaration) HasTypeParam(name string) bool {
	for _, tp := range d.TypeParams {
		if tp.Name == name {
			return true
		}
	}
	return false
}

// ShadowName is the name of the generated all-optional twin.
func (d *Declaration) ShadowName(suffix string) string {
	return d.Name + suffix
}

type Declarations []*Declaration

func (x Declarations) Find(name string) *Declaration {
	for _, d := range x {
		if d.Name == name {
			return d
		}
	}
	return nil
}
