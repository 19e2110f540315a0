package model

import (
	"go/ast"
	"go/token"
)

type DirectiveKind int

const (
	DirectiveAbsent   DirectiveKind = iota // no directive, the zero value is used
	DirectiveExplicit                      // `default=<expr>` override
)

// Directive is the resolved outcome of scanning a field's directives.
type Directive struct {
	Kind   DirectiveKind
	Expr   ast.Expr
	Source string // expression text exactly as written
	Pos    token.Position
}

func (d Directive) IsExplicit() bool {
	return d.Kind == DirectiveExplicit
}

type Kind int

const (
	KindLeaf   Kind = iota // wrapped directly in a pointer
	KindNested             // delegates to the field type's own shadow
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindNested:
		return "nested"
	}
	return "invalid"
}

// ShadowRef names the shadow type associated with a nested field's type.
type ShadowRef struct {
	PkgPath  string // "" for the package being generated
	Name     string // "InnerFile"
	Target   string // "Inner"
	TypeArgs []ast.Expr

	Cloneable bool // *Name has Clone() *Name
}

type Classification struct {
	Kind      Kind
	Directive Directive
	Shadow    *ShadowRef // only for KindNested

	// ZeroObligation is set for leaves resolved from the zero value; NilZero
	// further marks those whose zero value is nil.
	ZeroObligation bool
	NilZero        bool
}
