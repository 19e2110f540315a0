package generator

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/printer"
	"go/token"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/dave/jennifer/jen"
)

// coder turns source expressions (types, constraints and default expressions)
// into jennifer code. Selectors on imported packages become jen.Qual so the
// generated file imports what the declaring file imported.
type coder struct {
	imports map[string]string // local import name → path
}

func newCoder(imports map[string]string) *coder {
	return &coder{imports: imports}
}

func (c *coder) code(expr ast.Expr) jen.Code {
	switch e := expr.(type) {
	case nil:
		return jen.Null()
	case *ast.Ident:
		return jen.Id(e.Name)
	case *ast.BasicLit:
		// keep the literal exactly as written: 0x10, 'a', `raw`
		return jen.Op(e.Value)
	case *ast.SelectorExpr:
		if id, ok := e.X.(*ast.Ident); ok {
			if path, ok := c.imports[id.Name]; ok {
				return jen.Qual(path, e.Sel.Name)
			}
		}
		return jen.Add(c.code(e.X)).Dot(e.Sel.Name)
	case *ast.StarExpr:
		return jen.Op("*").Add(c.code(e.X))
	case *ast.ParenExpr:
		return jen.Parens(c.code(e.X))
	case *ast.UnaryExpr:
		return jen.Op(e.Op.String()).Add(c.code(e.X))
	case *ast.BinaryExpr:
		return jen.Add(c.code(e.X)).Op(e.Op.String()).Add(c.code(e.Y))
	case *ast.CallExpr:
		args := c.codes(e.Args)
		if e.Ellipsis.IsValid() && len(args) > 0 {
			args[len(args)-1] = jen.Add(args[len(args)-1]).Op("...")
		}
		return jen.Add(c.code(e.Fun)).Call(args...)
	case *ast.CompositeLit:
		if e.Type == nil {
			return jen.Values(c.codes(e.Elts)...)
		}
		return jen.Add(c.code(e.Type)).Values(c.codes(e.Elts)...)
	case *ast.KeyValueExpr:
		return jen.Add(c.code(e.Key)).Op(":").Add(c.code(e.Value))
	case *ast.IndexExpr:
		return jen.Add(c.code(e.X)).Index(c.code(e.Index))
	case *ast.IndexListExpr:
		return jen.Add(c.code(e.X)).Types(c.codes(e.Indices)...)
	case *ast.SliceExpr:
		parts := []jen.Code{c.orEmpty(e.Low), c.orEmpty(e.High)}
		if e.Slice3 {
			parts = append(parts, c.orEmpty(e.Max))
		}
		return jen.Add(c.code(e.X)).Index(parts...)
	case *ast.TypeAssertExpr:
		if e.Type == nil {
			return jen.Add(c.code(e.X)).Assert(jen.Type())
		}
		return jen.Add(c.code(e.X)).Assert(c.code(e.Type))
	case *ast.ArrayType:
		switch l := e.Len.(type) {
		case nil:
			return jen.Index().Add(c.code(e.Elt))
		case *ast.Ellipsis:
			return jen.Index(jen.Op("...")).Add(c.code(e.Elt))
		default:
			return jen.Index(c.code(l)).Add(c.code(e.Elt))
		}
	case *ast.MapType:
		return jen.Map(c.code(e.Key)).Add(c.code(e.Value))
	case *ast.ChanType:
		switch e.Dir {
		case ast.SEND:
			return jen.Chan().Op("<-").Add(c.code(e.Value))
		case ast.RECV:
			return jen.Op("<-").Chan().Add(c.code(e.Value))
		default:
			return jen.Chan().Add(c.code(e.Value))
		}
	case *ast.Ellipsis:
		return jen.Op("...").Add(c.code(e.Elt))
	case *ast.StructType:
		return jen.Struct(c.structFields(e.Fields)...)
	case *ast.InterfaceType:
		return jen.Interface(c.methods(e.Methods)...)
	case *ast.FuncType:
		return c.signature(jen.Func(), e)
	case *ast.FuncLit:
		body := make([]jen.Code, 0, len(e.Body.List))
		for _, stmt := range e.Body.List {
			body = append(body, c.raw(stmt, e))
		}
		return c.signature(jen.Func(), e.Type).Block(body...)
	}
	return c.raw(expr)
}

// fieldList renders parameters and embedded or named members, one name each.
func (c *coder) fieldList(fl *ast.FieldList) []jen.Code {
	if fl == nil {
		return nil
	}
	out := make([]jen.Code, 0, fl.NumFields())
	for _, f := range fl.List {
		typ := c.code(f.Type)
		if len(f.Names) == 0 {
			out = append(out, typ)
			continue
		}
		for _, n := range f.Names {
			out = append(out, jen.Id(n.Name).Add(typ))
		}
	}
	return out
}

func (c *coder) structFields(fl *ast.FieldList) []jen.Code {
	if fl == nil {
		return nil
	}
	out := make([]jen.Code, 0, fl.NumFields())
	for _, f := range fl.List {
		var tag jen.Code = jen.Null()
		if f.Tag != nil {
			tag = jen.Op(f.Tag.Value)
		}
		if len(f.Names) == 0 {
			out = append(out, jen.Add(c.code(f.Type)).Add(tag))
			continue
		}
		for _, n := range f.Names {
			out = append(out, jen.Id(n.Name).Add(c.code(f.Type)).Add(tag))
		}
	}
	return out
}

// methods renders interface members: methods, embedded interfaces and type unions.
func (c *coder) methods(fl *ast.FieldList) []jen.Code {
	if fl == nil {
		return nil
	}
	out := make([]jen.Code, 0, len(fl.List))
	for _, f := range fl.List {
		ft, ok := f.Type.(*ast.FuncType)
		if !ok || len(f.Names) == 0 {
			out = append(out, c.code(f.Type))
			continue
		}
		for _, n := range f.Names {
			out = append(out, c.signature(jen.Id(n.Name), ft))
		}
	}
	return out
}

// signature appends (params) results to s.
func (c *coder) signature(s *jen.Statement, ft *ast.FuncType) *jen.Statement {
	s = s.Params(c.fieldList(ft.Params)...)
	switch {
	case ft.Results == nil || len(ft.Results.List) == 0:
		return s
	case len(ft.Results.List) == 1 && len(ft.Results.List[0].Names) == 0:
		return s.Add(c.code(ft.Results.List[0].Type))
	}
	return s.Params(c.fieldList(ft.Results)...)
}

func (c *coder) codes(exprs []ast.Expr) []jen.Code {
	out := make([]jen.Code, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, c.code(e))
	}
	return out
}

func (c *coder) orEmpty(expr ast.Expr) jen.Code {
	if expr == nil {
		return jen.Empty()
	}
	return c.code(expr)
}

// qualifiedRef matches the stand-in raw gives package names while printing.
var qualifiedRef = regexp.MustCompile(`__filecasterpkg(\d+)\.([\p{L}_][\p{L}\p{N}_]*)`)

// raw prints nodes jennifer has no builder for, mostly statements of function
// literals. References to imported packages are cut out of the printed text
// and rendered as jen.Qual, so the generated file imports them. Names
// declared in node or in the enclosing scopes are never taken for packages.
func (c *coder) raw(node ast.Node, scopes ...ast.Node) jen.Code {
	var (
		refs  []*ast.Ident
		local = declaredNames(append(scopes, node)...)
	)
	ast.Inspect(node, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if id, ok := sel.X.(*ast.Ident); ok && !local[id.Name] {
			if _, imported := c.imports[id.Name]; imported {
				refs = append(refs, id)
			}
		}
		return true
	})
	names := make([]string, len(refs))
	for i, id := range refs {
		names[i] = id.Name
		id.Name = fmt.Sprintf("__filecasterpkg%d", i)
	}
	var buf bytes.Buffer
	err := printer.Fprint(&buf, token.NewFileSet(), node)
	for i, id := range refs {
		id.Name = names[i]
	}
	if err != nil {
		slog.Warn("unable to print expression", "error", err)
	}

	src := buf.String()
	s := jen.Null()
	last := 0
	for _, m := range qualifiedRef.FindAllStringSubmatchIndex(src, -1) {
		i, _ := strconv.Atoi(src[m[2]:m[3]])
		if m[0] > last {
			s.Op(src[last:m[0]])
		}
		s.Qual(c.imports[names[i]], src[m[4]:m[5]])
		last = m[1]
	}
	if last < len(src) {
		s.Op(src[last:])
	}
	return s
}

// declaredNames collects the names node declares: parameters, results,
// variables and constants. Any of them may shadow an import.
func declaredNames(nodes ...ast.Node) map[string]bool {
	names := map[string]bool{}
	add := func(ids ...*ast.Ident) {
		for _, id := range ids {
			names[id.Name] = true
		}
	}
	addExprs := func(exprs ...ast.Expr) {
		for _, e := range exprs {
			if id, ok := e.(*ast.Ident); ok {
				add(id)
			}
		}
	}
	inspect := func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Field:
			add(n.Names...)
		case *ast.ValueSpec:
			add(n.Names...)
		case *ast.AssignStmt:
			if n.Tok == token.DEFINE {
				addExprs(n.Lhs...)
			}
		case *ast.RangeStmt:
			if n.Tok == token.DEFINE {
				addExprs(n.Key, n.Value)
			}
		}
		return true
	}
	for _, n := range nodes {
		ast.Inspect(n, inspect)
	}
	return names
}
