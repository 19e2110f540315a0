package parser

import (
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"strings"

	"github.com/cmmoran/filecaster/internal/model"
)

const (
	// DirectivePrefix starts every filecaster comment directive, Go-directive style (no space after //).
	DirectivePrefix = "filecaster:"
	// GenerateMarker selects a type declaration for generation.
	GenerateMarker = DirectivePrefix + "generate"

	keyDefault = "default"
)

// collectDirectives returns the field's filecaster comments in source order:
// the doc comment group first, then the trailing line comment.
func collectDirectives(fset *token.FileSet, fld *ast.Field) []model.RawDirective {
	var out []model.RawDirective
	for _, cg := range []*ast.CommentGroup{fld.Doc, fld.Comment} {
		if cg == nil {
			continue
		}
		for _, c := range cg.List {
			text, ok := strings.CutPrefix(c.Text, "//")
			if !ok || !strings.HasPrefix(text, DirectivePrefix) {
				continue
			}
			out = append(out, model.RawDirective{
				Text: strings.TrimSpace(text),
				Pos:  fset.Position(c.Slash),
			})
		}
	}
	return out
}

// ResolveDirective scans a field's directives for `default=<expr>`.
//
// No directive yields DirectiveAbsent. The first directive wins; later ones are
// ignored unless strict is set, in which case they are an ErrInvalidAttribute.
func ResolveDirective(f *model.Field, strict bool) (model.Directive, error) {
	if len(f.Directives) == 0 {
		return model.Directive{Kind: model.DirectiveAbsent}, nil
	}
	if strict && len(f.Directives) > 1 {
		return model.Directive{}, InvalidAttribute(f.Directives[1].Pos,
			"field %s has %d default directives, only one is allowed", f.Name, len(f.Directives))
	}
	for _, ignored := range f.Directives[1:] {
		slog.Debug("ignoring duplicate directive", "field", f.Name, "directive", ignored.Text, "pos", ignored.Pos.String())
	}
	return parseDirective(f.Directives[0])
}

func parseDirective(raw model.RawDirective) (model.Directive, error) {
	body := strings.TrimPrefix(raw.Text, DirectivePrefix)
	key, value, found := strings.Cut(body, "=")
	key = strings.TrimSpace(key)
	if key != keyDefault {
		return model.Directive{}, InvalidAttribute(raw.Pos,
			"unknown key %q, expected //%sdefault=<expression>", key, DirectivePrefix)
	}
	if !found {
		return model.Directive{}, InvalidAttribute(raw.Pos, "missing '=' after %q", key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return model.Directive{}, InvalidAttribute(raw.Pos, "missing default value")
	}
	expr, err := parser.ParseExpr(value)
	if err != nil {
		return model.Directive{}, InvalidAttribute(raw.Pos, "default %q is not a Go expression: %v", value, err)
	}
	return model.Directive{
		Kind:   model.DirectiveExplicit,
		Expr:   expr,
		Source: value,
		Pos:    raw.Pos,
	}, nil
}

// hasGenerateMarker reports whether a doc comment group carries the generate marker.
func hasGenerateMarker(groups ...*ast.CommentGroup) bool {
	for _, cg := range groups {
		if cg == nil {
			continue
		}
		for _, c := range cg.List {
			if strings.TrimSpace(c.Text) == "//"+GenerateMarker {
				return true
			}
		}
	}
	return false
}
