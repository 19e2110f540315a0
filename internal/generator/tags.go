package generator

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/cmmoran/filecaster/internal/model"
	"github.com/cmmoran/filecaster/pkg/options"
)

// shadowTags builds the serialization tags of one shadow field. Names come from
// the original field's tags when present, so the shadow decodes from exactly
// the same documents as the original; otherwise each format's default naming
// is spelled out.
func shadowTags(f *model.Field, nested bool, keys []string) map[string]string {
	if len(keys) == 0 {
		return nil
	}
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		name, found := tagName(f.Tag, key)
		if found && name == "-" {
			out[key] = "-"
			continue
		}
		switch key {
		case options.TagJSON:
			out[key] = orElse(name, f.Name) + ",omitempty"
		case options.TagYAML:
			out[key] = orElse(name, strings.ToLower(f.Name)) + ",omitempty"
		case options.TagTOML:
			out[key] = orElse(name, f.Name) + ",omitempty"
		case options.TagMapstructure:
			out[key] = orElse(name, f.Name)
		case options.TagHCL:
			kind := ",optional"
			if nested {
				kind = ",block"
			}
			out[key] = orElse(name, snakeCase(f.Name)) + kind
		}
	}
	return out
}

// tagName returns the name part of key's value in tag.
func tagName(tag reflect.StructTag, key string) (string, bool) {
	v, ok := tag.Lookup(key)
	if !ok {
		return "", false
	}
	name, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(name), true
}

// containsTagPart splits a tag value on common delimiters and reports whether
// any fragment matches the expected value.
func containsTagPart(tagVal, expected string) bool {
	if tagVal == "" {
		return false
	}

	for _, part := range strings.FieldsFunc(tagVal, func(r rune) bool {
		return r == ';' || r == ','
	}) {
		if part == expected {
			return true
		}
	}

	return false
}

// inlined reports whether any of the original tags asks to inline the field's
// members into its parent, which a pointer-wrapped shadow field cannot honor.
func inlined(tag reflect.StructTag) bool {
	for _, key := range []string{options.TagJSON, options.TagYAML, options.TagMapstructure} {
		if v, ok := tag.Lookup(key); ok && (containsTagPart(v, "inline") || containsTagPart(v, "squash")) {
			return true
		}
	}
	return false
}

func orElse(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// snakeCase converts a Go identifier: AutoReload → auto_reload, HTTPPort → http_port.
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// exportedName upper-cases the first letter of name.
func exportedName(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
