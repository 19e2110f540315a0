package filecaster

import (
	"fmt"
	"strings"
)

// FieldValue is one field of a shadow rendered by Describe.
type FieldValue struct {
	Name    string
	Value   any
	Present bool
}

// Field captures an optional shadow field.
func Field[T any](name string, v *T) FieldValue {
	if v == nil {
		return FieldValue{Name: name}
	}
	return FieldValue{Name: name, Value: *v, Present: true}
}

// Describe renders a shadow as Name{A: 1, B: <absent>}. Nested shadows use
// their own String method.
func Describe(name string, fields ...FieldValue) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		if !f.Present {
			b.WriteString("<absent>")
			continue
		}
		if s, ok := f.Value.(string); ok {
			fmt.Fprintf(&b, "%q", s)
			continue
		}
		fmt.Fprintf(&b, "%v", f.Value)
	}
	b.WriteByte('}')
	return b.String()
}
