// Package filecaster is the runtime side of the filecaster generator.
//
// For every struct marked with
//
//	//filecaster:generate
//
// the generator writes a shadow struct, named after the original with a File
// suffix, whose fields are all pointers. Configuration sources decode into the
// shadow, where a nil field means the source did not mention it. Resolving the
// shadow fills every absent field from its
//
//	//filecaster:default=<expression>
//
// directive or from the zero value of its type. Fields whose types were
// generated as well resolve recursively, so a source may override a single
// deeply nested value.
package filecaster

// Resolver is implemented by every generated type T with shadow S.
type Resolver[T, S any] interface {
	FromFile(file *S) T
}

// Resolve builds a T from file, which may be nil.
func Resolve[T Resolver[T, S], S any](file *S) T {
	var t T
	return t.FromFile(file)
}

// Merger is implemented by *S for shadows generated with merging enabled.
type Merger[S any] interface {
	*S
	Merge(other *S)
}

// Merge combines layers into a new shadow. For each field the first layer
// holding a value wins; later layers only fill what is still absent. Nil
// layers are skipped and the layers themselves are left untouched.
func Merge[S any, P Merger[S]](layers ...*S) *S {
	out := new(S)
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		P(out).Merge(layer)
	}
	return out
}

// ClonePtr returns a pointer to a copy of *p, or nil.
func ClonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
