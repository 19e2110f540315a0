package parser

import (
	"errors"
	"fmt"
	"go/token"
)

var (
	ErrNotNamedStruct   = errors.New("filecaster only works on structs with named fields")
	ErrInvalidAttribute = errors.New("invalid //filecaster directive")
	ErrTypeNotFound     = errors.New("type not found")
	ErrNameCollision    = errors.New("generated name collides with a field")
)

// Diagnostic is an error attributed to a source position.
type Diagnostic struct {
	Pos token.Position
	Err error // one of the sentinels above
	Msg string
}

func NotNamedStruct(pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Pos: pos, Err: ErrNotNamedStruct, Msg: fmt.Sprintf(format, args...)}
}

func InvalidAttribute(pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Pos: pos, Err: ErrInvalidAttribute, Msg: fmt.Sprintf(format, args...)}
}

func NameCollision(pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Pos: pos, Err: ErrNameCollision, Msg: fmt.Sprintf(format, args...)}
}

func (d *Diagnostic) Error() string {
	m := d.Err.Error()
	if d.Msg != "" {
		m += ": " + d.Msg
	}
	if d.Pos.IsValid() {
		return d.Pos.String() + ": " + m
	}
	return m
}

func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// Diagnostics flattens err (possibly an errors.Join tree) into its diagnostics.
// Errors that carry no position are returned as a Diagnostic without one.
func Diagnostics(err error) []*Diagnostic {
	switch e := err.(type) {
	case nil:
		return nil
	case *Diagnostic:
		return []*Diagnostic{e}
	case interface{ Unwrap() []error }:
		var out []*Diagnostic
		for _, inner := range e.Unwrap() {
			out = append(out, Diagnostics(inner)...)
		}
		return out
	}
	if inner := errors.Unwrap(err); inner != nil {
		out := Diagnostics(inner)
		for _, d := range out {
			if d.Pos.IsValid() {
				return out
			}
		}
	}
	return []*Diagnostic{{Err: err}}
}
