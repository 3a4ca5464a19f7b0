package typeexpr

import (
	"reflect"
	"strings"
)

var (
	// AnyType is the unconstrained fallback every unresolved expression ends at.
	AnyType = reflect.TypeFor[any]()

	// SliceRaw and MapRaw are the raw types of the "[]X" and "map[K]V" forms.
	SliceRaw = reflect.TypeFor[[]any]()
	MapRaw   = reflect.TypeFor[map[any]any]()
)

// Expr is a type expression: a concrete type, a type parameter reference,
// a parameterized type or a wildcard.
type Expr interface {
	String() string
	expr()
}

// Concrete is a fully known runtime type.
type Concrete struct {
	Type reflect.Type
}

// Var references a type parameter by name.
type Var struct {
	Name string
}

// Param is a raw type applied to type arguments. Raw is SliceRaw for "[]X",
// MapRaw for "map[K]V" and the shape type for erased generic shapes.
type Param struct {
	Raw  reflect.Type
	Args []Expr
}

// Wildcard is an unknown type with optional bounds.
type Wildcard struct {
	Lower Expr // "? super Lower"
	Upper Expr // "? extends Upper"
}

func (Concrete) expr() {}
func (Var) expr()      {}
func (Param) expr()    {}
func (Wildcard) expr() {}

func (c Concrete) String() string {
	if c.Type == nil {
		return "<nil>"
	}

	return c.Type.String()
}

func (v Var) String() string { return v.Name }

func (p Param) String() string {
	switch {
	case p.Raw == SliceRaw && len(p.Args) == 1:
		return "[]" + p.Args[0].String()
	case p.Raw == MapRaw && len(p.Args) == 2:
		return "map[" + p.Args[0].String() + "]" + p.Args[1].String()
	}

	var b strings.Builder
	if p.Raw != nil {
		b.WriteString(p.Raw.String())
	}

	b.WriteByte('[')
	for i, a := range p.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(']')

	return b.String()
}

func (w Wildcard) String() string {
	switch {
	case w.Lower != nil:
		return "? super " + w.Lower.String()
	case w.Upper != nil:
		return "? extends " + w.Upper.String()
	default:
		return "?"
	}
}

// Of returns the concrete expression for T.
func Of[T any]() Expr {
	return Concrete{Type: reflect.TypeFor[T]()}
}

// TypeOf returns the concrete expression for t.
func TypeOf(t reflect.Type) Expr {
	return Concrete{Type: t}
}

// SliceOf returns the "[]elem" expression.
func SliceOf(elem Expr) Expr {
	return Param{Raw: SliceRaw, Args: []Expr{elem}}
}

// MapOf returns the "map[key]value" expression.
func MapOf(key, value Expr) Expr {
	return Param{Raw: MapRaw, Args: []Expr{key, value}}
}

// Generic applies an erased generic shape to arguments.
func Generic(raw reflect.Type, args ...Expr) Expr {
	return Param{Raw: raw, Args: args}
}

// IsGround reports whether e mentions no type parameters or wildcards.
func IsGround(e Expr) bool {
	switch x := e.(type) {
	case Concrete:
		return true
	case Param:
		for _, a := range x.Args {
			if !IsGround(a) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
