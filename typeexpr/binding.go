package typeexpr

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"fixture-factory/internal/common"
)

// InsufficientTypeArgumentsError is raised when a shape declares more type
// parameters than the caller supplied.
type InsufficientTypeArgumentsError struct {
	Type   string
	Params []string
	Got    []Expr
}

func (e *InsufficientTypeArgumentsError) Error() string {
	got := make([]string, len(e.Got))
	for i, a := range e.Got {
		got[i] = a.String()
	}

	return fmt.Sprintf("%s is missing generic type arguments, expected %d [%s] found %d [%s]",
		e.Type, len(e.Params), strings.Join(e.Params, ", "), len(e.Got), strings.Join(got, ", "))
}

// Is classifies the error as a configuration error.
func (e *InsufficientTypeArgumentsError) Is(target error) bool {
	return target == common.ErrConfiguration
}

type extras struct {
	args []Expr
	next int
}

// Binding maps type parameter names to ground expressions. Surplus caller
// arguments are kept as extras and handed out in order.
type Binding struct {
	vars   map[string]Expr
	extras *extras
}

// NewBinding creates an empty binding.
func NewBinding() *Binding {
	return &Binding{vars: map[string]Expr{}, extras: &extras{}}
}

// Bind matches declared params positionally against args. Args are expected
// to be ground. Fewer args than params is an error; surplus args become extras.
func Bind(owner string, params []string, args []Expr) (*Binding, error) {
	if len(params) > len(args) {
		return nil, &InsufficientTypeArgumentsError{Type: owner, Params: params, Got: args}
	}

	b := NewBinding()
	for i, name := range params {
		b.vars[name] = args[i]
	}
	b.extras.args = slices.Clone(args[len(params):])

	return b, nil
}

// Lookup returns the expression bound to name.
func (b *Binding) Lookup(name string) (Expr, bool) {
	if b == nil {
		return nil, false
	}

	e, ok := b.vars[name]

	return e, ok
}

// Set binds name to e.
func (b *Binding) Set(name string, e Expr) {
	b.vars[name] = e
}

// Len returns the number of bound parameters.
func (b *Binding) Len() int {
	if b == nil {
		return 0
	}

	return len(b.vars)
}

// NextExtra hands out the next unconsumed surplus argument.
func (b *Binding) NextExtra() (Expr, bool) {
	if b == nil || b.extras.next >= len(b.extras.args) {
		return nil, false
	}

	e := b.extras.args[b.extras.next]
	b.extras.next++

	return e, true
}

// Unconsumed returns surplus arguments nobody asked for yet.
func (b *Binding) Unconsumed() []Expr {
	if b == nil {
		return nil
	}

	return slices.Clone(b.extras.args[b.extras.next:])
}

// Inherit derives the binding of an embedded ancestor: the ancestor's
// declared params are bound to args substituted through b. Params without a
// matching argument stay unbound. The ancestor shares b's extras.
func (b *Binding) Inherit(params []string, args []Expr) *Binding {
	child := &Binding{vars: map[string]Expr{}, extras: b.extrasOrNew()}
	for i := 0; i < len(params) && i < len(args); i++ {
		child.vars[params[i]] = b.Substitute(args[i])
	}

	return child
}

func (b *Binding) extrasOrNew() *extras {
	if b == nil {
		return &extras{}
	}

	return b.extras
}

// Substitute replaces bound type parameters inside e. Unbound parameters and
// wildcards are left in place.
func (b *Binding) Substitute(e Expr) Expr {
	switch x := e.(type) {
	case Var:
		if bound, ok := b.Lookup(x.Name); ok {
			return bound
		}
		return x
	case Param:
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = b.Substitute(a)
		}
		return Param{Raw: x.Raw, Args: args}
	case Wildcard:
		w := x
		if w.Lower != nil {
			w.Lower = b.Substitute(w.Lower)
		}
		if w.Upper != nil {
			w.Upper = b.Substitute(w.Upper)
		}
		return w
	default:
		return e
	}
}

// Snapshot returns a copy of the bound variables.
func (b *Binding) Snapshot() map[string]Expr {
	if b == nil {
		return nil
	}

	return maps.Clone(b.vars)
}
