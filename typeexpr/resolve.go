package typeexpr

import (
	"reflect"

	"go.uber.org/zap"
)

// Resolver turns expressions into runtime types. Resolution never fails:
// anything it cannot pin down becomes AnyType and is reported through Log
// and OnUnresolved.
type Resolver struct {
	Log *zap.Logger
	// OnUnresolved, when set, is told about every type parameter that fell
	// back to AnyType.
	OnUnresolved func(name string)
}

// Resolve returns the runtime type of e and the ground type arguments to
// forward into its construction.
//
//   - Concrete resolves to itself with no arguments.
//   - Var is looked up in b, then served from b's extras, then falls back to AnyType.
//   - Param resolves to its raw type; "[]X" and "map[K]V" over ground element
//     types resolve to the composed Go type ([]int, map[string]int).
//   - Wildcard prefers its lower bound, then its upper bound, then AnyType.
func (r Resolver) Resolve(e Expr, b *Binding) (reflect.Type, []Expr) {
	switch x := e.(type) {
	case nil:
		return AnyType, nil

	case Concrete:
		if x.Type == nil {
			return AnyType, nil
		}
		return x.Type, nil

	case Var:
		if bound, ok := b.Lookup(x.Name); ok {
			return r.Resolve(bound, nil)
		}
		if extra, ok := b.NextExtra(); ok {
			r.logger().Debug("type parameter served from surplus arguments",
				zap.String("param", x.Name), zap.Stringer("arg", extra))
			return r.Resolve(extra, nil)
		}
		r.logger().Warn("unresolved type parameter, falling back to any", zap.String("param", x.Name))
		if r.OnUnresolved != nil {
			r.OnUnresolved(x.Name)
		}
		return AnyType, nil

	case Param:
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = r.ground(b.Substitute(a), b)
		}
		return r.compose(x.Raw, args), args

	case Wildcard:
		switch {
		case x.Lower != nil:
			return r.Resolve(x.Lower, b)
		case x.Upper != nil:
			return r.Resolve(x.Upper, b)
		default:
			return AnyType, nil
		}
	}

	return AnyType, nil
}

// ground rewrites an argument so it no longer mentions parameters or
// wildcards, resolving leftovers the same way Resolve does.
func (r Resolver) ground(e Expr, b *Binding) Expr {
	if IsGround(e) {
		return e
	}

	switch x := e.(type) {
	case Param:
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = r.ground(a, b)
		}
		return Param{Raw: x.Raw, Args: args}
	default:
		t, args := r.Resolve(e, b)
		if len(args) > 0 {
			return Param{Raw: t, Args: args}
		}
		return Concrete{Type: t}
	}
}

// compose builds the Go type for the builtin container forms when every
// argument is a plain concrete type.
func (r Resolver) compose(raw reflect.Type, args []Expr) reflect.Type {
	switch raw {
	case SliceRaw:
		if len(args) == 1 {
			if elem, ok := concreteOf(args[0]); ok {
				return reflect.SliceOf(elem)
			}
		}
	case MapRaw:
		if len(args) == 2 {
			key, kok := concreteOf(args[0])
			val, vok := concreteOf(args[1])
			if kok && vok && key.Comparable() {
				return reflect.MapOf(key, val)
			}
		}
	}

	return raw
}

func concreteOf(e Expr) (reflect.Type, bool) {
	switch x := e.(type) {
	case Concrete:
		return x.Type, x.Type != nil
	case Param:
		if x.Raw == SliceRaw || x.Raw == MapRaw {
			t := Resolver{}.compose(x.Raw, x.Args)
			return t, t != x.Raw
		}
	}

	return nil, false
}

func (r Resolver) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}

	return r.Log
}

// Args splits the element expressions of a resolved container type.
// Missing arguments default to AnyType; raw reports that defaulting happened.
func Args(args []Expr, n int) (out []Expr, raw bool) {
	out = make([]Expr, n)
	for i := range out {
		if i < len(args) && args[i] != nil {
			out[i] = args[i]
			continue
		}
		out[i] = Concrete{Type: AnyType}
		raw = true
	}

	return out, raw
}
