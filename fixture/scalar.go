package fixture

import (
	"fixture-factory/hint"
	"fixture-factory/primitive"
	"fixture-factory/provider"
	"fmt"
	"reflect"
)

// CharMarker is the hint option drawing an int32 member as a character
// from the provider's alphabet, e.g. `fixture:"char"`.
const CharMarker hint.Kind = "char"

// scalar draws a value of builtin scalar type t, honouring range and
// length hints.
func (c *call) scalar(t reflect.Type, a provider.Attribute) (reflect.Value, error) {
	p := c.f.provider
	h := a.Hint
	k := primitive.FromReflectType(t)

	var x any

	switch {
	case k == primitive.KindTime:
		x = p.Time(a)
	case k == primitive.KindDuration:
		x = p.Duration(a)
	case k == primitive.KindUUID:
		x = p.UUID(a)
	case k == primitive.KindBool:
		x = p.Bool(a)
	case k == primitive.KindString:
		s, err := c.str(h, a)
		if err != nil {
			return reflect.Value{}, err
		}
		x = s

	case k.IsSigned():
		lo, hi, ok, err := h.IntBounds(k)
		switch {
		case err != nil:
			return reflect.Value{}, err
		case ok:
			x = p.IntInRange(lo, hi, a)
		case k == primitive.KindInt32 && h.Has(CharMarker):
			x = p.Rune(a)
		default:
			x = p.Int(k, a)
		}

	case k.IsUnsigned():
		lo, hi, ok, err := h.UintBounds(k)
		switch {
		case err != nil:
			return reflect.Value{}, err
		case ok:
			x = p.UintInRange(lo, hi, a)
		default:
			x = p.Uint(k, a)
		}

	case k.IsFloat():
		lo, hi, ok, err := h.FloatBounds(k)
		switch {
		case err != nil:
			return reflect.Value{}, err
		case ok:
			x = p.FloatInRange(lo, hi, a)
		default:
			x = p.Float(k, a)
		}

	default:
		return reflect.Value{}, fmt.Errorf("%w: %s is not a scalar", ErrConfiguration, t)
	}

	return reflect.ValueOf(x).Convert(t), nil
}

// str honours len= first, then a min/max length range. A lone min is
// capped at DefaultStringLength (or min itself when larger), a lone max
// starts at zero.
func (c *call) str(h hint.Hint, a provider.Attribute) (string, error) {
	p := c.f.provider

	if h.Len != nil {
		return p.StringOfLength(*h.Len, a), nil
	}

	lo, hi, ok, err := h.IntBounds(primitive.KindInt32)
	if err != nil || !ok {
		return p.String(a), err
	}

	switch {
	case h.Max == nil:
		hi = max(lo, provider.DefaultStringLength)
	case h.Min == nil:
		lo = 0
	}

	return p.StringOfLength(int(p.IntInRange(max(lo, 0), max(hi, 0), a)), a), nil
}

// enum picks one of the declared constants of t, or draws its underlying
// scalar when none are known.
func (c *call) enum(t reflect.Type, a provider.Attribute) (reflect.Value, error) {
	if consts := c.f.enumValues(t); len(consts) > 0 {
		return consts[c.f.provider.Index(len(consts))], nil
	}

	u := primitive.Underlying(t).ReflectType()
	if u == nil {
		return reflect.Value{}, nil
	}

	v, err := c.scalar(u, a)
	if err != nil || !v.IsValid() {
		return v, err
	}

	return v.Convert(t), nil
}
