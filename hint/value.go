package hint

import (
	"errors"
	"fixture-factory/internal/common"
	"fixture-factory/primitive"
	"fixture-factory/utils"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrMalformedTag     = errors.New("malformed hint option")
	ErrDuplicateOption  = errors.New("duplicate hint option")
	ErrMissingValue     = errors.New("hint option requires a value")
	ErrNotACount        = errors.New("not a non-negative count")
	ErrNotAScalar       = errors.New("explicit values apply to scalar types only")
	ErrUnparsableValue  = errors.New("literal does not parse into the target type")
	ErrValueOutOfBounds = errors.New("literal overflows the target type")
)

// ValueError reports a hint whose literal cannot be used. It is always a
// configuration error.
type ValueError struct {
	Kind    Kind
	Type    reflect.Type
	Literal string
	Err     error
}

func (e *ValueError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("hint %q: %q: %v", string(e.Kind), e.Literal, e.Err)
	}

	return fmt.Sprintf("hint %q: %q as %s: %v", string(e.Kind), e.Literal, e.Type, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }

// Is classifies the error as a configuration error.
func (e *ValueError) Is(target error) bool {
	return target == common.ErrConfiguration
}

// ParseValue converts an explicit literal into a value of scalar type t.
// Named scalar types are converted from their underlying kind.
func ParseValue(t reflect.Type, lit string) (reflect.Value, error) {
	v, err := parseScalar(t, lit)
	if err != nil {
		return reflect.Value{}, &ValueError{Kind: KindValue, Type: t, Literal: lit, Err: err}
	}

	return v, nil
}

func parseScalar(t reflect.Type, lit string) (reflect.Value, error) {
	switch primitive.FromReflectType(t) {
	case 0:
		return reflect.Value{}, ErrNotAScalar

	case primitive.KindTime:
		ts, err := time.Parse(time.RFC3339Nano, lit)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %w", ErrUnparsableValue, err)
		}
		return reflect.ValueOf(ts), nil

	case primitive.KindDuration:
		d, err := time.ParseDuration(lit)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %w", ErrUnparsableValue, err)
		}
		return reflect.ValueOf(d).Convert(t), nil

	case primitive.KindUUID:
		id, err := uuid.Parse(lit)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %w", ErrUnparsableValue, err)
		}
		return reflect.ValueOf(id), nil
	}

	kind := primitive.Underlying(t)
	v := reflect.New(t).Elem()

	switch {
	case kind == primitive.KindString:
		v.SetString(lit)

	case kind == primitive.KindBool:
		b, err := strconv.ParseBool(lit)
		if err != nil {
			return reflect.Value{}, ErrUnparsableValue
		}
		v.SetBool(b)

	case kind.IsSigned():
		n, err := ParseInt(lit)
		if err != nil {
			return reflect.Value{}, err
		}
		if lo, hi := kind.SignedBounds(); !utils.IsInRange(lo, n, hi) {
			return reflect.Value{}, ErrValueOutOfBounds
		}
		v.SetInt(n)

	case kind.IsUnsigned():
		n, err := ParseUint(lit)
		if err != nil {
			return reflect.Value{}, err
		}
		if n > kind.UnsignedMax() {
			return reflect.Value{}, ErrValueOutOfBounds
		}
		v.SetUint(n)

	case kind.IsFloat():
		f, err := strconv.ParseFloat(lit, kind.Bits())
		if err != nil {
			return reflect.Value{}, ErrUnparsableValue
		}
		v.SetFloat(f)

	default:
		return reflect.Value{}, ErrNotAScalar
	}

	return v, nil
}

// ParseInt parses a decimal, prefixed or character ('a') literal.
func ParseInt(lit string) (int64, error) {
	if r, ok := charLiteral(lit); ok {
		return int64(r), nil
	}

	n, err := strconv.ParseInt(lit, 0, 64)
	if err != nil {
		return 0, ErrUnparsableValue
	}

	return n, nil
}

// ParseUint is ParseInt for unsigned targets.
func ParseUint(lit string) (uint64, error) {
	if r, ok := charLiteral(lit); ok {
		return uint64(r), nil
	}

	n, err := strconv.ParseUint(lit, 0, 64)
	if err != nil {
		return 0, ErrUnparsableValue
	}

	return n, nil
}

func charLiteral(lit string) (rune, bool) {
	if len(lit) < 3 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return 0, false
	}

	r, _, tail, err := strconv.UnquoteChar(lit[1:len(lit)-1], '\'')
	if err != nil || tail != "" || r == utf8.RuneError {
		return 0, false
	}

	return r, true
}

// IntBounds returns the inclusive range a signed member may take, clamped
// to kind. ok is false when h declares neither min nor max.
// An inverted range collapses onto min.
func (h Hint) IntBounds(kind primitive.KindEnum) (lo, hi int64, ok bool, err error) {
	lo, hi = kind.SignedBounds()
	if h.Min == nil && h.Max == nil {
		return lo, hi, false, nil
	}

	if h.Min != nil {
		if lo, err = ParseInt(*h.Min); err != nil {
			return 0, 0, false, &ValueError{Kind: KindMin, Literal: *h.Min, Err: err}
		}
	}
	if h.Max != nil {
		if hi, err = ParseInt(*h.Max); err != nil {
			return 0, 0, false, &ValueError{Kind: KindMax, Literal: *h.Max, Err: err}
		}
	}

	tlo, thi := kind.SignedBounds()
	lo, hi = utils.Heal(lo, hi)

	return clamp(lo, tlo, thi), clamp(hi, tlo, thi), true, nil
}

// UintBounds is IntBounds for unsigned kinds.
func (h Hint) UintBounds(kind primitive.KindEnum) (lo, hi uint64, ok bool, err error) {
	lo, hi = 0, kind.UnsignedMax()
	if h.Min == nil && h.Max == nil {
		return lo, hi, false, nil
	}

	if h.Min != nil {
		if lo, err = ParseUint(*h.Min); err != nil {
			return 0, 0, false, &ValueError{Kind: KindMin, Literal: *h.Min, Err: err}
		}
	}
	if h.Max != nil {
		if hi, err = ParseUint(*h.Max); err != nil {
			return 0, 0, false, &ValueError{Kind: KindMax, Literal: *h.Max, Err: err}
		}
	}

	lo, hi = utils.Heal(lo, hi)

	return clamp(lo, 0, kind.UnsignedMax()), clamp(hi, 0, kind.UnsignedMax()), true, nil
}

// FloatBounds is IntBounds for float kinds.
func (h Hint) FloatBounds(kind primitive.KindEnum) (lo, hi float64, ok bool, err error) {
	limit := math.MaxFloat64
	if kind == primitive.KindFloat32 {
		limit = math.MaxFloat32
	}

	lo, hi = -limit, limit
	if h.Min == nil && h.Max == nil {
		return lo, hi, false, nil
	}

	if h.Min != nil {
		if lo, err = strconv.ParseFloat(*h.Min, 64); err != nil {
			return 0, 0, false, &ValueError{Kind: KindMin, Literal: *h.Min, Err: ErrUnparsableValue}
		}
	}
	if h.Max != nil {
		if hi, err = strconv.ParseFloat(*h.Max, 64); err != nil {
			return 0, 0, false, &ValueError{Kind: KindMax, Literal: *h.Max, Err: ErrUnparsableValue}
		}
	}

	lo, hi = utils.Heal(lo, hi)

	return clamp(lo, -limit, limit), clamp(hi, -limit, limit), true, nil
}

func clamp[T int64 | uint64 | float64](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
