package fixture

import (
	"errors"
	"fixture-factory/hint"
	"fixture-factory/internal/common"
	"fixture-factory/node"
	"fixture-factory/typeexpr"
	"fmt"
	"reflect"
)

// ErrConfiguration is matched by every error caused by the caller's setup
// rather than by the manufactured types: bad hints, unknown names, missing
// type arguments and unsupported containers.
var ErrConfiguration = common.ErrConfiguration

var (
	ErrUnsupportedContainer = fmt.Errorf("%w: unsupported container", ErrConfiguration)
	ErrUnknownStrategy      = fmt.Errorf("%w: unknown strategy", ErrConfiguration)
	ErrIncompatibleValue    = fmt.Errorf("%w: incompatible value", ErrConfiguration)
	ErrNotAnInterface       = fmt.Errorf("%w: not an interface", ErrConfiguration)
	ErrNotAPointer          = fmt.Errorf("%w: fill target must be a non-nil pointer", ErrConfiguration)
)

type (
	InsufficientTypeArgumentsError = typeexpr.InsufficientTypeArgumentsError
	ParseError                     = typeexpr.ParseError
	ValueError                     = hint.ValueError
)

// ManufacturingError wraps a failure of user code (a setter, a custom
// factory or the delegate) that no fallback absorbed.
type ManufacturingError struct {
	Type reflect.Type
	Path string
	Err  error
}

func (e *ManufacturingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("manufacturing %s: %v", e.Type, e.Err)
	}

	return fmt.Sprintf("manufacturing %s at %s: %v", e.Type, e.Path, e.Err)
}

func (e *ManufacturingError) Unwrap() error { return e.Err }

func isConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// declined reports a candidate that produced nothing without failing.
func declined(err error) bool {
	return errors.Is(err, node.ErrNilResult) || errors.Is(err, node.ErrCandidateDeclined)
}
