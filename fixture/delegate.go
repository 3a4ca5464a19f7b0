package fixture

import (
	"fixture-factory/typeexpr"
	"reflect"

	"go.uber.org/zap"
)

// Delegate is asked for a value whenever the factory gives up on a type:
// every construction candidate failed, the recursion depth was reached or
// the type is of a kind the factory does not build. A nil result leaves
// the requesting member unset.
type Delegate interface {
	Manufacture(t reflect.Type, args ...typeexpr.Expr) (any, error)
}

// DelegateFunc adapts a function to Delegate.
type DelegateFunc func(t reflect.Type, args ...typeexpr.Expr) (any, error)

func (f DelegateFunc) Manufacture(t reflect.Type, args ...typeexpr.Expr) (any, error) {
	return f(t, args...)
}

// LoggingDelegate logs the request and returns nil.
type LoggingDelegate struct {
	Log *zap.Logger
}

func (d LoggingDelegate) Manufacture(t reflect.Type, args ...typeexpr.Expr) (any, error) {
	if d.Log != nil {
		d.Log.Debug("no value produced, leaving it nil",
			zap.Stringer("type", t), zap.Int("args", len(args)))
	}

	return nil, nil
}
