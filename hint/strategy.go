package hint

import (
	"reflect"
	"sync"
)

// Strategy produces values for a member, or for the elements, keys or values
// of a container member, instead of the default manufacture path.
type Strategy interface {
	Value() any
}

// Acceptor is implemented by strategies that only serve some types.
type Acceptor interface {
	Accepts(t reflect.Type) bool
}

// Applicable reports whether s may produce a value for t. Strategies without
// Accepts are always applicable.
func Applicable(s Strategy, t reflect.Type) bool {
	if s == nil {
		return false
	}

	if a, ok := s.(Acceptor); ok {
		return a.Accepts(t)
	}

	return true
}

// Func adapts a plain function to Strategy.
type Func func() any

func (f Func) Value() any { return f() }

// Cycle returns a strategy handing out values in order, wrapping around.
// It is safe for concurrent use.
func Cycle(values ...any) Strategy {
	return &cycle{values: values}
}

type cycle struct {
	mu     sync.Mutex
	values []any
	next   int
}

func (c *cycle) Value() any {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.values) == 0 {
		return nil
	}

	v := c.values[c.next%len(c.values)]
	c.next++

	return v
}

func (c *cycle) Accepts(t reflect.Type) bool {
	for _, v := range c.values {
		if v == nil || !reflect.TypeOf(v).AssignableTo(t) {
			return false
		}
	}

	return true
}

// Typed restricts a strategy to exactly one target type.
func Typed[T any](fn func() T) Strategy {
	return typed[T](fn)
}

type typed[T any] func() T

func (f typed[T]) Value() any { return f() }

func (f typed[T]) Accepts(t reflect.Type) bool {
	return reflect.TypeFor[T]().AssignableTo(t)
}
