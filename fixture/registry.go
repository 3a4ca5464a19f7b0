package fixture

import (
	"fixture-factory/hint"
	"fixture-factory/node"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

type registry struct {
	mu           sync.RWMutex
	substitutes  map[reflect.Type]reflect.Type
	factories    map[reflect.Type]node.Candidate
	constructors map[reflect.Type][]node.Candidate
	enums        map[reflect.Type][]reflect.Value
	strategies   map[string]hint.Strategy
	excluded     map[hint.Kind]struct{}
}

func newRegistry() registry {
	return registry{
		substitutes:  make(map[reflect.Type]reflect.Type),
		factories:    make(map[reflect.Type]node.Candidate),
		constructors: make(map[reflect.Type][]node.Candidate),
		enums:        make(map[reflect.Type][]reflect.Value),
		strategies:   make(map[string]hint.Strategy),
		excluded:     make(map[hint.Kind]struct{}),
	}
}

func fmtConfig(err error) error {
	if isConfiguration(err) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}

// implementer returns concrete or *concrete, whichever implements iface.
func implementer(iface, concrete reflect.Type) (reflect.Type, bool) {
	switch {
	case concrete.Implements(iface):
		return concrete, true
	case concrete.Kind() != reflect.Ptr && reflect.PointerTo(concrete).Implements(iface):
		return reflect.PointerTo(concrete), true
	default:
		return nil, false
	}
}

// BindSubstitute makes every request for iface manufacture concrete
// instead. When only *concrete implements iface the pointer is built.
func (f *Factory) BindSubstitute(iface, concrete reflect.Type) error {
	if iface == nil || iface.Kind() != reflect.Interface {
		return fmt.Errorf("%w: %v", ErrNotAnInterface, iface)
	}

	impl, ok := implementer(iface, concrete)
	if !ok {
		return fmt.Errorf("%w: %v does not implement %v", ErrIncompatibleValue, concrete, iface)
	}

	f.reg.mu.Lock()
	defer f.reg.mu.Unlock()

	f.reg.substitutes[iface] = impl

	return nil
}

// UnbindSubstitute removes the substitute of iface.
func (f *Factory) UnbindSubstitute(iface reflect.Type) {
	f.reg.mu.Lock()
	defer f.reg.mu.Unlock()

	delete(f.reg.substitutes, iface)
}

// RegisterFactory makes fn the only source of values of exactly t. fn takes
// no arguments and returns a value assignable to t, optionally followed by
// a bool and/or an error.
func (f *Factory) RegisterFactory(t reflect.Type, fn any) error {
	c, err := node.ParseCandidate(fn)
	if err != nil {
		return fmtConfig(err)
	}

	if c.NumParams() != 0 || c.Variadic {
		return fmt.Errorf("%w: factory for %v must take no arguments", ErrIncompatibleValue, t)
	}
	if !c.Result.AssignableTo(t) && !(c.Result.Kind() == reflect.Interface && t.Kind() == reflect.Interface) {
		return fmt.Errorf("%w: factory returns %v, not %v", ErrIncompatibleValue, c.Result, t)
	}

	f.reg.mu.Lock()
	defer f.reg.mu.Unlock()

	f.reg.factories[t] = c

	return nil
}

// RegisterConstructor adds fn as a public constructor of its result type.
// Results may be T, *T or an interface, optionally followed by a bool
// and/or an error.
func (f *Factory) RegisterConstructor(fn any) error {
	c, err := node.ParseCandidate(fn)
	if err != nil {
		return fmtConfig(err)
	}

	key := node.Base(c.Result)

	f.reg.mu.Lock()
	defer f.reg.mu.Unlock()

	f.reg.constructors[key] = append(f.reg.constructors[key], c)

	return nil
}

// RegisterEnum declares the constants of an enumeration type. values must
// be a non-empty slice of a named scalar type.
func (f *Factory) RegisterEnum(values any) error {
	v := reflect.ValueOf(values)
	if v.Kind() != reflect.Slice || v.Len() == 0 {
		return fmt.Errorf("%w: enum values must be a non-empty slice, got %T", ErrIncompatibleValue, values)
	}

	t := v.Type().Elem()
	if node.Dispatch(node.Base(t)) != node.DispatcherEnumeration || t.Kind() == reflect.Ptr {
		return fmt.Errorf("%w: %v is not an enumeration type", ErrIncompatibleValue, t)
	}

	consts := make([]reflect.Value, v.Len())
	for i := range consts {
		consts[i] = v.Index(i)
	}

	f.reg.mu.Lock()
	defer f.reg.mu.Unlock()

	f.reg.enums[t] = consts

	return nil
}

// RegisterStrategy names a value strategy for strategy=, elems=, keys= and
// values= hints.
func (f *Factory) RegisterStrategy(name string, s hint.Strategy) {
	f.reg.mu.Lock()
	defer f.reg.mu.Unlock()

	f.reg.strategies[name] = s
}

// ExcludeHintKind leaves every member carrying option k unset.
func (f *Factory) ExcludeHintKind(k hint.Kind) {
	f.reg.mu.Lock()
	defer f.reg.mu.Unlock()

	f.reg.excluded[k] = struct{}{}
}

// IncludeHintKind reverts ExcludeHintKind.
func (f *Factory) IncludeHintKind(k hint.Kind) {
	f.reg.mu.Lock()
	defer f.reg.mu.Unlock()

	delete(f.reg.excluded, k)
}

func (f *Factory) substitute(iface reflect.Type) (reflect.Type, bool) {
	f.reg.mu.RLock()
	t, ok := f.reg.substitutes[iface]
	f.reg.mu.RUnlock()

	if ok {
		return t, true
	}

	if f.sidecar != nil {
		for in, cn := range f.sidecar.Substitutes {
			it, iok := f.types.LookupType(in)
			ct, cok := f.types.LookupType(cn)
			if !iok || !cok || it != iface {
				continue
			}
			if impl, ok := implementer(iface, ct); ok {
				return impl, true
			}
		}
	}

	if t := f.provider.Substitute(iface); t != nil {
		if impl, ok := implementer(iface, t); ok {
			return impl, true
		}
	}

	return nil, false
}

func (f *Factory) factoryFor(t reflect.Type) (node.Candidate, bool) {
	f.reg.mu.RLock()
	defer f.reg.mu.RUnlock()

	c, ok := f.reg.factories[t]

	return c, ok
}

// constructorsFor returns the registered constructors building t, in
// registration order.
func (f *Factory) constructorsFor(t reflect.Type) []node.Candidate {
	f.reg.mu.RLock()
	defer f.reg.mu.RUnlock()

	var out []node.Candidate
	for _, c := range f.reg.constructors[node.Base(t)] {
		if c.Builds(t) || t.Kind() == reflect.Interface && c.Result == t {
			out = append(out, c)
		}
	}

	return slices.Clip(out)
}

func (f *Factory) enumValues(t reflect.Type) []reflect.Value {
	f.reg.mu.RLock()
	consts, ok := f.reg.enums[t]
	f.reg.mu.RUnlock()

	if ok {
		return consts
	}

	return valuesMethod(t)
}

// valuesMethod calls a Values() []T method on the zero value of t.
func valuesMethod(t reflect.Type) []reflect.Value {
	m, ok := t.MethodByName("Values")
	if !ok || m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
		return nil
	}
	if out := m.Type.Out(0); out.Kind() != reflect.Slice || out.Elem() != t {
		return nil
	}

	res := m.Func.Call([]reflect.Value{reflect.Zero(t)})[0]

	consts := make([]reflect.Value, res.Len())
	for i := range consts {
		consts[i] = res.Index(i)
	}

	return consts
}

func (f *Factory) strategy(name string) (hint.Strategy, error) {
	f.reg.mu.RLock()
	defer f.reg.mu.RUnlock()

	s, ok := f.reg.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownStrategy, name)
	}

	return s, nil
}
