package fixture

import (
	"container/list"
	"errors"
	"fixture-factory/hint"
	"fixture-factory/internal/diagnostic"
	"fixture-factory/node"
	"fixture-factory/provider"
	"fixture-factory/typeexpr"
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// maxMisses bounds consecutive insertions that do not grow a keyed
// container before filling stops.
const maxMisses = 8

// slot describes where the elements, keys or values of a container come
// from and what type they are stored as.
type slot struct {
	store    reflect.Type
	expr     typeexpr.Expr
	strategy hint.Strategy
	binding  *typeexpr.Binding
}

// slots pairs the storage types of a container with its type arguments.
// Interface-typed storage without an argument is a raw container.
func (c *call) slots(t reflect.Type, stores []reflect.Type, args []typeexpr.Expr, names []string) ([]slot, error) {
	exprs, _ := typeexpr.Args(args, len(stores))
	out := make([]slot, len(stores))

	raw := false
	for i, st := range stores {
		out[i] = slot{store: st, expr: exprs[i]}

		if i >= len(args) || args[i] == nil {
			if st.Kind() == reflect.Interface && st.NumMethod() == 0 {
				raw = true
			} else {
				out[i].expr = typeexpr.TypeOf(st)
			}
		}

		if names[i] != "" {
			s, err := c.f.strategy(names[i])
			if err != nil {
				return nil, err
			}
			out[i].strategy = s
		}
	}

	if raw {
		c.diags.AddWarning(diagnostic.CodeRawContainer,
			"container without type arguments holds any", node.TypeStr(t), c.pathStr())
		c.f.log.Debug("raw container", zap.Stringer("type", t), zap.String("path", c.pathStr()))
	}

	if len(args) > len(stores) {
		c.diags.AddWarning(diagnostic.CodeLostTypeArgs,
			fmt.Sprintf("%d type arguments given, %d used", len(args), len(stores)), node.TypeStr(t), c.pathStr())
	}

	return out, nil
}

// produce makes one element for s. An invalid result with a nil error
// means nothing could be built.
func (c *call) produce(s slot) (reflect.Value, error) {
	if s.strategy != nil && hint.Applicable(s.strategy, s.store) {
		return strategyValue(s.strategy, s.store)
	}

	et, args := c.resolver.Resolve(s.expr, s.binding)
	if et == typeexpr.AnyType {
		et = s.store
	}

	v, err := c.guarded(et, args, provider.Attribute{})
	if err != nil || !v.IsValid() {
		return reflect.Value{}, err
	}

	fv, ok := fit(v, s.store)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: element %s does not fit %s", ErrIncompatibleValue, v.Type(), s.store)
	}

	return fv, nil
}

func (c *call) produceOrZero(s slot) (reflect.Value, error) {
	v, err := c.produce(s)
	if err != nil || v.IsValid() {
		return v, err
	}

	return reflect.Zero(s.store), nil
}

func (c *call) count(a provider.Attribute, elem reflect.Type) int {
	if a.Hint.Count != nil {
		return *a.Hint.Count
	}

	return c.f.provider.ElementCount(elem)
}

func (c *call) short(t reflect.Type, got, want int) {
	c.diags.AddWarning(diagnostic.CodeShortContainer,
		fmt.Sprintf("filled %d of %d elements", got, want), node.TypeStr(t), c.pathStr())
}

// container fills a container of pointer-stripped type t. existing, when
// valid, is the addressable value to refill; otherwise a registered
// constructor or the kind's default provides the base. Lists and sync
// maps are returned as pointers.
func (c *call) container(t reflect.Type, existing reflect.Value, args []typeexpr.Expr, a provider.Attribute) (reflect.Value, error) {
	c.top = false

	base := existing
	if !base.IsValid() {
		if cands := c.f.constructorsFor(t); len(cands) > 0 {
			c.f.provider.SortCandidates(cands)

			out, err := c.try(t, cands)
			if err != nil {
				return reflect.Value{}, err
			}
			if out.IsValid() {
				base = reflect.Indirect(out)
			}
		}
	}

	h := a.Hint

	switch d := node.Dispatch(t); d {
	case node.DispatcherSlice:
		return c.fillSlice(t, base, args, a)

	case node.DispatcherArray:
		ss, err := c.slots(t, []reflect.Type{t.Elem()}, args, []string{h.Elems})
		if err != nil {
			return reflect.Value{}, err
		}
		return c.fillArray(t, ss[0])

	case node.DispatcherMap, node.DispatcherSet:
		return c.fillMap(t, base, args, a)

	case node.DispatcherChan:
		ss, err := c.slots(t, []reflect.Type{t.Elem()}, args, []string{h.Elems})
		if err != nil {
			return reflect.Value{}, err
		}
		return c.fillChan(t, ss[0], c.count(a, t.Elem()))

	case node.DispatcherList:
		l := list.New()
		if base.IsValid() && base.CanAddr() {
			l = base.Addr().Interface().(*list.List)
		}
		return c.fillList(l, args, a)

	case node.DispatcherSyncMap:
		m := new(sync.Map)
		if base.IsValid() && base.CanAddr() {
			m = base.Addr().Interface().(*sync.Map)
		}
		return c.fillSyncMap(m, args, a)

	default:
		return reflect.Value{}, fmt.Errorf("%w: %s (%s)", ErrUnsupportedContainer, t, d)
	}
}

func (c *call) fillSlice(t reflect.Type, v reflect.Value, args []typeexpr.Expr, a provider.Attribute) (reflect.Value, error) {
	ss, err := c.slots(t, []reflect.Type{t.Elem()}, args, []string{a.Hint.Elems})
	if err != nil {
		return reflect.Value{}, err
	}

	n := c.count(a, t.Elem())

	switch {
	case !v.IsValid() || v.IsNil():
		v = reflect.MakeSlice(t, 0, n)
	case v.Len() > n:
		v = v.Slice(0, 0)
	}

	for i := v.Len(); i < n; i++ {
		c.push("[" + strconv.Itoa(i) + "]")
		e, err := c.produceOrZero(ss[0])
		c.pop()

		if err != nil {
			return reflect.Value{}, err
		}
		v = reflect.Append(v, e)
	}

	return v, nil
}

func (c *call) fillArray(t reflect.Type, s slot) (reflect.Value, error) {
	v := reflect.New(t).Elem()

	for i := range t.Len() {
		c.push("[" + strconv.Itoa(i) + "]")
		e, err := c.produceOrZero(s)
		c.pop()

		if err != nil {
			return reflect.Value{}, err
		}
		v.Index(i).Set(e)
	}

	return v, nil
}

func (c *call) fillMap(t reflect.Type, v reflect.Value, args []typeexpr.Expr, a provider.Attribute) (reflect.Value, error) {
	set := node.Dispatch(t) == node.DispatcherSet
	h := a.Hint

	stores := []reflect.Type{t.Key(), t.Elem()}
	names := []string{h.Keys, h.Values}
	if set {
		stores, names = stores[:1], []string{firstNonEmpty(h.Elems, h.Keys)}
	}

	ss, err := c.slots(t, stores, args, names)
	if err != nil {
		return reflect.Value{}, err
	}

	n := c.count(a, t.Key())

	switch {
	case !v.IsValid() || v.IsNil():
		v = reflect.MakeMapWithSize(t, n)
	case v.Len() > n:
		v.Clear()
	}

	unit := reflect.Zero(t.Elem())

	for misses := 0; v.Len() < n; {
		c.push("[" + strconv.Itoa(v.Len()) + "]")
		k, err := c.produceOrZero(ss[0])
		c.pop()

		if err != nil {
			return reflect.Value{}, err
		}

		if !k.Comparable() {
			return reflect.Value{}, fmt.Errorf("%w: map key %s is not comparable", ErrUnsupportedContainer, k.Type())
		}

		if v.MapIndex(k).IsValid() {
			if misses++; misses > maxMisses {
				c.short(t, v.Len(), n)
				break
			}
			continue
		}
		misses = 0

		val := unit
		if !set {
			c.push("[" + strconv.Itoa(v.Len()) + "]")
			val, err = c.produceOrZero(ss[1])
			c.pop()

			if err != nil {
				return reflect.Value{}, err
			}
		}

		v.SetMapIndex(k, val)
	}

	return v, nil
}

func (c *call) fillChan(t reflect.Type, s slot, n int) (reflect.Value, error) {
	ch := reflect.MakeChan(reflect.ChanOf(reflect.BothDir, t.Elem()), n)

	for i := range n {
		c.push("[" + strconv.Itoa(i) + "]")
		e, err := c.produceOrZero(s)
		c.pop()

		if err != nil {
			return reflect.Value{}, err
		}
		ch.Send(e)
	}

	return ch.Convert(t), nil
}

var listType = reflect.TypeFor[list.List]()

func (c *call) fillList(l *list.List, args []typeexpr.Expr, a provider.Attribute) (reflect.Value, error) {
	ss, err := c.slots(listType, []reflect.Type{typeexpr.AnyType}, args, []string{a.Hint.Elems})
	if err != nil {
		return reflect.Value{}, err
	}

	n := c.count(a, typeexpr.AnyType)
	if l.Len() > n {
		l.Init()
	}

	for l.Len() < n {
		c.push("[" + strconv.Itoa(l.Len()) + "]")
		e, err := c.produce(ss[0])
		c.pop()

		if err != nil {
			return reflect.Value{}, err
		}

		var x any
		if e.IsValid() {
			x = e.Interface()
		}
		l.PushBack(x)
	}

	return reflect.ValueOf(l), nil
}

var syncMapType = reflect.TypeFor[sync.Map]()

func syncMapLen(m *sync.Map) int {
	n := 0
	m.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}

func (c *call) fillSyncMap(m *sync.Map, args []typeexpr.Expr, a provider.Attribute) (reflect.Value, error) {
	h := a.Hint

	ss, err := c.slots(syncMapType, []reflect.Type{typeexpr.AnyType, typeexpr.AnyType}, args, []string{h.Keys, h.Values})
	if err != nil {
		return reflect.Value{}, err
	}

	want := c.count(a, typeexpr.AnyType)

	n := syncMapLen(m)
	if n > want {
		m.Clear()
		n = 0
	}

	for misses := 0; n < want; {
		c.push("[" + strconv.Itoa(n) + "]")
		k, err := c.produce(ss[0])
		if err == nil && k.IsValid() && !k.Comparable() {
			err = fmt.Errorf("%w: sync.Map key %s is not comparable", ErrUnsupportedContainer, k.Type())
		}

		var v reflect.Value
		if err == nil {
			v, err = c.produce(ss[1])
		}
		c.pop()

		if err != nil {
			return reflect.Value{}, err
		}

		// nil keys and values are never stored
		if node.IsNil(k) || node.IsNil(v) {
			if misses++; misses > maxMisses {
				c.short(syncMapType, n, want)
				break
			}
			continue
		}

		if _, loaded := m.LoadOrStore(k.Interface(), v.Interface()); loaded {
			if misses++; misses > maxMisses {
				c.short(syncMapType, n, want)
				break
			}
			continue
		}

		misses = 0
		n++
	}

	return reflect.ValueOf(m), nil
}

var errNoLen = errors.New("container has no usable Len method")

// containerLen calls Len on a method-based container pointer.
func containerLen(p reflect.Value) (int, error) {
	fn := p.MethodByName("Len")
	if !fn.IsValid() {
		return 0, errNoLen
	}

	out, err := invoke(fn, nil)
	if err != nil {
		return 0, err
	}

	return int(out[0].Int()), nil
}

// selfFill inserts elements into a method-based container through its own
// Add/PushBack or Put/Set method until Len reports the element count.
// Interface-typed method arguments take their type from the shape's type
// parameters, in order.
func (c *call) selfFill(p reflect.Value, s *shape, b *typeexpr.Binding, a provider.Attribute) error {
	t := p.Type().Elem()

	mc, ok := node.LookupContainer(t)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedContainer, t)
	}

	h := a.Hint

	names := []string{h.Elems}
	if mc.IsMap() {
		names = []string{h.Keys, h.Values}
	}

	ss := make([]slot, len(mc.Args))
	for i, st := range mc.Args {
		ss[i] = slot{store: st, expr: typeexpr.TypeOf(st), binding: b}

		if st.Kind() == reflect.Interface && i < len(s.params) {
			ss[i].expr = typeexpr.Var{Name: s.params[i]}
		}

		if names[i] != "" {
			strat, err := c.f.strategy(names[i])
			if err != nil {
				return err
			}
			ss[i].strategy = strat
		}
	}

	want := c.count(a, mc.Args[0])
	insert := p.MethodByName(mc.Insert)

	n, err := containerLen(p)
	if err != nil {
		return &ManufacturingError{Type: t, Path: c.pathStr(), Err: err}
	}

	if n > want {
		for _, name := range []string{"Clear", "Reset"} {
			if fn := p.MethodByName(name); fn.IsValid() && fn.Type().NumIn() == 0 {
				if _, err := invoke(fn, nil); err != nil {
					return &ManufacturingError{Type: t, Path: c.pathStr(), Err: err}
				}
				break
			}
		}
	}

	for misses := 0; ; {
		if n, err = containerLen(p); err != nil {
			return &ManufacturingError{Type: t, Path: c.pathStr(), Err: err}
		}
		if n >= want {
			return nil
		}

		in := make([]reflect.Value, len(ss))
		c.push("[" + strconv.Itoa(n) + "]")
		for i := range ss {
			if in[i], err = c.produceOrZero(ss[i]); err != nil {
				break
			}
		}
		c.pop()

		if err != nil {
			return err
		}

		if _, err := invoke(insert, in); err != nil {
			return &ManufacturingError{Type: t, Path: c.pathStr(), Err: err}
		}

		if after, err := containerLen(p); err == nil && after == n {
			if misses++; misses > maxMisses {
				c.short(t, n, want)
				return nil
			}
		} else {
			misses = 0
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
