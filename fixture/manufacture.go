package fixture

import (
	"fixture-factory/hint"
	"fixture-factory/internal/diagnostic"
	"fixture-factory/node"
	"fixture-factory/provider"
	"fixture-factory/typeexpr"
	"fmt"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
)

type (
	Diagnostics = diagnostic.Diagnostics
	Diagnostic  = diagnostic.Diagnostic
)

// call holds the state of one top-level request. It is never shared
// between goroutines.
type call struct {
	f        *Factory
	guard    node.Guard
	diags    *diagnostic.Diagnostics
	resolver typeexpr.Resolver
	excluded map[hint.Kind]struct{}
	maxDepth int
	memoize  bool
	path     []string

	top         bool
	rootBinding *typeexpr.Binding
}

func (f *Factory) newCall(root reflect.Type) *call {
	c := &call{
		f:        f,
		diags:    &diagnostic.Diagnostics{},
		excluded: f.excluded(),
		maxDepth: f.provider.MaxDepth(root),
		memoize:  f.provider.MemoizationEnabled(),
		top:      true,
	}

	c.resolver = typeexpr.Resolver{
		Log: f.log,
		OnUnresolved: func(name string) {
			c.diags.AddWarning(diagnostic.CodeUnresolvedTypeVar,
				fmt.Sprintf("type parameter %s resolved to any", name), "", c.pathStr())
		},
	}

	return c
}

func (c *call) push(seg string) { c.path = append(c.path, seg) }
func (c *call) pop()            { c.path = c.path[:len(c.path)-1] }

func (c *call) pathStr() string {
	var b strings.Builder
	for i, seg := range c.path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}

	return b.String()
}

// Manufacture builds a populated value of t. args are the ground type
// arguments of t when t is an erased generic shape or a raw container.
//
// The result is nil when nothing could be built; members that could not be
// filled are left at their zero value. Only configuration errors and
// failures of user code (setters, custom factories, the delegate) are
// returned.
func (f *Factory) Manufacture(t reflect.Type, args ...typeexpr.Expr) (any, error) {
	v, _, err := f.ManufactureWithReport(t, args...)
	return v, err
}

// ManufactureWithReport is Manufacture that also returns the diagnostics
// collected while building.
func (f *Factory) ManufactureWithReport(t reflect.Type, args ...typeexpr.Expr) (any, *Diagnostics, error) {
	if t == nil {
		return nil, nil, fmt.Errorf("%w: nil type", ErrConfiguration)
	}
	if err := checkArgs(args); err != nil {
		return nil, nil, err
	}

	c := f.newCall(t)

	v, err := c.root(t, args)
	if err != nil {
		f.log.Debug("manufacture failed", zap.Stringer("type", t), zap.Error(err))
		return nil, c.diags, err
	}
	if !v.IsValid() {
		return nil, c.diags, nil
	}

	out := v.Interface()
	if ce := f.log.Check(zap.DebugLevel, "manufactured"); ce != nil {
		ce.Write(zap.Stringer("type", t), zap.Int("diagnostics", c.diags.Len()), zap.String("value", spew.Sdump(out)))
	}

	return out, c.diags, nil
}

func checkArgs(args []typeexpr.Expr) error {
	for i, a := range args {
		if a == nil || !typeexpr.IsGround(a) {
			return fmt.Errorf("%w: type argument %d (%v) is not ground", ErrConfiguration, i, a)
		}
	}

	return nil
}

// Make is Manufacture for a static type.
func Make[T any](f *Factory, args ...typeexpr.Expr) (T, error) {
	var zero T

	v, err := f.Manufacture(reflect.TypeFor[T](), args...)
	if err != nil || v == nil {
		return zero, err
	}

	return v.(T), nil
}

// MustMake is Make that panics on error.
func MustMake[T any](f *Factory, args ...typeexpr.Expr) T {
	v, err := Make[T](f, args...)
	if err != nil {
		panic(err)
	}

	return v
}

// Fill populates the value ptr points to in place: struct members are
// manufactured and containers are filled to their element count.
func (f *Factory) Fill(ptr any, args ...typeexpr.Expr) error {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("%w, got %T", ErrNotAPointer, ptr)
	}
	if err := checkArgs(args); err != nil {
		return err
	}

	t := v.Type().Elem()
	c := f.newCall(t)
	c.guard.Enter(t)
	defer c.guard.Leave(t)

	var err error
	switch d := node.Dispatch(node.Base(t)); {
	case t.Kind() != reflect.Ptr && (d == node.DispatcherStruct || d == node.DispatcherMethodContainer):
		err = c.fillShape(v, args)
	case t.Kind() != reflect.Ptr && d.IsContainer():
		var out reflect.Value
		out, err = c.container(t, v.Elem(), args, provider.Attribute{})
		if err == nil && out.IsValid() && d != node.DispatcherList && d != node.DispatcherSyncMap {
			v.Elem().Set(out)
		}
	default:
		var out reflect.Value
		out, err = c.manufacture(t, args, provider.Attribute{})
		if err == nil && out.IsValid() {
			if fv, ok := fit(out, t); ok {
				v.Elem().Set(fv)
			}
		}
	}

	if err == nil {
		c.reportLost(t, args)
	}

	return err
}

func (c *call) fillShape(p reflect.Value, args []typeexpr.Expr) error {
	t := p.Type().Elem()

	s, err := c.f.describe(t)
	if err != nil {
		return err
	}

	b, err := typeexpr.Bind(s.name, s.params, args)
	if err != nil {
		return err
	}
	c.top, c.rootBinding = false, b

	if node.Dispatch(t) == node.DispatcherMethodContainer {
		if err := c.selfFill(p, s, b, provider.Attribute{}); err != nil {
			return err
		}
	}

	return c.populate(p, s, b)
}

func (c *call) root(t reflect.Type, args []typeexpr.Expr) (reflect.Value, error) {
	base := node.Base(t)

	// missing type arguments fail before anything is built
	if d := node.Dispatch(base); d == node.DispatcherStruct || d == node.DispatcherMethodContainer {
		s, err := c.f.describe(base)
		if err != nil {
			return reflect.Value{}, err
		}
		if len(s.params) > len(args) {
			return reflect.Value{}, &InsufficientTypeArgumentsError{Type: s.name, Params: s.params, Got: args}
		}
	}

	c.guard.Enter(base)
	defer c.guard.Leave(base)

	v, err := c.manufacture(t, args, provider.Attribute{})
	if err != nil {
		return reflect.Value{}, err
	}

	c.reportLost(t, args)

	return v, nil
}

// reportLost warns about caller type arguments nothing consumed.
func (c *call) reportLost(t reflect.Type, args []typeexpr.Expr) {
	var lost []typeexpr.Expr
	switch {
	case c.rootBinding != nil:
		lost = c.rootBinding.Unconsumed()
	case c.top:
		lost = args
	}

	if len(lost) == 0 {
		return
	}

	names := make([]string, len(lost))
	for i, e := range lost {
		names[i] = e.String()
	}

	msg := fmt.Sprintf("type arguments [%s] were never used", strings.Join(names, ", "))
	c.diags.AddWarning(diagnostic.CodeLostTypeArgs, msg, node.TypeStr(t), "")
	c.f.log.Warn("lost type arguments", zap.Stringer("type", t), zap.Strings("args", names))
}

// byPointer reports whether values of kind d are built as pointers and
// dereferenced only on request.
func byPointer(d node.DispatcherEnum) bool {
	switch d {
	case node.DispatcherStruct, node.DispatcherMethodContainer, node.DispatcherList, node.DispatcherSyncMap:
		return true
	default:
		return false
	}
}

// deref adapts a pointer built for base to the requested type.
func deref(p reflect.Value, want reflect.Type) reflect.Value {
	if want.Kind() == reflect.Ptr {
		return p
	}

	return p.Elem()
}

// manufacture is the state machine of one value: memo check, custom
// factory, then scalar, abstract, container or shape construction. An
// invalid result with a nil error means nothing was produced.
func (c *call) manufacture(t reflect.Type, args []typeexpr.Expr, a provider.Attribute) (reflect.Value, error) {
	if t == nil {
		t = typeexpr.AnyType
	}

	depth, base := node.PtrDepthAndBase(t)
	d := node.Dispatch(base)
	shaped := depth <= 1 && byPointer(d)

	if shaped && c.memoize && d != node.DispatcherList && d != node.DispatcherSyncMap {
		if p, ok := c.f.memo.get(base); ok {
			// the memoized instance already consumed the caller's arguments
			c.top = false
			return deref(p, t), nil
		}
	}

	if fc, ok := c.f.factoryFor(t); ok {
		return c.custom(t, fc)
	}
	if fc, ok := c.f.factoryFor(base); ok && depth == 1 {
		v, err := c.custom(base, fc)
		if err != nil || !v.IsValid() {
			return v, err
		}
		p := reflect.New(base)
		p.Elem().Set(v)
		return p, nil
	}

	if depth > 0 && !shaped {
		v, err := c.manufacture(t.Elem(), args, a)
		if err != nil || !v.IsValid() {
			return v, err
		}

		p := reflect.New(t.Elem())
		p.Elem().Set(v)

		return p, nil
	}

	switch d {
	case node.DispatcherScalar:
		return c.scalar(base, a)
	case node.DispatcherEnumeration:
		return c.enum(base, a)
	case node.DispatcherInterface:
		return c.abstract(base, args, a)
	case node.DispatcherStruct, node.DispatcherMethodContainer:
		return c.shapeValue(base, t, args, a)
	case node.DispatcherUnknown:
		return c.delegate(t, args, fmt.Sprintf("%s values are not manufactured", base.Kind()))
	}

	v, err := c.container(base, reflect.Value{}, args, a)
	if err != nil || !v.IsValid() {
		return v, err
	}
	if byPointer(d) {
		return deref(v, t), nil
	}

	return v, nil
}

// guarded manufactures t under the recursion guard. Scalars are terminal
// and never counted.
func (c *call) guarded(t reflect.Type, args []typeexpr.Expr, a provider.Attribute) (reflect.Value, error) {
	base := node.Base(t)

	switch node.Dispatch(base) {
	case node.DispatcherScalar, node.DispatcherEnumeration:
		return c.manufacture(t, args, a)
	}

	if c.guard.Exceeds(base, c.maxDepth) {
		c.diags.AddInfo(diagnostic.CodeDepthExceeded,
			fmt.Sprintf("depth %d reached", c.maxDepth), node.TypeStr(base), c.pathStr())
		c.f.log.Debug("recursion depth reached", zap.Stringer("type", base), zap.String("path", c.pathStr()))

		return c.delegate(t, args, "recursion depth reached")
	}

	c.guard.Enter(base)
	defer c.guard.Leave(base)

	return c.manufacture(t, args, a)
}

func (c *call) custom(t reflect.Type, fc node.Candidate) (reflect.Value, error) {
	out, err := fc.Call(nil)
	if err != nil {
		if declined(err) {
			return reflect.Value{}, nil
		}
		return reflect.Value{}, &ManufacturingError{Type: t, Path: c.pathStr(), Err: err}
	}

	v, ok := fit(out, t)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: custom factory produced %s for %s", ErrIncompatibleValue, out.Type(), t)
	}

	return v, nil
}

func (c *call) delegate(t reflect.Type, args []typeexpr.Expr, reason string) (reflect.Value, error) {
	c.diags.AddInfo(diagnostic.CodeDelegate, reason, node.TypeStr(t), c.pathStr())

	out, err := c.f.delegate.Manufacture(t, args...)
	if err != nil {
		if isConfiguration(err) {
			return reflect.Value{}, err
		}
		return reflect.Value{}, &ManufacturingError{Type: t, Path: c.pathStr(), Err: err}
	}
	if out == nil {
		return reflect.Value{}, nil
	}

	v, ok := fit(reflect.ValueOf(out), t)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: delegate produced %T for %s", ErrIncompatibleValue, out, t)
	}

	return v, nil
}

func (c *call) abstract(t reflect.Type, args []typeexpr.Expr, a provider.Attribute) (reflect.Value, error) {
	if sub, ok := c.f.substitute(t); ok {
		return c.manufacture(sub, args, a)
	}

	if t.NumMethod() == 0 {
		return reflect.ValueOf(struct{}{}), nil
	}

	if cands := c.f.constructorsFor(t); len(cands) > 0 {
		c.f.provider.SortCandidates(cands)

		v, err := c.try(t, cands)
		if err != nil || v.IsValid() {
			return v, err
		}
	}

	if len(args) > 0 {
		return reflect.Value{}, fmt.Errorf("%w: %s with type arguments has no substitute", ErrUnsupportedContainer, t)
	}

	return c.delegate(t, args, "interface has no substitute")
}

// shapeValue constructs a struct shape, memoizes it and populates its
// members. want is base or *base.
func (c *call) shapeValue(base, want reflect.Type, args []typeexpr.Expr, a provider.Attribute) (reflect.Value, error) {
	s, err := c.f.describe(base)
	if err != nil {
		return reflect.Value{}, err
	}

	b, err := typeexpr.Bind(s.name, s.params, args)
	if err != nil {
		return reflect.Value{}, err
	}
	if c.top {
		c.top, c.rootBinding = false, b
	}

	inst, err := c.construct(base)
	if err != nil {
		return reflect.Value{}, err
	}
	if !inst.IsValid() {
		return c.delegate(want, args, "no construction candidate succeeded")
	}

	if c.memoize {
		stored, mine := c.f.memo.putIfAbsent(base, inst)
		if !mine {
			return deref(stored, want), nil
		}
	}

	if node.Dispatch(base) == node.DispatcherMethodContainer {
		if err := c.selfFill(inst, s, b, a); err != nil {
			return reflect.Value{}, err
		}
	}

	if err := c.populate(inst, s, b); err != nil {
		return reflect.Value{}, err
	}

	return deref(inst, want), nil
}

// populate fills every member of the struct inst points to.
func (c *call) populate(inst reflect.Value, s *shape, root *typeexpr.Binding) error {
	bindings := s.bindings(root)

	for _, m := range s.members {
		if m.hint.Skip || m.hint.HasAny(c.excluded) {
			continue
		}

		c.push(m.name)
		err := c.member(inst, s, m, bindings[m.owner])
		c.pop()

		if err != nil {
			return err
		}
	}

	return nil
}

func (c *call) member(inst reflect.Value, s *shape, m member, b *typeexpr.Binding) error {
	a := provider.Attribute{Owner: s.typ, Member: m.name, Hint: m.hint}

	var slot reflect.Value
	if m.setter < 0 {
		var ok bool
		if slot, ok = fieldByIndex(inst.Elem(), m.index); !ok {
			c.diags.AddWarning(diagnostic.CodeUnsetMember, "member is not settable", node.TypeStr(s.typ), c.pathStr())
			return nil
		}
	}

	v, err := c.memberValue(m, a, b, slot)
	if err != nil {
		return err
	}

	if !v.IsValid() {
		c.diags.AddWarning(diagnostic.CodeUnsetMember, "no value produced", node.TypeStr(s.typ), c.pathStr())
		c.f.log.Warn("member left unset", zap.Stringer("type", s.typ), zap.String("member", m.name))
		return nil
	}

	if sameSlot(v, slot) {
		return nil
	}

	fv, ok := fit(v, m.typ)
	if !ok {
		return fmt.Errorf("%w: %s cannot be stored in %s.%s of type %s",
			ErrIncompatibleValue, v.Type(), s.typ, m.name, m.typ)
	}

	if m.setter >= 0 {
		return c.callSetter(inst, m, fv)
	}

	slot.Set(fv)

	return nil
}

func (c *call) callSetter(inst reflect.Value, m member, v reflect.Value) error {
	out, err := invoke(inst.Method(m.setter), []reflect.Value{v})
	if err == nil && len(out) == 1 && !out[0].IsNil() {
		err = out[0].Interface().(error)
	}
	if err != nil {
		return &ManufacturingError{Type: inst.Type(), Path: c.pathStr(), Err: err}
	}

	return nil
}

func (c *call) memberValue(m member, a provider.Attribute, b *typeexpr.Binding, slot reflect.Value) (reflect.Value, error) {
	h := m.hint

	if h.Strategy != "" {
		s, err := c.f.strategy(h.Strategy)
		if err != nil {
			return reflect.Value{}, err
		}
		return strategyValue(s, m.typ)
	}

	if h.Value != nil {
		return hint.ParseValue(node.Base(m.typ), *h.Value)
	}

	t, args, err := c.logical(m, b)
	if err != nil {
		return reflect.Value{}, err
	}

	d := node.Dispatch(node.Base(t))
	if !d.IsContainer() && (h.Count != nil || h.Elems != "" || h.Keys != "" || h.Values != "") {
		return reflect.Value{}, fmt.Errorf("%w: element hints on %s member %s", ErrUnsupportedContainer, t, m.name)
	}

	if slot.IsValid() && d.IsContainer() && t == m.typ && t.Kind() != reflect.Ptr {
		inPlace := d == node.DispatcherList || d == node.DispatcherSyncMap || !slot.IsZero()
		if inPlace {
			return c.guardedFill(t, slot, args, a)
		}
	}

	return c.guarded(t, args, a)
}

// guardedFill refills the container already stored in slot.
func (c *call) guardedFill(t reflect.Type, slot reflect.Value, args []typeexpr.Expr, a provider.Attribute) (reflect.Value, error) {
	if c.guard.Exceeds(t, c.maxDepth) {
		return slot, nil
	}

	c.guard.Enter(t)
	defer c.guard.Leave(t)

	if node.Dispatch(t) == node.DispatcherMethodContainer {
		s, err := c.f.describe(t)
		if err != nil {
			return reflect.Value{}, err
		}

		b, err := typeexpr.Bind(s.name, s.params, args)
		if err != nil {
			return reflect.Value{}, err
		}

		return slot, c.selfFill(slot.Addr(), s, b, a)
	}

	v, err := c.container(t, slot, args, a)
	if err != nil || !v.IsValid() {
		return v, err
	}
	if byPointer(node.Dispatch(t)) {
		return deref(v, t), nil
	}

	return v, nil
}

// logical resolves the type a member is manufactured as, which may differ
// from its declared type, and the type arguments forwarded into it.
func (c *call) logical(m member, b *typeexpr.Binding) (reflect.Type, []typeexpr.Expr, error) {
	dt := m.typ

	if m.expr == nil {
		base := node.Base(dt)
		if d := node.Dispatch(base); d != node.DispatcherStruct && d != node.DispatcherMethodContainer {
			return dt, nil, nil
		}

		s, err := c.f.describe(base)
		if err != nil || len(s.params) == 0 {
			return dt, nil, err
		}

		// an erased generic member without arguments takes surplus ones
		args := make([]typeexpr.Expr, len(s.params))
		for i, p := range s.params {
			e, ok := b.NextExtra()
			if !ok {
				c.f.log.Warn("unresolved type parameter, falling back to any",
					zap.String("param", p), zap.Stringer("type", base))
				c.diags.AddWarning(diagnostic.CodeUnresolvedTypeVar,
					fmt.Sprintf("type parameter %s resolved to any", p), node.TypeStr(base), c.pathStr())
				e = typeexpr.TypeOf(typeexpr.AnyType)
			}
			args[i] = e
		}

		return dt, args, nil
	}

	rt, args := c.resolver.Resolve(m.expr, b)

	switch {
	case rt == typeexpr.AnyType && dt.Kind() != reflect.Interface:
		return dt, nil, nil
	case rt.AssignableTo(dt):
		return rt, args, nil
	case node.Base(dt) == rt:
		return dt, args, nil
	case rt.Kind() == dt.Kind() && node.Dispatch(rt).IsContainer():
		return dt, args, nil
	case reflect.PointerTo(rt).AssignableTo(dt):
		return reflect.PointerTo(rt), args, nil
	}

	return nil, nil, fmt.Errorf("%w: type hint %s resolves to %s, which does not fit member %s of type %s",
		ErrIncompatibleValue, m.expr, rt, m.name, dt)
}

func strategyValue(s hint.Strategy, t reflect.Type) (reflect.Value, error) {
	raw := s.Value()
	if raw == nil {
		return reflect.Value{}, nil
	}

	v, ok := fit(reflect.ValueOf(raw), t)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: strategy produced %T for %s", ErrIncompatibleValue, raw, t)
	}

	return v, nil
}

// fit adapts v to be stored in a t: interfaces are unwrapped, pointers
// dereferenced or taken, and named types of the same kind converted.
func fit(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if !v.IsValid() {
		return reflect.Value{}, false
	}

	vt := v.Type()

	switch {
	case vt.AssignableTo(t):
		return v, true
	case vt.Kind() == reflect.Interface:
		if v.IsNil() {
			return reflect.Value{}, false
		}
		return fit(v.Elem(), t)
	case vt.Kind() == reflect.Ptr && !v.IsNil() && vt.Elem().AssignableTo(t):
		return v.Elem(), true
	case t.Kind() == reflect.Ptr && vt.AssignableTo(t.Elem()):
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		return p, true
	case vt.Kind() == t.Kind() && vt.ConvertibleTo(t):
		return v.Convert(t), true
	case t.Kind() == reflect.Ptr && vt.Kind() == t.Elem().Kind() && vt.ConvertibleTo(t.Elem()):
		p := reflect.New(t.Elem())
		p.Elem().Set(v.Convert(t.Elem()))
		return p, true
	}

	return reflect.Value{}, false
}

// sameSlot reports whether v is the value stored in slot, as returned by
// an in-place fill.
func sameSlot(v, slot reflect.Value) bool {
	return slot.IsValid() && v.CanAddr() && slot.CanAddr() &&
		v.Type() == slot.Type() && v.UnsafeAddr() == slot.UnsafeAddr()
}

func invoke(fn reflect.Value, args []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", node.ErrCandidatePanicked, r)
		}
	}()

	return fn.Call(args), nil
}
