package fixture

import (
	"fixture-factory/hint"
	"fixture-factory/internal/sidecar"
	"fixture-factory/node"
	"fixture-factory/options"
	"fixture-factory/typeexpr"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// member is one settable slot of a shape: an exported field, possibly
// promoted from an embedded struct, or the X of a SetX method.
type member struct {
	name   string
	typ    reflect.Type
	index  []int // field path; nil for setters
	setter int   // method index on *T; -1 for fields
	owner  string
	hint   hint.Hint
	expr   typeexpr.Expr // parsed type= hint, nil when absent
}

// ancestor is an embedded struct whose fields are promoted into the shape.
type ancestor struct {
	typ    reflect.Type
	parent string
	params []string
	args   []typeexpr.Expr
}

// shape describes how to populate one struct type.
type shape struct {
	typ       reflect.Type
	name      string
	params    []string
	members   []member
	ancestors map[string]ancestor
}

type shapeCache struct {
	mu sync.RWMutex
	m  map[reflect.Type]*shape
}

func (c *shapeCache) get(t reflect.Type) (*shape, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.m[t]

	return s, ok
}

func (c *shapeCache) put(t reflect.Type, s *shape) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.m == nil {
		c.m = make(map[reflect.Type]*shape)
	}
	c.m[t] = s
}

func (c *shapeCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.m = nil
}

func pathKey(index []int) string {
	var b strings.Builder
	for i, x := range index {
		if i > 0 {
			b.WriteByte('.')
		}
		fmt.Fprint(&b, x)
	}

	return b.String()
}

// paramsOf returns the type parameters t declares, from the sidecar or
// from a blank field tagged params=.
func (f *Factory) paramsOf(t reflect.Type) ([]string, error) {
	if s, ok := f.sidecarShape(t); ok && len(s.Params) > 0 {
		return []string(s.Params), nil
	}

	if t.Kind() != reflect.Struct {
		return nil, nil
	}

	for i := range t.NumField() {
		fld := t.Field(i)
		if fld.Name != "_" {
			continue
		}

		h, err := hint.FromField(fld)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", t, err)
		}
		if len(h.Params) > 0 {
			return h.Params, nil
		}
	}

	return nil, nil
}

// describe builds, or returns the cached, shape descriptor of struct type t.
// Malformed hints are configuration errors.
func (f *Factory) describe(t reflect.Type) (*shape, error) {
	if s, ok := f.shapes.get(t); ok {
		return s, nil
	}

	f.autoRegister(t)

	params, err := f.paramsOf(t)
	if err != nil {
		return nil, err
	}

	s := &shape{
		typ:       t,
		name:      t.String(),
		params:    params,
		ancestors: map[string]ancestor{},
	}

	side, _ := f.sidecarShape(t)
	scopes := map[string][]string{"": params}

	var fields []reflect.StructField
	if f.features.Has(options.FeaturePromotedFields) {
		fields = reflect.VisibleFields(t)
	} else {
		for i := range t.NumField() {
			fields = append(fields, t.Field(i))
		}
	}

	fieldNames := make(map[string]struct{}, len(fields))

	for _, fld := range fields {
		if fld.Name == "_" {
			continue
		}

		owner := pathKey(fld.Index[:len(fld.Index)-1])
		if _, ok := scopes[owner]; !ok {
			// promoted through a skipped embedding
			continue
		}

		h, err := hint.FromField(fld)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", t, err)
		}

		if fld.Anonymous && f.features.Has(options.FeaturePromotedFields) &&
			node.Dispatch(node.Base(fld.Type)) == node.DispatcherStruct {
			if h.Skip {
				continue
			}

			at := node.Base(fld.Type)
			ap, err := f.paramsOf(at)
			if err != nil {
				return nil, err
			}

			var args []typeexpr.Expr
			if h.Args != "" {
				args, err = typeexpr.ParseList(h.Args, typeexpr.WithParams(f.types, scopes[owner]))
				if err != nil {
					return nil, fmt.Errorf("%v.%s: %w", t, fld.Name, err)
				}
			}

			key := pathKey(fld.Index)
			s.ancestors[key] = ancestor{typ: at, parent: owner, params: ap, args: args}
			scopes[key] = ap

			continue
		}

		if !fld.IsExported() {
			continue
		}

		if len(fld.Index) == 1 {
			if sm, ok := side.Members[fld.Name]; ok {
				h = h.Merge(sm.Hint())
			}
		}

		m := member{
			name:   fld.Name,
			typ:    fld.Type,
			index:  fld.Index,
			setter: -1,
			owner:  owner,
			hint:   h,
		}

		if h.Type != "" {
			m.expr, err = typeexpr.Parse(h.Type, typeexpr.WithParams(f.types, scopes[owner]))
			if err != nil {
				return nil, fmt.Errorf("%v.%s: %w", t, fld.Name, err)
			}
		}

		fieldNames[fld.Name] = struct{}{}
		s.members = append(s.members, m)
	}

	if f.features.Has(options.FeatureSetterMethods) {
		if err := f.describeSetters(s, side.Members, fieldNames); err != nil {
			return nil, err
		}
	}

	f.shapes.put(t, s)

	return s, nil
}

func (f *Factory) describeSetters(s *shape, side map[string]sidecar.Member, fields map[string]struct{}) error {
	pt := reflect.PointerTo(s.typ)

	for i := range pt.NumMethod() {
		m := pt.Method(i)

		name, ok := strings.CutPrefix(m.Name, "Set")
		if !ok || name == "" || m.Type.NumIn() != 2 {
			continue
		}
		if _, shadowed := fields[name]; shadowed {
			continue
		}
		if out := m.Type.NumOut(); out > 1 || out == 1 && m.Type.Out(0) != errorType {
			continue
		}

		mem := member{name: name, typ: m.Type.In(1), setter: i}
		if sm, ok := side[name]; ok {
			mem.hint = sm.Hint()
		}

		if mem.hint.Type != "" {
			var err error
			mem.expr, err = typeexpr.Parse(mem.hint.Type, typeexpr.WithParams(f.types, s.params))
			if err != nil {
				return fmt.Errorf("%v.%s: %w", s.typ, m.Name, err)
			}
		}

		s.members = append(s.members, mem)
	}

	return nil
}

var errorType = reflect.TypeFor[error]()

// bindings derives the binding of every ancestor from the root binding.
func (s *shape) bindings(root *typeexpr.Binding) map[string]*typeexpr.Binding {
	out := map[string]*typeexpr.Binding{"": root}

	var walk func(key string) *typeexpr.Binding
	walk = func(key string) *typeexpr.Binding {
		if b, ok := out[key]; ok {
			return b
		}

		a := s.ancestors[key]
		b := walk(a.parent).Inherit(a.params, a.args)
		out[key] = b

		return b
	}

	for key := range s.ancestors {
		walk(key)
	}

	return out
}

// fieldByIndex walks index from v, allocating nil embedded pointers on
// the way. It reports false when the field cannot be set.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, false
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}

	return v, v.CanSet()
}
