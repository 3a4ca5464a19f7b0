package typeexpr

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scope resolves identifiers met while parsing an expression.
type Scope interface {
	// IsParam reports whether name is a type parameter visible in the scope.
	IsParam(name string) bool
	// LookupType returns the runtime type registered under name.
	LookupType(name string) (reflect.Type, bool)
}

// Registry maps textual type names to runtime types. It is safe for
// concurrent use; builtin scalar names are always present.
type Registry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewRegistry creates a registry pre-populated with builtin names.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]reflect.Type, len(builtins))}
	for name, t := range builtins {
		r.types[name] = t
	}

	return r
}

var builtins = map[string]reflect.Type{
	"bool":          reflect.TypeFor[bool](),
	"string":        reflect.TypeFor[string](),
	"int":           reflect.TypeFor[int](),
	"int8":          reflect.TypeFor[int8](),
	"int16":         reflect.TypeFor[int16](),
	"int32":         reflect.TypeFor[int32](),
	"rune":          reflect.TypeFor[rune](),
	"int64":         reflect.TypeFor[int64](),
	"uint":          reflect.TypeFor[uint](),
	"uint8":         reflect.TypeFor[uint8](),
	"byte":          reflect.TypeFor[byte](),
	"uint16":        reflect.TypeFor[uint16](),
	"uint32":        reflect.TypeFor[uint32](),
	"uint64":        reflect.TypeFor[uint64](),
	"float32":       reflect.TypeFor[float32](),
	"float64":       reflect.TypeFor[float64](),
	"any":           AnyType,
	"time.Time":     reflect.TypeFor[time.Time](),
	"time.Duration": reflect.TypeFor[time.Duration](),
	"uuid.UUID":     reflect.TypeFor[uuid.UUID](),
}

// Register associates name with t. Re-registering the same pair is a no-op;
// binding an existing name to another type is an error.
func (r *Registry) Register(name string, t reflect.Type) error {
	if name == "" || t == nil {
		return fmt.Errorf("typeexpr: cannot register %q as %v", name, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.types[name]; ok && prev != t {
		return fmt.Errorf("typeexpr: name %q already registered for %s", name, prev)
	}

	r.types[name] = t

	return nil
}

// LookupType implements Scope.
func (r *Registry) LookupType(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[name]

	return t, ok
}

// NameOf returns a registered name for t, preferring the shortest one.
func (r *Registry) NameOf(t reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best := ""
	for name, rt := range r.types {
		if rt == t && (best == "" || len(name) < len(best) || len(name) == len(best) && name < best) {
			best = name
		}
	}

	return best, best != ""
}

// IsParam implements Scope; a bare registry has no type parameters.
func (r *Registry) IsParam(string) bool { return false }

// Names returns a sorted snapshot of registered names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

type paramScope struct {
	Scope
	params []string
}

// WithParams layers type parameter names over a scope.
func WithParams(parent Scope, params []string) Scope {
	if len(params) == 0 {
		return parent
	}

	return paramScope{Scope: parent, params: params}
}

func (s paramScope) IsParam(name string) bool {
	return slices.Contains(s.params, name) || s.Scope.IsParam(name)
}
