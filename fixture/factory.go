package fixture

import (
	"container/list"
	"fixture-factory/hint"
	"fixture-factory/internal/common"
	"fixture-factory/internal/sidecar"
	"fixture-factory/options"
	"fixture-factory/provider"
	"fixture-factory/typeexpr"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// DefaultFeatures enables every construction and discovery feature.
const DefaultFeatures = options.FeatureAll

// Factory manufactures populated values of arbitrary types. A Factory is
// safe for concurrent use; registration while manufacturing is allowed but
// which calls observe it is unspecified.
type Factory struct {
	provider provider.Provider
	delegate Delegate
	log      *zap.Logger
	sidecar  *sidecar.File
	features options.FeatureEnum

	types  *typeexpr.Registry
	reg    registry
	shapes shapeCache
	memo   memo
}

// Option configures a Factory.
type Option func(*Factory)

// WithProvider replaces the default seeded random provider.
func WithProvider(p provider.Provider) Option {
	return func(f *Factory) {
		if p == nil {
			panic("fixture: nil provider")
		}
		f.provider = p
	}
}

// WithDelegate sets the fallback asked when the factory gives up on a type.
func WithDelegate(d Delegate) Option {
	return func(f *Factory) {
		f.delegate = d
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(f *Factory) {
		if log != nil {
			f.log = log
		}
	}
}

// WithSidecar attaches hints loaded from a YAML hint file. Sidecar hints
// override tag hints option by option, and its substitutes are bound.
func WithSidecar(s *sidecar.File) Option {
	return func(f *Factory) {
		f.sidecar = s
	}
}

// WithFeatures replaces the enabled feature set.
func WithFeatures(features options.FeatureEnum) Option {
	return func(f *Factory) {
		f.features = features
	}
}

// New creates a factory. Sidecar substitutes naming unregistered types are
// ignored here; validate the file with sidecar.Validate beforehand.
func New(opts ...Option) *Factory {
	f := &Factory{
		log:      zap.NewNop(),
		features: DefaultFeatures,
		types:    typeexpr.NewRegistry(),
		reg:      newRegistry(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.provider == nil {
		f.provider = provider.NewRandom()
	}
	if f.delegate == nil {
		f.delegate = LoggingDelegate{Log: f.log}
	}

	_ = f.types.Register("list.List", reflect.TypeFor[list.List]())
	_ = f.types.Register("sync.Map", reflect.TypeFor[sync.Map]())

	return f
}

// Types exposes the name registry type hints are parsed against.
func (f *Factory) Types() *typeexpr.Registry {
	return f.types
}

// ClearMemo drops every memoized instance.
func (f *Factory) ClearMemo() {
	f.memo.clear()
}

// RegisterType makes t addressable by name in type hints and sidecar files.
func (f *Factory) RegisterType(name string, t reflect.Type) error {
	if err := f.types.Register(name, t); err != nil {
		return fmtConfig(err)
	}

	f.shapes.reset()

	return nil
}

// autoRegister names t as "pkg.Name" so sidecar shapes can find it.
func (f *Factory) autoRegister(t reflect.Type) {
	if t.Name() == "" || t.PkgPath() == "" {
		return
	}

	_ = f.types.Register(common.PkgAlias(t.PkgPath())+"."+t.Name(), t)
}

// sidecarShape returns the sidecar entry of t, if any.
func (f *Factory) sidecarShape(t reflect.Type) (sidecar.Shape, bool) {
	return f.sidecar.ShapeFor(t, f.types.LookupType)
}

// excluded is the union of the factory's and the provider's excluded kinds.
func (f *Factory) excluded() map[hint.Kind]struct{} {
	out := f.provider.ExcludedHintKinds()
	if out == nil {
		out = make(map[hint.Kind]struct{})
	}

	f.reg.mu.RLock()
	defer f.reg.mu.RUnlock()

	for k := range f.reg.excluded {
		out[k] = struct{}{}
	}

	return out
}
