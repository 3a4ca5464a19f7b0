package provider

import (
	"fixture-factory/hint"
	"fixture-factory/options"
	"math/rand/v2"
	"reflect"
	"time"
)

const (
	DefaultStringLength = 10
	DefaultElementCount = 5
	DefaultMaxDepth     = 1

	// NiceAlphabet is the character pool strings and runes are drawn from.
	NiceAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"
)

type config struct {
	rng          *rand.Rand
	stringLength int
	elementCount int
	maxDepth     int
	memoize      bool
	order        options.OrderEnum
	substitutes  map[reflect.Type]reflect.Type
	excluded     map[hint.Kind]struct{}
	epoch        time.Time
}

// Option customizes a Random provider.
type Option func(*config)

func newConfig(opts []Option) config {
	c := config{
		stringLength: DefaultStringLength,
		elementCount: DefaultElementCount,
		maxDepth:     DefaultMaxDepth,
		order:        options.OrderFewestParamsFirst,
		substitutes:  make(map[reflect.Type]reflect.Type),
		excluded:     make(map[hint.Kind]struct{}),
		epoch:        time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return c
}

// WithSeed makes every draw reproducible.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand provides an explicit random source. Panics on nil.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("provider: WithRand(nil)")
	}

	return func(c *config) {
		c.rng = r
	}
}

// WithStringLength sets the length of generated strings. Panics if n < 0.
func WithStringLength(n int) Option {
	if n < 0 {
		panic("provider: WithStringLength(n<0)")
	}

	return func(c *config) {
		c.stringLength = n
	}
}

// WithElementCount sets how many elements containers get. Panics if n < 0.
func WithElementCount(n int) Option {
	if n < 0 {
		panic("provider: WithElementCount(n<0)")
	}

	return func(c *config) {
		c.elementCount = n
	}
}

// WithMaxDepth sets how many frames of one type may be active at once.
// Panics if n < 1.
func WithMaxDepth(n int) Option {
	if n < 1 {
		panic("provider: WithMaxDepth(n<1)")
	}

	return func(c *config) {
		c.maxDepth = n
	}
}

// WithMemoization turns the shared instance cache on or off.
func WithMemoization(enabled bool) Option {
	return func(c *config) {
		c.memoize = enabled
	}
}

// WithConstructorOrder selects how registered constructors are ordered.
func WithConstructorOrder(order options.OrderEnum) Option {
	return func(c *config) {
		c.order = order
	}
}

// WithSubstitute resolves iface to concrete when the factory has no
// substitute of its own. Panics when concrete does not implement iface.
func WithSubstitute(iface, concrete reflect.Type) Option {
	if iface.Kind() != reflect.Interface || !concrete.Implements(iface) {
		panic("provider: WithSubstitute(" + concrete.String() + " does not implement " + iface.String() + ")")
	}

	return func(c *config) {
		c.substitutes[iface] = concrete
	}
}

// WithExcludedHints skips every member carrying one of kinds.
func WithExcludedHints(kinds ...hint.Kind) Option {
	return func(c *config) {
		for _, k := range kinds {
			c.excluded[k] = struct{}{}
		}
	}
}

// WithEpoch sets the start of the window generated times fall into.
func WithEpoch(t time.Time) Option {
	return func(c *config) {
		c.epoch = t
	}
}
