package provider

import (
	"fixture-factory/hint"
	"fixture-factory/node"
	"fixture-factory/primitive"
	"maps"
	"math"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const timeWindow = 30 * 365 * 24 * time.Hour

// Random draws non-zero values from a seedable source. It is safe for
// concurrent use.
type Random struct {
	mu  sync.Mutex
	cfg config
}

var _ Provider = (*Random)(nil)

// NewRandom creates the default provider.
func NewRandom(opts ...Option) *Random {
	return &Random{cfg: newConfig(opts)}
}

// Bool always returns true.
func (r *Random) Bool(Attribute) bool { return true }

// Int returns a value in [1, max(kind)], capped at MaxInt32 for wide kinds.
func (r *Random) Int(kind primitive.KindEnum, a Attribute) int64 {
	_, hi := kind.SignedBounds()
	return r.IntInRange(1, min(hi, math.MaxInt32), a)
}

func (r *Random) IntInRange(lo, hi int64, _ Attribute) int64 {
	if lo >= hi {
		return lo
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	span := uint64(hi - lo)
	if span == math.MaxUint64 {
		return int64(r.cfg.rng.Uint64())
	}

	return lo + int64(r.cfg.rng.Uint64N(span+1))
}

// Uint returns a value in [1, max(kind)], capped at MaxUint32 for wide kinds.
func (r *Random) Uint(kind primitive.KindEnum, a Attribute) uint64 {
	return r.UintInRange(1, min(kind.UnsignedMax(), math.MaxUint32), a)
}

func (r *Random) UintInRange(lo, hi uint64, _ Attribute) uint64 {
	if lo >= hi {
		return lo
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	span := hi - lo
	if span == math.MaxUint64 {
		return r.cfg.rng.Uint64()
	}

	return lo + r.cfg.rng.Uint64N(span+1)
}

// Float returns a value in (0, 1000).
func (r *Random) Float(primitive.KindEnum, Attribute) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		if f := r.cfg.rng.Float64() * 1000; f != 0 {
			return f
		}
	}
}

func (r *Random) FloatInRange(lo, hi float64, _ Attribute) float64 {
	if lo >= hi {
		return lo
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// halves keep the span finite for ranges as wide as the float64 domain
	f := 2 * (lo/2 + (hi/2-lo/2)*r.cfg.rng.Float64())

	return min(max(f, lo), hi)
}

func (r *Random) String(a Attribute) string {
	return r.StringOfLength(r.cfg.stringLength, a)
}

func (r *Random) StringOfLength(n int, _ Attribute) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	b.Grow(n)

	for range n {
		b.WriteByte(NiceAlphabet[r.cfg.rng.IntN(len(NiceAlphabet))])
	}

	return b.String()
}

func (r *Random) Rune(Attribute) rune {
	r.mu.Lock()
	defer r.mu.Unlock()

	return rune(NiceAlphabet[r.cfg.rng.IntN(len(NiceAlphabet))])
}

// Time returns a UTC instant with second precision within thirty years of
// the configured epoch.
func (r *Random) Time(a Attribute) time.Time {
	offset := r.IntInRange(1, int64(timeWindow/time.Second), a)
	return r.cfg.epoch.Add(time.Duration(offset) * time.Second).UTC()
}

// Duration returns between one second and one day, in whole seconds.
func (r *Random) Duration(a Attribute) time.Duration {
	return time.Duration(r.IntInRange(1, int64(24*time.Hour/time.Second), a)) * time.Second
}

// UUID returns a version 4 UUID drawn from the provider's source.
func (r *Random) UUID(Attribute) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := uuid.NewRandomFromReader(rngReader{r: &r.cfg})
	if err != nil {
		// rngReader never fails
		panic(err)
	}

	return id
}

type rngReader struct{ r *config }

func (rr rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(rr.r.rng.Uint32())
	}

	return len(p), nil
}

// Index draws in [0, n] and folds the result into [0, n).
func (r *Random) Index(n int) int {
	if n <= 0 {
		return 0
	}

	return int(r.IntInRange(0, int64(n), Attribute{})) % n
}

func (r *Random) ElementCount(reflect.Type) int { return r.cfg.elementCount }

func (r *Random) MaxDepth(reflect.Type) int { return r.cfg.maxDepth }

func (r *Random) MemoizationEnabled() bool { return r.cfg.memoize }

func (r *Random) Substitute(iface reflect.Type) reflect.Type {
	return r.cfg.substitutes[iface]
}

func (r *Random) SortCandidates(cs []node.Candidate) {
	node.SortCandidates(cs, r.cfg.order)
}

func (r *Random) ExcludedHintKinds() map[hint.Kind]struct{} {
	return maps.Clone(r.cfg.excluded)
}
