package provider_test

import (
	"fixture-factory/hint"
	"fixture-factory/node"
	"fixture-factory/options"
	"fixture-factory/primitive"
	"fixture-factory/provider"
	"fixture-factory/utils"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var none provider.Attribute

func TestNonZero(t *testing.T) {
	t.Parallel()

	p := provider.NewRandom(provider.WithSeed(1))

	for range 200 {
		for _, k := range []primitive.KindEnum{primitive.KindInt8, primitive.KindInt16, primitive.KindInt32, primitive.KindInt64, primitive.KindInt} {
			v := p.Int(k, none)
			lo, hi := k.SignedBounds()
			assert.NotZero(t, v)
			assert.True(t, utils.IsInRange(lo, v, hi), "%s: %d", k, v)
		}

		for _, k := range []primitive.KindEnum{primitive.KindUint8, primitive.KindUint16, primitive.KindUint32, primitive.KindUint64, primitive.KindUint} {
			v := p.Uint(k, none)
			assert.NotZero(t, v)
			assert.LessOrEqual(t, v, k.UnsignedMax(), k.String())
		}

		assert.NotZero(t, p.Float(primitive.KindFloat64, none))
		assert.NotZero(t, p.Rune(none))
		assert.NotZero(t, p.Duration(none))
		assert.False(t, p.Time(none).IsZero())
		assert.NotZero(t, p.UUID(none))
		assert.True(t, p.Bool(none))
	}
}

func TestExactRanges(t *testing.T) {
	t.Parallel()

	p := provider.NewRandom()

	for _, v := range []int64{math.MinInt64, -1, 0, 42, math.MaxInt64} {
		assert.Equal(t, v, p.IntInRange(v, v, none))
	}
	for _, v := range []uint64{0, 7, math.MaxUint64} {
		assert.Equal(t, v, p.UintInRange(v, v, none))
	}
	for _, v := range []float64{-math.MaxFloat64, -0.5, 0, 3.25, math.MaxFloat32} {
		assert.Equal(t, v, p.FloatInRange(v, v, none))
	}
}

func TestRanges(t *testing.T) {
	t.Parallel()

	p := provider.NewRandom(provider.WithSeed(7))

	for range 500 {
		assert.True(t, utils.IsInRange(-3, p.IntInRange(-3, 3, none), 3))
		assert.True(t, utils.IsInRange(10, p.UintInRange(10, 12, none), 12))
		assert.True(t, utils.IsInRange(-1.5, p.FloatInRange(-1.5, 1.5, none), 1.5))
		assert.True(t, utils.IsInRange(-math.MaxFloat64, p.FloatInRange(-math.MaxFloat64, math.MaxFloat64, none), math.MaxFloat64))

		idx := p.Index(3)
		assert.True(t, utils.IsInRange(0, idx, 2))
	}

	// full domain draws do not overflow
	p.IntInRange(math.MinInt64, math.MaxInt64, none)
	p.UintInRange(0, math.MaxUint64, none)

	assert.Zero(t, p.Index(0))
}

func TestStrings(t *testing.T) {
	t.Parallel()

	p := provider.NewRandom(provider.WithSeed(3), provider.WithStringLength(16))

	s := p.String(none)
	assert.Len(t, s, 16)
	assert.Empty(t, strings.Trim(s, provider.NiceAlphabet))

	assert.Len(t, p.StringOfLength(3, none), 3)
	assert.Empty(t, p.StringOfLength(0, none))
	assert.NotEqual(t, p.String(none), p.String(none))
	assert.Contains(t, provider.NiceAlphabet, string(p.Rune(none)))
}

func TestSeedIsReproducible(t *testing.T) {
	t.Parallel()

	draw := func() []any {
		p := provider.NewRandom(provider.WithSeed(99))
		return []any{
			p.String(none),
			p.Int(primitive.KindInt, none),
			p.Float(primitive.KindFloat32, none),
			p.Time(none),
			p.UUID(none),
		}
	}

	assert.Equal(t, draw(), draw())
}

func TestConcurrentDraws(t *testing.T) {
	t.Parallel()

	p := provider.NewRandom()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				p.String(none)
				p.UUID(none)
			}
		}()
	}
	wg.Wait()
}

func TestPolicy(t *testing.T) {
	t.Parallel()

	p := provider.NewRandom()
	assert.Equal(t, provider.DefaultElementCount, p.ElementCount(reflect.TypeFor[string]()))
	assert.Equal(t, provider.DefaultMaxDepth, p.MaxDepth(reflect.TypeFor[string]()))
	assert.False(t, p.MemoizationEnabled())
	assert.Nil(t, p.Substitute(reflect.TypeFor[fmt.Stringer]()))
	assert.Empty(t, p.ExcludedHintKinds())

	p = provider.NewRandom(
		provider.WithElementCount(2),
		provider.WithMaxDepth(3),
		provider.WithMemoization(true),
		provider.WithSubstitute(reflect.TypeFor[fmt.Stringer](), reflect.TypeFor[time.Duration]()),
		provider.WithExcludedHints("pii", hint.KindStrategy),
	)
	assert.Equal(t, 2, p.ElementCount(reflect.TypeFor[string]()))
	assert.Equal(t, 3, p.MaxDepth(reflect.TypeFor[string]()))
	assert.True(t, p.MemoizationEnabled())
	assert.Equal(t, reflect.TypeFor[time.Duration](), p.Substitute(reflect.TypeFor[fmt.Stringer]()))

	excluded := p.ExcludedHintKinds()
	assert.Len(t, excluded, 2)
	delete(excluded, "pii")
	assert.Len(t, p.ExcludedHintKinds(), 2, "callers get a copy")

	assert.Panics(t, func() {
		provider.WithSubstitute(reflect.TypeFor[fmt.Stringer](), reflect.TypeFor[int]())
	})
	assert.Panics(t, func() { provider.WithMaxDepth(0) })
}

func TestSortCandidates(t *testing.T) {
	t.Parallel()

	short, err := node.ParseCandidate(func() *strings.Builder { return &strings.Builder{} })
	require.NoError(t, err)
	long, err := node.ParseCandidate(func(int, string, bool) *strings.Builder { return &strings.Builder{} })
	require.NoError(t, err)

	cs := []node.Candidate{long, short}
	provider.NewRandom().SortCandidates(cs)
	assert.Equal(t, 0, cs[0].NumParams())

	provider.NewRandom(provider.WithConstructorOrder(options.OrderMostParamsFirst)).SortCandidates(cs)
	assert.Equal(t, 3, cs[0].NumParams())
}
