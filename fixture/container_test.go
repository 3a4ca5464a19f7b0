package fixture_test

import (
	"fixture-factory/fixture"
	"fixture-factory/internal/diagnostic"
	"fixture-factory/provider"
	"fixture-factory/typeexpr"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainers(t *testing.T) {
	t.Parallel()

	v, report, err := seeded(nil).ManufactureWithReport(reflect.TypeFor[stock]())
	require.NoError(t, err)

	s := v.(stock)

	assert.Len(t, s.Levels, 3)
	assert.Len(t, s.Seen, 2)

	require.NotNil(t, s.Queue)
	require.Equal(t, 2, s.Queue.Len())
	for e := s.Queue.Front(); e != nil; e = e.Next() {
		assert.IsType(t, 0, e.Value)
	}

	require.NotNil(t, s.Cache)
	n := 0
	s.Cache.Range(func(k, v any) bool {
		assert.IsType(t, "", k)
		assert.IsType(t, 0, v)
		n++
		return true
	})
	assert.Equal(t, 2, n)

	for _, g := range s.Grid {
		assert.NotZero(t, g)
	}

	require.Len(t, s.Events, 2)
	assert.Equal(t, 2, cap(s.Events))
	assert.NotEmpty(t, <-s.Events)

	// the only boolean the provider draws is true
	assert.Equal(t, 1, len(s.Flags))
	short := report.ByCode(diagnostic.CodeShortContainer)
	require.Len(t, short, 1)
	assert.Equal(t, "Flags", short[0].Path)

	require.Len(t, s.Nested, 1)
	for _, fs := range s.Nested {
		assert.Len(t, fs, provider.DefaultElementCount)
	}
}

func TestElementCountOption(t *testing.T) {
	t.Parallel()

	f := seeded([]provider.Option{provider.WithElementCount(2)})

	r := fixture.MustMake[rawBag](f)
	assert.Len(t, r.Stuff, 2)

	m := fixture.MustMake[map[string]bool](f)
	assert.Len(t, m, 2)
}

func TestMethodContainers(t *testing.T) {
	t.Parallel()

	f := seeded(nil)

	c := fixture.MustMake[club](f)
	require.Equal(t, 3, c.Members.Len())
	for _, name := range c.Members.names {
		assert.Len(t, name, provider.DefaultStringLength)
	}

	b, err := fixture.Make[*bag](f, typeexpr.Of[int]())
	require.NoError(t, err)
	require.Equal(t, provider.DefaultElementCount, b.Len())
	for _, x := range b.items {
		assert.IsType(t, 0, x)
	}

	_, err = fixture.Make[bag](f)
	var insufficient *fixture.InsufficientTypeArgumentsError
	assert.ErrorAs(t, err, &insufficient)
}

func TestRawTopLevelContainers(t *testing.T) {
	t.Parallel()

	f := seeded(nil)

	l, err := fixture.Make[*sync.Map](f, typeexpr.Of[int](), typeexpr.Of[string]())
	require.NoError(t, err)

	l.Range(func(k, v any) bool {
		assert.IsType(t, 0, k)
		assert.IsType(t, "", v)
		return true
	})

	_, report, err := f.ManufactureWithReport(reflect.TypeFor[[]any]())
	require.NoError(t, err)
	assert.NotEmpty(t, report.ByCode(diagnostic.CodeRawContainer))

	_, report, err = f.ManufactureWithReport(reflect.TypeFor[[]any](), typeexpr.Of[int](), typeexpr.Of[int]())
	require.NoError(t, err)
	assert.Len(t, report.ByCode(diagnostic.CodeLostTypeArgs), 1)
}

func TestUncomparableKeys(t *testing.T) {
	t.Parallel()

	_, err := seeded(nil).Manufacture(reflect.TypeFor[*sync.Map](), typeexpr.Of[[]int](), typeexpr.Of[int]())
	assert.ErrorIs(t, err, fixture.ErrUnsupportedContainer)
}

type prefilled struct {
	Tags  []string
	Index map[string]int
}

func TestConstructedContainersAreKept(t *testing.T) {
	t.Parallel()

	f := seeded(nil)
	require.NoError(t, f.RegisterConstructor(func() *prefilled {
		return &prefilled{Tags: []string{"keep"}, Index: map[string]int{"keep": 1}}
	}))

	v, err := fixture.Make[prefilled](f)
	require.NoError(t, err)

	require.Len(t, v.Tags, provider.DefaultElementCount)
	assert.Equal(t, "keep", v.Tags[0])
	assert.Len(t, v.Index, provider.DefaultElementCount)
	assert.Equal(t, 1, v.Index["keep"])

	p, err := fixture.Make[*prefilled](f)
	require.NoError(t, err)
	assert.Equal(t, "keep", p.Tags[0])
}

func TestFill(t *testing.T) {
	t.Parallel()

	f := seeded(nil)

	m := map[string]int{"keep": 7}
	require.NoError(t, f.Fill(&m))
	assert.Len(t, m, provider.DefaultElementCount)
	assert.Equal(t, 7, m["keep"])

	xs := []int{1}
	require.NoError(t, f.Fill(&xs))
	require.Len(t, xs, provider.DefaultElementCount)
	assert.Equal(t, 1, xs[0])

	s := stock{Levels: map[string]int{"keep": 1}}
	require.NoError(t, f.Fill(&s))
	assert.Len(t, s.Levels, 3)
	assert.Equal(t, 1, s.Levels["keep"])
	assert.Len(t, s.Seen, 2)

	var p Person
	require.NoError(t, f.Fill(&p))
	assert.NotEmpty(t, p.Name)

	var b bag
	require.NoError(t, f.Fill(&b, typeexpr.Of[string]()))
	require.Equal(t, provider.DefaultElementCount, b.Len())
	assert.IsType(t, "", b.items[0])

	var n int
	require.NoError(t, f.Fill(&n))
	assert.NotZero(t, n)

	assert.ErrorIs(t, f.Fill(p), fixture.ErrNotAPointer)
	assert.ErrorIs(t, f.Fill((*Person)(nil)), fixture.ErrNotAPointer)
	assert.ErrorIs(t, f.Fill(&b), fixture.ErrConfiguration)
}
