package typeexpr_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"fixture-factory/internal/common"
	"fixture-factory/typeexpr"
)

type pair struct {
	Left  any
	Right any
}

func newRegistry(t *testing.T) *typeexpr.Registry {
	t.Helper()

	reg := typeexpr.NewRegistry()
	require.NoError(t, reg.Register("Pair", reflect.TypeFor[pair]()))

	return reg
}

func TestParse(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	scope := typeexpr.WithParams(reg, []string{"K", "V"})

	tests := []struct {
		src  string
		want string
	}{
		{"int", "int"},
		{"K", "K"},
		{"[]V", "[]V"},
		{"map[K][]V", "map[K][]V"},
		{"Pair[K, string]", "typeexpr_test.pair[K, string]"},
		{"?", "?"},
		{"? extends time.Time", "? extends time.Time"},
		{"? super []int", "? super []int"},
		{"*int", "*int"},
		{"  map[ string ] uuid.UUID ", "map[string]uuid.UUID"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			e, err := typeexpr.Parse(tt.src, scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	for _, src := range []string{"", "Unknown", "map[int", "[]", "Pair[int", "int]", "*T", "? maybe"} {
		_, err := typeexpr.Parse(src, typeexpr.WithParams(reg, []string{"T"}))
		require.Error(t, err, src)

		var pe *typeexpr.ParseError
		assert.True(t, errors.As(err, &pe), src)
		assert.ErrorIs(t, err, common.ErrConfiguration, src)
	}
}

func TestParseList(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	list, err := typeexpr.ParseList("Pair[int, string], map[string]int, T", typeexpr.WithParams(reg, []string{"T"}))
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, typeexpr.Var{Name: "T"}, list[2])

	list, err = typeexpr.ParseList("  ", reg)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBind(t *testing.T) {
	t.Parallel()

	_, err := typeexpr.Bind("Box", []string{"K", "V"}, []typeexpr.Expr{typeexpr.Of[int]()})
	require.Error(t, err)

	var insufficient *typeexpr.InsufficientTypeArgumentsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Box", insufficient.Type)
	assert.ErrorIs(t, err, common.ErrConfiguration)
	assert.Contains(t, err.Error(), "expected 2")

	b, err := typeexpr.Bind("Box", []string{"T"},
		[]typeexpr.Expr{typeexpr.Of[int](), typeexpr.Of[string](), typeexpr.Of[bool]()})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
	assert.Len(t, b.Unconsumed(), 2)

	extra, ok := b.NextExtra()
	require.True(t, ok)
	assert.Equal(t, typeexpr.Of[string](), extra)
	assert.Equal(t, []typeexpr.Expr{typeexpr.Of[bool]()}, b.Unconsumed())
}

func TestResolve(t *testing.T) {
	t.Parallel()

	b, err := typeexpr.Bind("Shape", []string{"K", "V"},
		[]typeexpr.Expr{typeexpr.Of[string](), typeexpr.SliceOf(typeexpr.Of[int]())})
	require.NoError(t, err)

	var r typeexpr.Resolver

	tests := []struct {
		name     string
		expr     typeexpr.Expr
		wantType reflect.Type
		wantArgs int
	}{
		{"concrete", typeexpr.Of[time.Duration](), reflect.TypeFor[time.Duration](), 0},
		{"var", typeexpr.Var{Name: "K"}, reflect.TypeFor[string](), 0},
		{"var bound to container", typeexpr.Var{Name: "V"}, reflect.TypeFor[[]int](), 1},
		{"slice of var", typeexpr.SliceOf(typeexpr.Var{Name: "K"}), reflect.TypeFor[[]string](), 1},
		{"map of vars", typeexpr.MapOf(typeexpr.Var{Name: "K"}, typeexpr.Var{Name: "V"}), reflect.TypeFor[map[string][]int](), 2},
		{"generic shape", typeexpr.Generic(reflect.TypeFor[pair](), typeexpr.Var{Name: "K"}), reflect.TypeFor[pair](), 1},
		{"wildcard lower", typeexpr.Wildcard{Lower: typeexpr.Of[int](), Upper: typeexpr.Of[any]()}, reflect.TypeFor[int](), 0},
		{"wildcard upper", typeexpr.Wildcard{Upper: typeexpr.Var{Name: "K"}}, reflect.TypeFor[string](), 0},
		{"wildcard", typeexpr.Wildcard{}, typeexpr.AnyType, 0},
		{"nil", nil, typeexpr.AnyType, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args := r.Resolve(tt.expr, b)
			assert.Equal(t, tt.wantType, got)
			assert.Len(t, args, tt.wantArgs)
			for _, a := range args {
				assert.True(t, typeexpr.IsGround(a), a.String())
			}
		})
	}
}

func TestResolveUnboundFallsBackToAny(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)

	var missed []string
	r := typeexpr.Resolver{
		Log:          zap.New(core),
		OnUnresolved: func(name string) { missed = append(missed, name) },
	}

	b, err := typeexpr.Bind("Shape", nil, []typeexpr.Expr{typeexpr.Of[uint8]()})
	require.NoError(t, err)

	got, _ := r.Resolve(typeexpr.Var{Name: "T"}, b)
	assert.Equal(t, reflect.TypeFor[uint8](), got, "surplus argument is consumed first")

	got, _ = r.Resolve(typeexpr.Var{Name: "T"}, b)
	assert.Equal(t, typeexpr.AnyType, got)
	assert.Equal(t, []string{"T"}, missed)
	assert.Equal(t, 1, logs.FilterMessage("unresolved type parameter, falling back to any").Len())
}

func TestInherit(t *testing.T) {
	t.Parallel()

	// type Derived[A] struct { Base[string, A] }
	derived, err := typeexpr.Bind("Derived", []string{"A"}, []typeexpr.Expr{typeexpr.Of[float64]()})
	require.NoError(t, err)

	base := derived.Inherit([]string{"K", "V"}, []typeexpr.Expr{typeexpr.Of[string](), typeexpr.Var{Name: "A"}})

	k, ok := base.Lookup("K")
	require.True(t, ok)
	assert.Equal(t, typeexpr.Of[string](), k)

	v, ok := base.Lookup("V")
	require.True(t, ok)
	assert.Equal(t, typeexpr.Of[float64](), v)

	_, ok = base.Lookup("A")
	assert.False(t, ok, "ancestor scope does not see descendant parameters")
}

func ExampleParse() {
	reg := typeexpr.NewRegistry()
	scope := typeexpr.WithParams(reg, []string{"T"})

	e := typeexpr.MustParse("map[string][]T", scope)
	b, _ := typeexpr.Bind("Example", []string{"T"}, []typeexpr.Expr{typeexpr.Of[int]()})

	t, args := typeexpr.Resolver{}.Resolve(e, b)
	fmt.Println(e, "=>", t, args)
	// Output:
	// map[string][]T => map[string][]int [string []int]
}
