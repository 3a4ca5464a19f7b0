package hint_test

import (
	"fixture-factory/hint"
	"fixture-factory/internal/common"
	"fixture-factory/primitive"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type temperature float32

type grade string

func ptr[T any](v T) *T { return &v }

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want hint.Hint
	}{
		{"", hint.Hint{}},
		{"-", hint.Hint{Skip: true}},
		{"min=1;max=9", hint.Hint{Min: ptr("1"), Max: ptr("9")}},
		{" count = 3 ; elems=word ", hint.Hint{Count: ptr(3), Elems: "word"}},
		{"type=map[K][]V", hint.Hint{Type: "map[K][]V"}},
		{"params=K, V", hint.Hint{Params: []string{"K", "V"}}},
		{"args=string,Pair[int, T]", hint.Hint{Args: "string,Pair[int, T]"}},
		{"value=", hint.Hint{Value: ptr("")}},
		{"len=0", hint.Hint{Len: ptr(0)}},
		{"strategy=seq;keys=k;values=v", hint.Hint{Strategy: "seq", Keys: "k", Values: "v"}},
		{"nofill", hint.Hint{Markers: map[hint.Kind]string{"nofill": ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			t.Parallel()

			got, err := hint.Parse(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag     string
		wantErr error
	}{
		{"=3", hint.ErrMalformedTag},
		{"min=1;min=2", hint.ErrDuplicateOption},
		{"count", hint.ErrMissingValue},
		{"count=-1", hint.ErrNotACount},
		{"len=many", hint.ErrNotACount},
	}

	for _, tt := range tests {
		_, err := hint.Parse(tt.tag)
		require.Error(t, err, tt.tag)
		assert.ErrorIs(t, err, tt.wantErr, tt.tag)
		assert.ErrorIs(t, err, common.ErrConfiguration, tt.tag)
	}
}

func TestFromField(t *testing.T) {
	t.Parallel()

	type shape struct {
		Plain  int
		Tagged int `json:"tagged" fixture:"min=3"`
		Broken int `fixture:"count=x"`
	}

	st := reflect.TypeFor[shape]()

	h, err := hint.FromField(st.Field(0))
	require.NoError(t, err)
	assert.True(t, h.IsZero())

	h, err = hint.FromField(st.Field(1))
	require.NoError(t, err)
	assert.Equal(t, []hint.Kind{hint.KindMin}, h.Kinds())

	_, err = hint.FromField(st.Field(2))
	assert.ErrorContains(t, err, "field Broken")
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base, err := hint.Parse("min=1;max=5;count=2;audit")
	require.NoError(t, err)

	over, err := hint.Parse("max=10;strategy=seq;pii")
	require.NoError(t, err)

	got := base.Merge(over)
	assert.Equal(t, "1", *got.Min)
	assert.Equal(t, "10", *got.Max)
	assert.Equal(t, 2, *got.Count)
	assert.Equal(t, "seq", got.Strategy)
	assert.True(t, got.HasAny(map[hint.Kind]struct{}{"pii": {}}))
	assert.True(t, got.Has("audit"))
	assert.False(t, base.Has("pii"), "merge leaves the receiver untouched")
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	stamp := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
	id := uuid.MustParse("6f1c1a8e-3b9d-4c53-9a57-2b7f5d0c8e11")

	tests := []struct {
		typ  reflect.Type
		lit  string
		want any
	}{
		{reflect.TypeFor[int8](), "-128", int8(-128)},
		{reflect.TypeFor[uint16](), "0x10", uint16(16)},
		{reflect.TypeFor[rune](), "'z'", 'z'},
		{reflect.TypeFor[float64](), "2.5", 2.5},
		{reflect.TypeFor[temperature](), "36.6", temperature(36.6)},
		{reflect.TypeFor[bool](), "true", true},
		{reflect.TypeFor[string](), "hello", "hello"},
		{reflect.TypeFor[grade](), "A", grade("A")},
		{reflect.TypeFor[time.Duration](), "1m30s", 90 * time.Second},
		{reflect.TypeFor[time.Time](), "2024-02-29T12:00:00Z", stamp},
		{reflect.TypeFor[uuid.UUID](), id.String(), id},
	}

	for _, tt := range tests {
		got, err := hint.ParseValue(tt.typ, tt.lit)
		require.NoError(t, err, tt.lit)
		assert.Equal(t, tt.want, got.Interface(), tt.lit)
	}

	failures := []struct {
		typ     reflect.Type
		lit     string
		wantErr error
	}{
		{reflect.TypeFor[int8](), "128", hint.ErrValueOutOfBounds},
		{reflect.TypeFor[uint8](), "-1", hint.ErrUnparsableValue},
		{reflect.TypeFor[bool](), "yes", hint.ErrUnparsableValue},
		{reflect.TypeFor[time.Time](), "yesterday", hint.ErrUnparsableValue},
		{reflect.TypeFor[[]int](), "1", hint.ErrNotAScalar},
	}

	for _, tt := range failures {
		_, err := hint.ParseValue(tt.typ, tt.lit)
		require.Error(t, err, tt.lit)

		var valueErr *hint.ValueError
		require.ErrorAs(t, err, &valueErr)
		assert.Equal(t, tt.typ, valueErr.Type)
		assert.ErrorIs(t, err, tt.wantErr)
		assert.ErrorIs(t, err, common.ErrConfiguration)
	}
}

func TestBounds(t *testing.T) {
	t.Parallel()

	h, err := hint.Parse("min=10;max=3")
	require.NoError(t, err)

	lo, hi, ok, err := h.IntBounds(primitive.KindInt)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{10, 10}, []int64{lo, hi}, "inverted range heals onto min")

	h, err = hint.Parse("min=200")
	require.NoError(t, err)

	lo, hi, _, err = h.IntBounds(primitive.KindInt8)
	require.NoError(t, err)
	assert.Equal(t, []int64{127, 127}, []int64{lo, hi})

	h, err = hint.Parse("max=7")
	require.NoError(t, err)

	ulo, uhi, ok, err := h.UintBounds(primitive.KindUint8)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []uint64{0, 7}, []uint64{ulo, uhi})

	h, err = hint.Parse("min='a';max='f'")
	require.NoError(t, err)

	lo, hi, _, err = h.IntBounds(primitive.KindInt32)
	require.NoError(t, err)
	assert.Equal(t, []int64{'a', 'f'}, []int64{lo, hi})

	flo, fhi, ok, err := hint.Hint{}.FloatBounds(primitive.KindFloat32)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Less(t, flo, fhi)

	h, err = hint.Parse("min=abc")
	require.NoError(t, err)

	_, _, _, err = h.FloatBounds(primitive.KindFloat64)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func ExampleCycle() {
	s := hint.Cycle("a", "b")
	fmt.Println(s.Value(), s.Value(), s.Value())
	fmt.Println(hint.Applicable(s, reflect.TypeFor[string]()), hint.Applicable(s, reflect.TypeFor[int]()))

	n := hint.Typed(func() int { return 7 })
	fmt.Println(n.Value(), hint.Applicable(n, reflect.TypeFor[int]()), hint.Applicable(n, reflect.TypeFor[any]()))

	f := hint.Func(func() any { return 1.5 })
	fmt.Println(f.Value(), hint.Applicable(f, reflect.TypeFor[bool]()), hint.Applicable(nil, reflect.TypeFor[bool]()))

	// Output:
	// a b a
	// true false
	// 7 true true
	// 1.5 true false
}
