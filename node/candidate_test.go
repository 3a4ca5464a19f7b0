package node_test

import (
	"errors"
	"fixture-factory/node"
	"fixture-factory/options"
	"fmt"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moreThanError interface {
	error
	More()
}

type account struct {
	ID    int
	Owner string
}

func empty()                          { panic("not implemented") }
func wrong(int) (string, error, bool) { panic("not implemented") }

func full(int) (string, bool, error)          { panic("not implemented") }
func customError(int) (string, moreThanError) { panic("not implemented") }

func newAccount() *account { return &account{} }

func newOwnedAccount(id int, owner string) account { return account{ID: id, Owner: owner} }

// Blank returns an empty account.
func (account) Blank() account { return account{} }

// Clone is a factory method with parameters.
func (a *account) Clone(id int) (*account, error) {
	return &account{ID: id, Owner: a.Owner}, nil
}

func (a account) Describe() string { return a.Owner }

func ExampleParseCandidate() {
	desc, err := node.ParseCandidate(full)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.NumParams(), desc.Result.Kind(), desc.HasBool, desc.HasErr)

	desc, err = node.ParseCandidate(strconv.Itoa)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.NumParams(), desc.Result.Kind(), desc.HasBool, desc.HasErr)

	desc, err = node.ParseCandidate(strconv.Atoi)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.NumParams(), desc.Result.Kind(), desc.HasBool, desc.HasErr)

	desc, err = node.ParseCandidate(customError)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.NumParams(), desc.Result.Kind(), desc.HasBool, desc.HasErr)

	_, err = node.ParseCandidate(empty)
	fmt.Println(err)

	_, err = node.ParseCandidate(wrong)
	fmt.Println(err)

	_, err = node.ParseCandidate(42)
	fmt.Println(err)

	// Output:
	// <nil> node_test full 1 string true true
	// <nil> strconv Itoa 1 string false false
	// <nil> strconv Atoi 1 int false true
	// <nil> node_test customError 1 string false true
	// provided function is not a recognizable constructor
	// provided function is not a recognizable constructor
	// provided constructor is not a function
}

func TestFactoryMethods(t *testing.T) {
	t.Parallel()

	methods := node.FactoryMethods(reflect.TypeFor[account]())
	require.Len(t, methods, 2)

	names := []string{methods[0].Name, methods[1].Name}
	assert.ElementsMatch(t, []string{"account.Blank", "account.Clone"}, names)

	for _, m := range methods {
		assert.Equal(t, node.CandidateFactoryMethod, m.Kind)
		assert.True(t, m.Builds(reflect.TypeFor[account]()))

		if m.Name == "account.Clone" {
			assert.Equal(t, []reflect.Type{reflect.TypeFor[int]()}, m.Params)
			assert.True(t, m.HasErr)

			out, err := m.Call([]reflect.Value{reflect.ValueOf(7)})
			require.NoError(t, err)
			assert.Equal(t, 7, out.Interface().(*account).ID)
		}
	}

	assert.Empty(t, node.FactoryMethods(reflect.TypeFor[fmt.Stringer]()))
}

func TestCandidateCall(t *testing.T) {
	t.Parallel()

	t.Run("panics are recovered", func(t *testing.T) {
		t.Parallel()

		c, err := node.ParseCandidate(func() *account { panic("boom") })
		require.NoError(t, err)

		_, err = c.Call(nil)
		assert.ErrorIs(t, err, node.ErrCandidatePanicked)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("declined", func(t *testing.T) {
		t.Parallel()

		c, err := node.ParseCandidate(func() (*account, bool) { return &account{}, false })
		require.NoError(t, err)

		_, err = c.Call(nil)
		assert.ErrorIs(t, err, node.ErrCandidateDeclined)
	})

	t.Run("returned error", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("no capacity")
		c, err := node.ParseCandidate(func() (*account, error) { return nil, sentinel })
		require.NoError(t, err)

		_, err = c.Call(nil)
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("nil result", func(t *testing.T) {
		t.Parallel()

		c, err := node.ParseCandidate(func() *account { return nil })
		require.NoError(t, err)

		_, err = c.Call(nil)
		assert.ErrorIs(t, err, node.ErrNilResult)
	})

	t.Run("variadic", func(t *testing.T) {
		t.Parallel()

		c, err := node.ParseCandidate(func(ids ...int) *account { return &account{ID: len(ids)} })
		require.NoError(t, err)
		require.True(t, c.Variadic)

		out, err := c.Call([]reflect.Value{reflect.ValueOf([]int{1, 2, 3})})
		require.NoError(t, err)
		assert.Equal(t, 3, out.Interface().(*account).ID)
	})

	t.Run("zero allocation", func(t *testing.T) {
		t.Parallel()

		c := node.ZeroAlloc(reflect.TypeFor[account]())
		out, err := c.Call(nil)
		require.NoError(t, err)
		assert.Equal(t, &account{}, out.Interface())
	})
}

func TestSortCandidates(t *testing.T) {
	t.Parallel()

	parse := func(fn any) node.Candidate {
		c, err := node.ParseCandidate(fn)
		require.NoError(t, err)
		return c
	}

	build := func() []node.Candidate {
		cs := []node.Candidate{
			node.ZeroAlloc(reflect.TypeFor[account]()),
			parse(newOwnedAccount),
			parse(newAccount),
		}
		return append(cs, node.FactoryMethods(reflect.TypeFor[account]())...)
	}

	names := func(cs []node.Candidate) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Name
		}
		return out
	}

	cs := build()
	node.SortCandidates(cs, options.OrderFewestParamsFirst)
	assert.Equal(t,
		[]string{"newAccount", "newOwnedAccount", "account.Clone", "account.Blank", "new(node_test.account)"},
		names(cs))

	cs = build()
	node.SortCandidates(cs, options.OrderMostParamsFirst)
	assert.Equal(t,
		[]string{"newOwnedAccount", "newAccount", "account.Blank", "account.Clone", "new(node_test.account)"},
		names(cs))
}
