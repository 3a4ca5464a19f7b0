package node

import (
	"errors"
	"fixture-factory/options"
	"fixture-factory/utils"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"slices"
	"strings"
)

var (
	ErrIsNotACandidate         = errors.New("provided function is not a recognizable constructor")
	ErrCandidateIsNotAFunction = errors.New("provided constructor is not a function")
	ErrDoublePointer           = errors.New("constructor function does not support double pointers")

	ErrCandidatePanicked = errors.New("constructor panicked")
	ErrCandidateDeclined = errors.New("constructor reported no result")
	ErrNilResult         = errors.New("constructor returned nil")
)

type CandidateKind int

const (
	_ CandidateKind = iota

	CandidateConstructor   // registered function
	CandidateFactoryMethod // exported method on the zero value
	CandidateZeroAlloc     // reflect.New
)

func (k CandidateKind) String() string {
	switch k {
	case CandidateConstructor:
		return "constructor"
	case CandidateFactoryMethod:
		return "factory-method"
	case CandidateZeroAlloc:
		return "zero-alloc"
	default:
		return "unknown"
	}
}

// Candidate is one way of building a value.
type Candidate struct {
	Kind         CandidateKind
	Fn           reflect.Value
	Params       []reflect.Type
	Result       reflect.Type
	PackageAlias string
	Name         string
	Variadic     bool
	HasBool      bool
	HasErr       bool
}

// NumParams is the sort key of candidate ordering.
func (c Candidate) NumParams() int { return len(c.Params) }

func (c Candidate) String() string {
	if c.PackageAlias == "" {
		return c.Name
	}

	return c.PackageAlias + "." + c.Name
}

// Builds reports whether the candidate produces a t or a *t.
func (c Candidate) Builds(t reflect.Type) bool {
	if c.Result == t {
		return true
	}

	return c.Result.Kind() == reflect.Ptr && c.Result.Elem() == t
}

// ParseCandidate inspects the provided function and returns a Candidate if
// it is a valid constructor.
//
// Supports signatures:
//   - func(args...) (dst Type)
//   - func(args...) (dst Type, bool)
//   - func(args...) (dst Type, error)
//   - func(args...) (dst Type, bool, error)
func ParseCandidate(fn any) (Candidate, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func {
		return Candidate{}, ErrCandidateIsNotAFunction
	}

	fnPC := runtime.FuncForPC(fnVal.Pointer())
	alias, name := "", "func"
	if fnPC != nil {
		alias, name = utils.Unpack2(strings.SplitN(fnPC.Name(), ".", 2))
		alias = utils.Second(path.Split(alias))
	}

	c, err := parseFunc(fnVal)
	if err != nil {
		return Candidate{}, err
	}

	c.Kind = CandidateConstructor
	c.PackageAlias = alias
	c.Name = name

	return c, nil
}

func parseFunc(fnVal reflect.Value) (Candidate, error) {
	fnType := fnVal.Type()
	if fnType.NumOut() == 0 {
		return Candidate{}, ErrIsNotACandidate
	}

	dst := fnType.Out(0)
	if dst.Kind() == reflect.Ptr && dst.Elem().Kind() == reflect.Ptr {
		return Candidate{}, ErrDoublePointer
	}
	if isError(dst) && dst.Kind() == reflect.Interface {
		return Candidate{}, ErrIsNotACandidate
	}

	c := Candidate{
		Fn:       fnVal,
		Result:   dst,
		Variadic: fnType.IsVariadic(),
		Params:   make([]reflect.Type, fnType.NumIn()),
	}
	for i := range c.Params {
		c.Params[i] = fnType.In(i)
	}

	switch fnType.NumOut() {
	default:
		return Candidate{}, ErrIsNotACandidate

	case 1:
		return c, nil

	case 2:
		last := fnType.Out(1)

		switch {
		default:
			return Candidate{}, ErrIsNotACandidate
		case last.Kind() == reflect.Bool:
			c.HasBool = true
		case isError(last):
			c.HasErr = true
		}
		return c, nil

	case 3:
		tbool, terr := fnType.Out(1), fnType.Out(2)
		if tbool.Kind() != reflect.Bool || !isError(terr) {
			return Candidate{}, ErrIsNotACandidate
		}

		c.HasBool = true
		c.HasErr = true
		return c, nil
	}
}

// FactoryMethods lists exported methods of a zero t (through *t) whose first
// result is t or *t.
func FactoryMethods(t reflect.Type) []Candidate {
	if t.Kind() == reflect.Interface || t.Kind() == reflect.Ptr {
		return nil
	}

	zero := reflect.New(t)
	pt := zero.Type()
	alias := utils.Second(path.Split(t.PkgPath()))

	var out []Candidate
	for i := range pt.NumMethod() {
		m := pt.Method(i)
		if !m.IsExported() {
			continue
		}

		c, err := parseFunc(zero.Method(i))
		if err != nil || !c.Builds(t) {
			continue
		}

		c.Kind = CandidateFactoryMethod
		c.PackageAlias = alias
		c.Name = t.Name() + "." + m.Name
		out = append(out, c)
	}

	return out
}

// ZeroAlloc is the candidate that allocates a zero t.
func ZeroAlloc(t reflect.Type) Candidate {
	return Candidate{
		Kind:   CandidateZeroAlloc,
		Result: reflect.PointerTo(t),
		Name:   "new(" + t.String() + ")",
	}
}

// Call invokes the candidate. Panics, a false ok result, a non-nil error and
// a nil first result are all reported as errors.
func (c Candidate) Call(args []reflect.Value) (out reflect.Value, err error) {
	if c.Kind == CandidateZeroAlloc {
		return reflect.New(c.Result.Elem()), nil
	}

	defer func() {
		if r := recover(); r != nil {
			out = reflect.Value{}
			err = fmt.Errorf("%w: %s: %v", ErrCandidatePanicked, c, r)
		}
	}()

	var res []reflect.Value
	if c.Variadic {
		res = c.Fn.CallSlice(args)
	} else {
		res = c.Fn.Call(args)
	}

	idx := 1
	if c.HasBool {
		if !res[idx].Bool() {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrCandidateDeclined, c)
		}
		idx++
	}

	if c.HasErr && !IsNil(res[idx]) {
		return reflect.Value{}, fmt.Errorf("%s: %w", c, res[idx].Interface().(error))
	}

	if IsNil(res[0]) {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNilResult, c)
	}

	return res[0], nil
}

// SortCandidates orders candidates in place. Constructors follow order,
// factory methods follow the reverse order and zero allocation goes last.
// Ties keep registration order.
func SortCandidates(cs []Candidate, order options.OrderEnum) {
	slices.SortStableFunc(cs, func(a, b Candidate) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}

		o := order
		if a.Kind == CandidateFactoryMethod {
			o = o.Reverse()
		}

		if o == options.OrderMostParamsFirst {
			return b.NumParams() - a.NumParams()
		}

		return a.NumParams() - b.NumParams()
	})
}
