// Package hint parses per-member manufacturing hints.
//
// Hints live in the `fixture` struct tag as semicolon separated options:
//
//	Name  string         `fixture:"len=12"`
//	Age   int            `fixture:"min=18;max=99"`
//	Tags  []string       `fixture:"count=3;elems=word"`
//	Items any            `fixture:"type=[]T"`
//	_     struct{}       `fixture:"params=T"`
//	Cache map[string]int `fixture:"-"`
//
// Keys that are not part of the vocabulary are kept as markers, so callers
// can exclude members carrying them.
package hint

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// TagKey is the struct tag key hints are read from.
const TagKey = "fixture"

// Kind names one hint option.
type Kind string

const (
	KindSkip     Kind = "-"
	KindType     Kind = "type"
	KindParams   Kind = "params"
	KindArgs     Kind = "args"
	KindValue    Kind = "value"
	KindMin      Kind = "min"
	KindMax      Kind = "max"
	KindLen      Kind = "len"
	KindCount    Kind = "count"
	KindStrategy Kind = "strategy"
	KindElems    Kind = "elems"
	KindKeys     Kind = "keys"
	KindValues   Kind = "values"
)

var known = map[Kind]struct{}{
	KindType: {}, KindParams: {}, KindArgs: {}, KindValue: {}, KindMin: {}, KindMax: {},
	KindLen: {}, KindCount: {}, KindStrategy: {}, KindElems: {}, KindKeys: {}, KindValues: {},
}

// Hint is the parsed set of options attached to one member.
type Hint struct {
	Skip bool

	Type   string   // logical type expression
	Params []string // type parameters declared by a shape
	Args   string   // type arguments of an embedded ancestor

	Value *string
	Min   *string
	Max   *string
	Len   *int
	Count *int

	Strategy string
	Elems    string
	Keys     string
	Values   string

	// Markers holds options outside the vocabulary, by key.
	Markers map[Kind]string
}

// Parse parses a raw tag value.
func Parse(tag string) (Hint, error) {
	var h Hint

	tag = strings.TrimSpace(tag)
	if tag == "" {
		return h, nil
	}
	if tag == string(KindSkip) {
		h.Skip = true
		return h, nil
	}

	seen := make(map[Kind]struct{})
	for _, opt := range strings.Split(tag, ";") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}

		key, val, hasVal := strings.Cut(opt, "=")
		kind := Kind(strings.TrimSpace(key))
		val = strings.TrimSpace(val)

		if kind == "" {
			return Hint{}, &ValueError{Kind: kind, Literal: opt, Err: ErrMalformedTag}
		}
		if _, dup := seen[kind]; dup {
			return Hint{}, &ValueError{Kind: kind, Literal: opt, Err: ErrDuplicateOption}
		}
		seen[kind] = struct{}{}

		if _, ok := known[kind]; ok && !hasVal {
			return Hint{}, &ValueError{Kind: kind, Literal: opt, Err: ErrMissingValue}
		}

		if err := h.set(kind, val); err != nil {
			return Hint{}, err
		}
	}

	return h, nil
}

func (h *Hint) set(kind Kind, val string) error {
	switch kind {
	case KindSkip:
		h.Skip = true
	case KindType:
		h.Type = val
	case KindParams:
		for _, p := range strings.Split(val, ",") {
			if p = strings.TrimSpace(p); p != "" {
				h.Params = append(h.Params, p)
			}
		}
	case KindArgs:
		h.Args = val
	case KindValue:
		h.Value = &val
	case KindMin:
		h.Min = &val
	case KindMax:
		h.Max = &val
	case KindLen, KindCount:
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return &ValueError{Kind: kind, Literal: val, Err: ErrNotACount}
		}
		if kind == KindLen {
			h.Len = &n
		} else {
			h.Count = &n
		}
	case KindStrategy:
		h.Strategy = val
	case KindElems:
		h.Elems = val
	case KindKeys:
		h.Keys = val
	case KindValues:
		h.Values = val
	default:
		if h.Markers == nil {
			h.Markers = make(map[Kind]string)
		}
		h.Markers[kind] = val
	}

	return nil
}

// FromField reads the hint of a struct field.
func FromField(f reflect.StructField) (Hint, error) {
	tag, ok := f.Tag.Lookup(TagKey)
	if !ok {
		return Hint{}, nil
	}

	h, err := Parse(tag)
	if err != nil {
		return Hint{}, fmt.Errorf("field %s: %w", f.Name, err)
	}

	return h, nil
}

// Kinds lists the options present in h.
func (h Hint) Kinds() []Kind {
	var out []Kind

	add := func(present bool, k Kind) {
		if present {
			out = append(out, k)
		}
	}

	add(h.Skip, KindSkip)
	add(h.Type != "", KindType)
	add(len(h.Params) > 0, KindParams)
	add(h.Args != "", KindArgs)
	add(h.Value != nil, KindValue)
	add(h.Min != nil, KindMin)
	add(h.Max != nil, KindMax)
	add(h.Len != nil, KindLen)
	add(h.Count != nil, KindCount)
	add(h.Strategy != "", KindStrategy)
	add(h.Elems != "", KindElems)
	add(h.Keys != "", KindKeys)
	add(h.Values != "", KindValues)

	return append(out, slices.Sorted(maps.Keys(h.Markers))...)
}

// Has reports whether h carries option k.
func (h Hint) Has(k Kind) bool {
	return slices.Contains(h.Kinds(), k)
}

// HasAny reports whether h carries any option from set.
func (h Hint) HasAny(set map[Kind]struct{}) bool {
	if len(set) == 0 {
		return false
	}

	for _, k := range h.Kinds() {
		if _, ok := set[k]; ok {
			return true
		}
	}

	return false
}

// IsZero reports whether h carries no option at all.
func (h Hint) IsZero() bool {
	return len(h.Kinds()) == 0
}

// Merge returns h with every option present in over replacing its own.
func (h Hint) Merge(over Hint) Hint {
	out := h

	if over.Skip {
		out.Skip = true
	}
	if over.Type != "" {
		out.Type = over.Type
	}
	if len(over.Params) > 0 {
		out.Params = slices.Clone(over.Params)
	}
	if over.Args != "" {
		out.Args = over.Args
	}
	if over.Value != nil {
		out.Value = over.Value
	}
	if over.Min != nil {
		out.Min = over.Min
	}
	if over.Max != nil {
		out.Max = over.Max
	}
	if over.Len != nil {
		out.Len = over.Len
	}
	if over.Count != nil {
		out.Count = over.Count
	}
	if over.Strategy != "" {
		out.Strategy = over.Strategy
	}
	if over.Elems != "" {
		out.Elems = over.Elems
	}
	if over.Keys != "" {
		out.Keys = over.Keys
	}
	if over.Values != "" {
		out.Values = over.Values
	}
	if len(over.Markers) > 0 {
		out.Markers = maps.Clone(h.Markers)
		if out.Markers == nil {
			out.Markers = make(map[Kind]string, len(over.Markers))
		}
		maps.Copy(out.Markers, over.Markers)
	}

	return out
}
