package sidecar

import (
	"fixture-factory/hint"
	"fixture-factory/internal/common"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the root of a hint file.
type File struct {
	Version     string            `yaml:"version"`
	Shapes      []Shape           `yaml:"shapes"`
	Substitutes map[string]string `yaml:"substitutes,omitempty"`
}

// Shape carries the hints of one type.
type Shape struct {
	// Type is the registered name of the shape, e.g. "store.Order".
	Type string `yaml:"type"`
	// Params declares logical type parameters of an erased generic shape.
	Params StringOrArray `yaml:"params,omitempty"`
	// Members maps member names to their hints.
	Members map[string]Member `yaml:"members,omitempty"`
}

// Member mirrors the struct tag vocabulary.
type Member struct {
	Skip     bool          `yaml:"skip,omitempty"`
	Type     string        `yaml:"type,omitempty"`
	Args     string        `yaml:"args,omitempty"`
	Value    *string       `yaml:"value,omitempty"`
	Min      *string       `yaml:"min,omitempty"`
	Max      *string       `yaml:"max,omitempty"`
	Len      *int          `yaml:"len,omitempty"`
	Count    *int          `yaml:"count,omitempty"`
	Strategy string        `yaml:"strategy,omitempty"`
	Elems    string        `yaml:"elems,omitempty"`
	Keys     string        `yaml:"keys,omitempty"`
	Values   string        `yaml:"values,omitempty"`
	Markers  StringOrArray `yaml:"markers,omitempty"`
}

// StringOrArray accepts either a single string or a list of strings.
// A single string may hold a comma separated list.
type StringOrArray []string

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		*s = StringOrArray{}
		for _, part := range strings.Split(str, ",") {
			if part = strings.TrimSpace(part); part != "" {
				*s = append(*s, part)
			}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if common.IsSingle(s) {
		return s[0], nil
	}

	return []string(s), nil
}

// Hint converts the member entry into the tag representation.
func (m Member) Hint() hint.Hint {
	h := hint.Hint{
		Skip:     m.Skip,
		Type:     m.Type,
		Args:     m.Args,
		Value:    m.Value,
		Min:      m.Min,
		Max:      m.Max,
		Len:      m.Len,
		Count:    m.Count,
		Strategy: m.Strategy,
		Elems:    m.Elems,
		Keys:     m.Keys,
		Values:   m.Values,
	}

	if !common.IsEmpty(m.Markers) {
		h.Markers = make(map[hint.Kind]string, len(m.Markers))
		for _, k := range m.Markers {
			h.Markers[hint.Kind(k)] = ""
		}
	}

	return h
}

// MemberNames returns the member names of the shape in sorted order.
func (s Shape) MemberNames() []string {
	names := make([]string, 0, len(s.Members))
	for name := range s.Members {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Lookup resolves a type name to its runtime type.
type Lookup func(name string) (reflect.Type, bool)

// ShapeFor returns the shape whose type name resolves to t.
func (f *File) ShapeFor(t reflect.Type, lookup Lookup) (Shape, bool) {
	if f == nil {
		return Shape{}, false
	}

	for _, s := range f.Shapes {
		if rt, ok := lookup(s.Type); ok && rt == t {
			return s, true
		}
	}

	return Shape{}, false
}
