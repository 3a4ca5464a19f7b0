package node

import (
	"reflect"
	"strconv"
)

var errorType = reflect.TypeFor[error]()

// TypeStr renders t fully qualified, e.g. "[]*fixture-factory/store.Order".
func TypeStr(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	// fully qualified named types, or builtin string for basics
	switch {
	case t.Name() != "" && t.PkgPath() != "":
		return t.PkgPath() + "." + t.Name()
	case t.Kind() == reflect.Ptr:
		return "*" + TypeStr(t.Elem())
	case t.Kind() == reflect.Slice:
		return "[]" + TypeStr(t.Elem())
	case t.Kind() == reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + TypeStr(t.Elem())
	case t.Kind() == reflect.Map:
		return "map[" + TypeStr(t.Key()) + "]" + TypeStr(t.Elem())
	default:
		return t.String()
	}
}

// Base strips every pointer level off t.
func Base(t reflect.Type) reflect.Type {
	_, b := PtrDepthAndBase(t)
	return b
}

// PtrDepthAndBase returns the pointer depth and the final base type.
func PtrDepthAndBase(t reflect.Type) (depth int, base reflect.Type) {
	depth, base = 0, t
	for base != nil && base.Kind() == reflect.Ptr {
		depth++
		base = base.Elem()
	}

	return
}

// Nilable reports whether values of t can be nil.
func Nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// IsNil is reflect.Value.IsNil that tolerates invalid and non-nilable values.
func IsNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	return Nilable(v.Type()) && v.IsNil()
}

func isError(t reflect.Type) bool {
	if t == nil {
		return false
	}

	return t.Implements(errorType)
}
