package node

import (
	"container/list"
	"fixture-factory/primitive"
	"reflect"
	"sync"
)

var (
	listType    = reflect.TypeFor[list.List]()
	syncMapType = reflect.TypeFor[sync.Map]()
	unitType    = reflect.TypeFor[struct{}]()
)

// Dispatch classifies a pointer-stripped type into the branch that
// manufactures it.
func Dispatch(t reflect.Type) DispatcherEnum {
	if t.Kind() == reflect.Ptr {
		panic("dispatcher is not allowing pointer reflect types")
	}

	switch t {
	case listType:
		return DispatcherList
	case syncMapType:
		return DispatcherSyncMap
	}

	switch k := primitive.FromReflectType(t); {
	case k == primitive.KindPrimitiveEnum:
		return DispatcherEnumeration
	case k != 0:
		return DispatcherScalar
	}

	switch t.Kind() {
	case reflect.Interface:
		return DispatcherInterface
	case reflect.Slice:
		return DispatcherSlice
	case reflect.Array:
		return DispatcherArray
	case reflect.Map:
		if t.Elem() == unitType {
			return DispatcherSet
		}
		return DispatcherMap
	case reflect.Chan:
		return DispatcherChan
	case reflect.Struct:
		if _, ok := LookupContainer(t); ok {
			return DispatcherMethodContainer
		}
		return DispatcherStruct
	}

	return DispatcherUnknown
}

// Container describes a struct that is filled through its own methods:
// Add(E) or PushBack(E) for sequences, Put(K, V) or Set(K, V) for maps,
// both paired with Len() int.
type Container struct {
	Insert string
	Args   []reflect.Type
}

// IsMap reports whether the container stores key/value entries.
func (c Container) IsMap() bool { return len(c.Args) == 2 }

var containerInserts = [...]struct {
	name  string
	arity int
}{
	{"Add", 1},
	{"PushBack", 1},
	{"Put", 2},
	{"Set", 2},
}

// LookupContainer inspects the method set of *t for a container protocol.
func LookupContainer(t reflect.Type) (Container, bool) {
	pt := t
	if pt.Kind() != reflect.Ptr {
		pt = reflect.PointerTo(t)
	}

	length, ok := pt.MethodByName("Len")
	if !ok || length.Type.NumIn() != 1 || length.Type.NumOut() != 1 || length.Type.Out(0).Kind() != reflect.Int {
		return Container{}, false
	}

	for _, ins := range containerInserts {
		m, ok := pt.MethodByName(ins.name)
		// the receiver is the first input of a method type
		if !ok || m.Type.NumIn() != ins.arity+1 || m.Type.IsVariadic() {
			continue
		}

		args := make([]reflect.Type, ins.arity)
		for i := range args {
			args[i] = m.Type.In(i + 1)
		}

		return Container{Insert: ins.name, Args: args}, true
	}

	return Container{}, false
}
