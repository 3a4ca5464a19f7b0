// Package provider defines the value policy the manufacturing engine
// consults for scalars, element counts, depth limits and substitutions,
// together with the seeded random default.
package provider

import (
	"fixture-factory/hint"
	"fixture-factory/node"
	"fixture-factory/primitive"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Attribute describes the member a value is requested for. The zero
// Attribute stands for a value that belongs to no member (a root value,
// a container element, a constructor argument).
type Attribute struct {
	Owner  reflect.Type
	Member string
	Hint   hint.Hint
}

// Provider is the value policy of a factory. Implementations must be safe
// for concurrent use when the factory is shared across goroutines.
type Provider interface {
	Bool(a Attribute) bool
	// Int returns a non-zero value that fits kind.
	Int(kind primitive.KindEnum, a Attribute) int64
	// IntInRange returns a value in [lo, hi]; lo == hi yields exactly lo.
	IntInRange(lo, hi int64, a Attribute) int64
	Uint(kind primitive.KindEnum, a Attribute) uint64
	UintInRange(lo, hi uint64, a Attribute) uint64
	Float(kind primitive.KindEnum, a Attribute) float64
	FloatInRange(lo, hi float64, a Attribute) float64
	String(a Attribute) string
	StringOfLength(n int, a Attribute) string
	Rune(a Attribute) rune
	Time(a Attribute) time.Time
	Duration(a Attribute) time.Duration
	UUID(a Attribute) uuid.UUID

	// Index picks one of n enumeration constants.
	Index(n int) int
	// ElementCount is the number of elements a container of elem gets.
	ElementCount(elem reflect.Type) int
	// MaxDepth bounds how many frames of one type may be active below root.
	MaxDepth(root reflect.Type) int
	MemoizationEnabled() bool
	// Substitute names a concrete type for an interface, or nil.
	Substitute(iface reflect.Type) reflect.Type
	// SortCandidates orders construction candidates in place.
	SortCandidates(cs []node.Candidate)
	// ExcludedHintKinds lists hint options whose members are never filled.
	ExcludedHintKinds() map[hint.Kind]struct{}
}
