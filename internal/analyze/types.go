package analyze

import (
	"go/types"
	"reflect"
	"slices"

	"fixture-factory/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "fixture-factory/store"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Alias is the name hint files use for the type, e.g. "store.Order".
func (t TypeID) Alias() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return common.PkgAlias(t.PkgPath) + "." + t.Name
}

// TypeKind represents the kind of a type.
type TypeKind int

const (
	TypeKindUnknown   TypeKind = iota
	TypeKindStruct             // struct type
	TypeKindInterface          // interface type, a substitute target
	TypeKindAlias              // named type wrapping a non-struct type
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindStruct:
		return "struct"
	case TypeKindInterface:
		return "interface"
	case TypeKindAlias:
		return "alias"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a named type.
type TypeInfo struct {
	ID      TypeID
	Kind    TypeKind
	Params  []string     // declared by a blank field tagged params=
	Members []MemberInfo // hintable members, structs only
	GoType  types.Type   // the loaded go/types.Type
}

// Member returns the member called name.
func (t *TypeInfo) Member(name string) (MemberInfo, bool) {
	i := slices.IndexFunc(t.Members, func(m MemberInfo) bool { return m.Name == name })
	if i < 0 {
		return MemberInfo{}, false
	}

	return t.Members[i], true
}

// MemberNames returns the member names in declaration order.
func (t *TypeInfo) MemberNames() []string {
	names := make([]string, len(t.Members))
	for i, m := range t.Members {
		names[i] = m.Name
	}

	return names
}

// MemberInfo describes a member a hint may target.
type MemberInfo struct {
	Name     string            // field name, or X for a SetX method
	Type     string            // type as written by go/types
	Tag      reflect.StructTag // raw struct tag, empty for setters
	Setter   bool              // filled through SetX
	Promoted bool              // reached through an embedded struct
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// Lookup finds a type by its hint file alias. Aliases shared by two loaded
// packages resolve to neither.
func (g *TypeGraph) Lookup(alias string) (*TypeInfo, bool) {
	var found *TypeInfo
	for id, info := range g.Types {
		if id.Alias() != alias {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = info
	}

	return found, found != nil
}

// Aliases returns the sorted hint file names of every loaded type.
func (g *TypeGraph) Aliases() []string {
	out := make([]string, 0, len(g.Types))
	for id := range g.Types {
		out = append(out, id.Alias())
	}
	slices.Sort(out)

	return slices.Compact(out)
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Types []TypeID // Named types defined in this package
}
