package analyze

import (
	"fmt"
	"go/types"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"

	"fixture-factory/hint"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedTypes |
	packages.NeedImports

// Analyzer loads Go packages and builds a type graph.
type Analyzer struct {
	// Dir is the directory patterns are resolved in; empty means the
	// current one.
	Dir   string
	graph *TypeGraph
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{graph: NewTypeGraph()}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./store", "fixture-factory/store").
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.Dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// processPackage extracts the named types of a loaded package. Unexported
// types are kept: the factory names them the same way.
func (a *Analyzer) processPackage(pkg *packages.Package) {
	pkgInfo := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || typeName.IsAlias() {
			continue
		}

		named, ok := typeName.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}

		id := TypeID{PkgPath: pkg.PkgPath, Name: name}
		info := analyzeNamed(named)
		info.ID = id

		a.graph.Types[id] = info
		pkgInfo.Types = append(pkgInfo.Types, id)
	}

	a.graph.Packages[pkg.PkgPath] = pkgInfo
}

func analyzeNamed(named *types.Named) *TypeInfo {
	info := &TypeInfo{GoType: named}

	switch ut := named.Underlying().(type) {
	case *types.Struct:
		info.Kind = TypeKindStruct
		info.Params = declaredParams(ut)
		info.Members = structMembers(ut)
		info.Members = append(info.Members, setterMembers(named, info.Members)...)

	case *types.Interface:
		info.Kind = TypeKindInterface

	default:
		info.Kind = TypeKindAlias
	}

	return info
}

// declaredParams reads params= from the blank fields of st.
func declaredParams(st *types.Struct) []string {
	for i := range st.NumFields() {
		if st.Field(i).Name() != "_" {
			continue
		}

		h, err := hint.Parse(reflect.StructTag(st.Tag(i)).Get(hint.TagKey))
		if err == nil && len(h.Params) > 0 {
			return h.Params
		}
	}

	return nil
}

// structMembers lists exported fields, promoted ones included. Like
// reflect.VisibleFields, a shallower field hides a deeper one of the same
// name.
func structMembers(root *types.Struct) []MemberInfo {
	var out []MemberInfo
	seen := map[string]struct{}{}

	type level struct {
		st       *types.Struct
		promoted bool
	}

	current := []level{{st: root}}
	visited := map[*types.Struct]struct{}{root: {}}

	for len(current) > 0 {
		var next []level

		for _, lv := range current {
			for i := range lv.st.NumFields() {
				f := lv.st.Field(i)

				if f.Embedded() {
					if st, ok := embeddedStruct(f.Type()); ok {
						if _, done := visited[st]; !done {
							visited[st] = struct{}{}
							next = append(next, level{st: st, promoted: true})
						}
						// embedded structs are ancestors, not members
						continue
					}
				}

				if !f.Exported() {
					continue
				}
				if _, dup := seen[f.Name()]; dup {
					continue
				}
				seen[f.Name()] = struct{}{}

				out = append(out, MemberInfo{
					Name:     f.Name(),
					Type:     f.Type().String(),
					Tag:      reflect.StructTag(lv.st.Tag(i)),
					Promoted: lv.promoted,
				})
			}
		}

		current = next
	}

	return out
}

func embeddedStruct(t types.Type) (*types.Struct, bool) {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}

	st, ok := t.Underlying().(*types.Struct)

	return st, ok
}

// setterMembers lists X for every SetX method of *T taking one argument
// and returning nothing or an error, unless a field X exists.
func setterMembers(named *types.Named, fields []MemberInfo) []MemberInfo {
	var out []MemberInfo

	ms := types.NewMethodSet(types.NewPointer(named))
	for i := range ms.Len() {
		fn, ok := ms.At(i).Obj().(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}

		name, ok := strings.CutPrefix(fn.Name(), "Set")
		if !ok || name == "" {
			continue
		}

		sig := fn.Type().(*types.Signature)
		if sig.Params().Len() != 1 || sig.Variadic() || !returnsNothingOrError(sig) {
			continue
		}

		if hasMember(fields, name) {
			continue
		}

		out = append(out, MemberInfo{
			Name:   name,
			Type:   sig.Params().At(0).Type().String(),
			Setter: true,
		})
	}

	return out
}

func returnsNothingOrError(sig *types.Signature) bool {
	switch sig.Results().Len() {
	case 0:
		return true
	case 1:
		return types.Identical(sig.Results().At(0).Type(), types.Universe.Lookup("error").Type())
	default:
		return false
	}
}

func hasMember(ms []MemberInfo, name string) bool {
	for _, m := range ms {
		if m.Name == name {
			return true
		}
	}

	return false
}

// GetStruct returns the TypeInfo for a named struct by its package path
// and name.
func (a *Analyzer) GetStruct(pkgPath, typeName string) (*TypeInfo, error) {
	id := TypeID{PkgPath: pkgPath, Name: typeName}
	info := a.graph.GetType(id)
	if info == nil {
		return nil, fmt.Errorf("type %s not found", id)
	}
	if info.Kind != TypeKindStruct {
		return nil, fmt.Errorf("type %s is not a struct (kind: %s)", id, info.Kind)
	}

	return info, nil
}
