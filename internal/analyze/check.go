package analyze

import (
	"fmt"
	"go/types"
	"reflect"

	"fixture-factory/internal/diagnostic"
	"fixture-factory/internal/match"
	"fixture-factory/internal/sidecar"
	"fixture-factory/typeexpr"
)

const maxSuggestions = 3

// scope resolves names in type hints against the graph. Loaded types have
// no runtime counterpart here, so they stand for any.
type scope struct {
	g        *TypeGraph
	builtins *typeexpr.Registry
}

func (s scope) IsParam(string) bool { return false }

func (s scope) LookupType(name string) (reflect.Type, bool) {
	if t, ok := s.builtins.LookupType(name); ok {
		return t, true
	}
	if _, ok := s.g.Lookup(name); ok {
		return typeexpr.AnyType, true
	}

	return nil, false
}

// Check validates the names a hint file refers to against the loaded
// packages: shape types, members, type hints and substitutes. Structural
// problems are left to sidecar.Validate.
func Check(f *sidecar.File, g *TypeGraph) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError(diagnostic.CodeInvalidHint, "hint file is nil", "", "")
		return res
	}

	sc := scope{g: g, builtins: typeexpr.NewRegistry()}

	for i, s := range f.Shapes {
		if s.Type == "" {
			continue
		}

		info, ok := lookup(res, g, s.Type, fmt.Sprintf("shapes[%d]", i))
		if !ok {
			continue
		}

		if info.Kind != TypeKindStruct {
			res.AddError(diagnostic.CodeInvalidHint,
				fmt.Sprintf("%s is a %s, not a struct", s.Type, info.Kind), s.Type, fmt.Sprintf("shapes[%d]", i))
			continue
		}

		checkShape(res, sc, s, info)
	}

	for iface, concrete := range f.Substitutes {
		checkSubstitute(res, g, iface, concrete)
	}

	return res
}

func lookup(res *diagnostic.Diagnostics, g *TypeGraph, name, path string) (*TypeInfo, bool) {
	if info, ok := g.Lookup(name); ok {
		return info, true
	}

	res.Errors = append(res.Errors, diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticError,
		Code:        diagnostic.CodeUnknownType,
		Message:     fmt.Sprintf("type %q not found in the loaded packages", name),
		Type:        name,
		Path:        path,
		Suggestions: match.Suggest(name, g.Aliases(), maxSuggestions),
	})

	return nil, false
}

func checkShape(res *diagnostic.Diagnostics, sc scope, s sidecar.Shape, info *TypeInfo) {
	params := []string(s.Params)
	if len(params) == 0 {
		params = info.Params
	} else if len(info.Params) > 0 && len(info.Params) != len(params) {
		res.AddWarning(diagnostic.CodeInvalidHint,
			fmt.Sprintf("hint file declares %d type parameters, the source declares %d", len(params), len(info.Params)),
			s.Type, s.Type)
	}

	ps := typeexpr.WithParams(sc, params)

	for _, name := range s.MemberNames() {
		path := s.Type + "." + name

		m, ok := info.Member(name)
		if !ok {
			res.Errors = append(res.Errors, diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticError,
				Code:        diagnostic.CodeUnknownMember,
				Message:     fmt.Sprintf("member %q not found", name),
				Type:        s.Type,
				Path:        path,
				Suggestions: match.Suggest(name, info.MemberNames(), maxSuggestions),
			})

			continue
		}

		hm := s.Members[name]
		if hm.Type != "" {
			if _, err := typeexpr.Parse(hm.Type, ps); err != nil {
				res.AddError(diagnostic.CodeInvalidHint, err.Error(), s.Type, path)
			}
		}

		if m.Promoted && hm.Hint().IsZero() {
			res.AddInfo(diagnostic.CodeInvalidHint, "empty hint on a promoted member", s.Type, path)
		}
	}
}

func checkSubstitute(res *diagnostic.Diagnostics, g *TypeGraph, iface, concrete string) {
	path := "substitutes." + iface

	it, iok := lookup(res, g, iface, path)
	ct, cok := lookup(res, g, concrete, path)
	if !iok || !cok {
		return
	}

	ii, ok := it.GoType.Underlying().(*types.Interface)
	if !ok {
		res.AddError(diagnostic.CodeInvalidHint, fmt.Sprintf("%s is not an interface", iface), iface, path)
		return
	}

	if !types.Implements(ct.GoType, ii) && !types.Implements(types.NewPointer(ct.GoType), ii) {
		res.AddError(diagnostic.CodeInvalidHint,
			fmt.Sprintf("%s does not implement %s", concrete, iface), iface, path)
	}
}
