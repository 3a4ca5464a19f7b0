package sidecar

import (
	"fixture-factory/hint"
	"fixture-factory/internal/diagnostic"
	"fixture-factory/internal/match"
	"fixture-factory/typeexpr"
	"fmt"
	"reflect"
	"strings"
)

// CurrentVersion is the only hint file version understood.
const CurrentVersion = "1"

const maxSuggestions = 3

// Validate checks a hint file against a type registry. Unknown type and
// member names are errors carrying "did you mean" suggestions. A nil
// registry knows the builtin names only.
func Validate(f *File, reg *typeexpr.Registry) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if reg == nil {
		reg = typeexpr.NewRegistry()
	}
	if f == nil {
		res.AddError(diagnostic.CodeInvalidHint, "hint file is nil", "", "")
		return res
	}

	if f.Version != CurrentVersion {
		res.AddError(diagnostic.CodeInvalidHint,
			fmt.Sprintf("unsupported version %q, expected %q", f.Version, CurrentVersion), "", "version")
	}

	seen := make(map[string]struct{}, len(f.Shapes))
	for i, s := range f.Shapes {
		path := fmt.Sprintf("shapes[%d]", i)

		if s.Type == "" {
			res.AddError(diagnostic.CodeInvalidHint, "shape without type", "", path)
			continue
		}

		if _, dup := seen[s.Type]; dup {
			res.AddError(diagnostic.CodeInvalidHint, fmt.Sprintf("duplicate shape %q", s.Type), s.Type, path)
			continue
		}
		seen[s.Type] = struct{}{}

		t, ok := lookupType(res, reg, s.Type, path)
		if !ok {
			continue
		}

		validateShape(res, reg, s, t)
	}

	for iface, concrete := range f.Substitutes {
		path := "substitutes." + iface

		it, iok := lookupType(res, reg, iface, path)
		ct, cok := lookupType(res, reg, concrete, path)
		if !iok || !cok {
			continue
		}

		if it.Kind() != reflect.Interface {
			res.AddError(diagnostic.CodeInvalidHint, fmt.Sprintf("%s is not an interface", iface), iface, path)
			continue
		}

		if !ct.Implements(it) && !reflect.PointerTo(ct).Implements(it) {
			res.AddError(diagnostic.CodeInvalidHint,
				fmt.Sprintf("%s does not implement %s", concrete, iface), iface, path)
		}
	}

	return res
}

func lookupType(res *diagnostic.Diagnostics, reg *typeexpr.Registry, name, path string) (reflect.Type, bool) {
	t, ok := reg.LookupType(name)
	if ok {
		return t, true
	}

	res.Errors = append(res.Errors, diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticError,
		Code:        diagnostic.CodeUnknownType,
		Message:     fmt.Sprintf("type %q is not registered", name),
		Type:        name,
		Path:        path,
		Suggestions: match.Suggest(name, reg.Names(), maxSuggestions),
	})

	return nil, false
}

func validateShape(res *diagnostic.Diagnostics, reg *typeexpr.Registry, s Shape, t reflect.Type) {
	members := MemberNamesOf(t)
	scope := typeexpr.WithParams(reg, s.Params)

	for _, name := range s.MemberNames() {
		m := s.Members[name]
		path := s.Type + "." + name

		if _, ok := members[name]; !ok {
			pool := make([]string, 0, len(members))
			for known := range members {
				pool = append(pool, known)
			}

			res.Errors = append(res.Errors, diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticError,
				Code:        diagnostic.CodeUnknownMember,
				Message:     fmt.Sprintf("member %q not found", name),
				Type:        s.Type,
				Path:        path,
				Suggestions: match.Suggest(name, pool, maxSuggestions),
			})

			continue
		}

		if m.Type != "" {
			if _, err := typeexpr.Parse(m.Type, scope); err != nil {
				res.AddError(diagnostic.CodeInvalidHint, err.Error(), s.Type, path)
			}
		}

		if m.Args != "" {
			if _, err := typeexpr.ParseList(m.Args, scope); err != nil {
				res.AddError(diagnostic.CodeInvalidHint, err.Error(), s.Type, path)
			}
		}

		h := m.Hint()
		if (h.Len != nil && *h.Len < 0) || (h.Count != nil && *h.Count < 0) {
			res.AddError(diagnostic.CodeInvalidHint, hint.ErrNotACount.Error(), s.Type, path)
		}

		if h.Skip && len(h.Kinds()) > 1 {
			res.AddWarning(diagnostic.CodeInvalidHint, "skipped member carries other hints", s.Type, path)
		}
	}
}

// MemberNamesOf lists the names a hint may target on t: exported fields,
// promoted ones included, and the X of every SetX method on *t.
func MemberNamesOf(t reflect.Type) map[string]struct{} {
	names := make(map[string]struct{})

	if t.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(t) {
			if f.IsExported() {
				names[f.Name] = struct{}{}
			}
		}
	}

	pt := reflect.PointerTo(t)
	for i := range pt.NumMethod() {
		m := pt.Method(i)
		if x, ok := strings.CutPrefix(m.Name, "Set"); ok && x != "" && m.Type.NumIn() == 2 {
			names[x] = struct{}{}
		}
	}

	return names
}
