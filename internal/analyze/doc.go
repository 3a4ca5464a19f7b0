// Package analyze loads Go packages and checks hint files against their
// source without running any code.
//
// It uses golang.org/x/tools/go/packages with go/types to build a catalog
// of the named types a hint file may target.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: kind, declared type parameters and hintable members
//   - MemberInfo: exported field or SetX setter of a struct
package analyze
