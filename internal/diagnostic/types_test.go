package diagnostic_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"fixture-factory/internal/diagnostic"
)

func TestDiagnostics(t *testing.T) {
	t.Parallel()

	var d diagnostic.Diagnostics
	assert.True(t, d.IsValid())
	assert.NoError(t, d.Error())

	d.AddInfo(diagnostic.CodeDelegate, "delegate returned nil", "store.Order", "Order.Parent")
	d.AddWarning(diagnostic.CodeUnsetMember, "no value", "store.Order", "Order.Notes")
	d.AddWarning(diagnostic.CodeUnsetMember, "no value", "store.Order", "Order.Refs")

	assert.Equal(t, 3, d.Len())
	assert.Len(t, d.ByCode(diagnostic.CodeUnsetMember), 2)
	assert.True(t, d.IsValid())

	var other diagnostic.Diagnostics
	other.AddError(diagnostic.CodeUnknownType, "no such type", "", "shapes[0]")
	d.Merge(other)

	assert.True(t, d.HasErrors())
	assert.Equal(t, diagnostic.DiagnosticError, d.All()[0].Severity)
	assert.EqualError(t, d.Error(), "shapes[0]: [unknown-type] no such type")
}

func ExampleDiagnostic_String() {
	d := diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticError,
		Code:        diagnostic.CodeUnknownMember,
		Message:     `member "Totl" not found`,
		Type:        "store.Order",
		Path:        "members.Totl",
		Suggestions: []string{"Total"},
	}

	fmt.Println(d.Severity)
	fmt.Println(d)
	// Output:
	// error
	// [store.Order] members.Totl: [unknown-member] member "Totl" not found (did you mean Total?)
}
