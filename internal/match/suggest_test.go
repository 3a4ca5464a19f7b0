package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	t.Parallel()

	pool := []string{"Total", "TotalCents", "Items", "CreatedAt", "Status"}

	tests := []struct {
		name string
		want []string
	}{
		{"Totl", []string{"Total"}},
		{"item", []string{"Items"}},
		{"created_at", []string{"CreatedAt"}},
		{"Zzz", []string{}},
		{"Status", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Suggest(tt.name, pool, 1))
		})
	}
}

func TestSuggestIsDeterministic(t *testing.T) {
	t.Parallel()

	pool := []string{"Order", "Ordre", "Orders"}
	first := Suggest("Ordr", pool, 3)

	for range 20 {
		assert.Equal(t, first, Suggest("Ordr", pool, 3))
	}
	assert.LessOrEqual(t, len(first), 3)
}
