package fixture_test

import (
	"fixture-factory/fixture"
	"fixture-factory/provider"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotIsReproducible(t *testing.T) {
	t.Parallel()

	first, err := fixture.Snapshot(fixture.MustMake[Person](seeded(nil)))
	require.NoError(t, err)

	second, err := fixture.Snapshot(fixture.MustMake[Person](seeded(nil)))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))

	other, err := fixture.Snapshot(fixture.MustMake[Person](fixture.New(fixture.WithProvider(provider.NewRandom(provider.WithSeed(7))))))
	require.NoError(t, err)
	assert.NotEqual(t, string(first), string(other))
}

func TestSnapshotCanonicalOrder(t *testing.T) {
	t.Parallel()

	out, err := fixture.Snapshot(struct {
		Zeta  float64
		Alpha string
	}{Zeta: 1.50, Alpha: "x"})
	require.NoError(t, err)
	assert.Equal(t, `{"Alpha":"x","Zeta":1.5}`, string(out))

	_, err = fixture.Snapshot(func() {})
	assert.ErrorContains(t, err, "snapshot")
}
