package demographics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bizmapper/internal/refdata"
)

func testReference(t *testing.T) *Reference {
	t.Helper()
	ds, err := refdata.Load()
	require.NoError(t, err)
	return NewReference(ds.Areas)
}

func TestReferenceLookup(t *testing.T) {
	ref := testReference(t)

	rec, ok := ref.Lookup("  bishan ")
	require.True(t, ok)
	assert.Equal(t, 90700, rec.Population)
	assert.Equal(t, 11300, rec.Density)

	_, ok = ref.Lookup("ATLANTIS")
	assert.False(t, ok)

	names := ref.Names()
	assert.Equal(t, "ANG MO KIO", names[0])
	names[0] = "MUTATED"
	assert.Equal(t, "ANG MO KIO", ref.Names()[0])
}

func TestReferenceShares(t *testing.T) {
	ref := testReference(t)
	for _, name := range ref.Names() {
		rec, _ := ref.Lookup(name)
		assert.InDelta(t, 100, rec.Dwellings.Total(), 2, "%s dwellings", name)
		assert.InDelta(t, 100, rec.AgeGroups.Total(), 2, "%s age groups", name)
	}
}

func TestReferenceLandArea(t *testing.T) {
	ref := testReference(t)
	km2, ok := ref.LandAreaKm2("BISHAN")
	require.True(t, ok)
	assert.InDelta(t, 8.0265, km2, 0.001)

	_, ok = ref.LandAreaKm2("ATLANTIS")
	assert.False(t, ok)
}

func TestFuzzyMatch(t *testing.T) {
	names := testReference(t).Names()

	tests := []struct {
		name  string
		raw   string
		want  string
		found bool
	}{
		{"exact upper", "TAMPINES", "TAMPINES", true},
		{"exact mixed case", "Tampines", "TAMPINES", true},
		{"padded", "  clementi  ", "CLEMENTI", true},
		{"input contains name", "Toa Payoh Central", "TOA PAYOH", true},
		{"name contains input", "Payoh", "TOA PAYOH", true},
		{"first in order wins", "Bukit", "BUKIT BATOK", true},
		{"river prefers table order", "River", "RIVER VALLEY", true},
		{"empty", "", "", false},
		{"blank", "   ", "", false},
		{"unknown", "Atlantis", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FuzzyMatch(names, tt.raw)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
