package postal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/bizmapper/internal/refdata"
)

func newEmbeddedResolver() *Resolver {
	ds := refdata.MustLoad()
	return NewResolver(ds.Prefix3, ds.Prefix2)
}

func TestResolve(t *testing.T) {
	r := newEmbeddedResolver()

	tests := []struct {
		code   string
		want   string
		wantOK bool
	}{
		{"600043", "CLEMENTI", true},
		{"608123", "JURONG EAST", true},
		{"643001", "BOON LAY", true},
		{"545000", "HOUGANG", true},
		{"018956", "DOWNTOWN CORE", true},
		{"18956", "DOWNTOWN CORE", true}, // padded to 018956
		{" 310 145 ", "TOA PAYOH", true},
		{"229000", "RIVER VALLEY", true},
		{"990000", "", false},
		{"", "", false},
		{"NIL", "", false},
		{"nil", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(tt.code)
		assert.Equal(t, tt.wantOK, ok, "code=%q", tt.code)
		assert.Equal(t, tt.want, got, "code=%q", tt.code)
	}
}

func TestResolve_ThreeDigitPrecedence(t *testing.T) {
	ds := refdata.MustLoad()
	r := NewResolver(ds.Prefix3, ds.Prefix2)

	for prefix, want := range ds.Prefix3 {
		got, ok := r.Resolve(prefix + "000")
		assert.True(t, ok, "prefix=%s", prefix)
		assert.Equal(t, want, got, "prefix=%s", prefix)
	}

	// A conflicting 2-digit entry must not win over the 3-digit one.
	r = NewResolver(map[string]string{"600": "CLEMENTI"}, map[string]string{"60": "JURONG EAST"})
	got, ok := r.Resolve("600043")
	assert.True(t, ok)
	assert.Equal(t, "CLEMENTI", got)

	got, ok = r.Resolve("609000")
	assert.True(t, ok)
	assert.Equal(t, "JURONG EAST", got)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "000001", Normalize("1"))
	assert.Equal(t, "600043", Normalize("60 00 43"))
	assert.Equal(t, "", Normalize(" \t"))
	assert.Equal(t, "1234567", Normalize("1234567"))
}

func TestUsable(t *testing.T) {
	assert.True(t, Usable("600043"))
	assert.False(t, Usable(""))
	assert.False(t, Usable(" NIL "))
}
