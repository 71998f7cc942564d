// Package demographics serves per-planning-area statistics. Live SingStat
// tables are merged field by field over the embedded census reference.
package demographics

import (
	"strings"

	"github.com/sells-group/bizmapper/internal/model"
	"github.com/sells-group/bizmapper/internal/refdata"
)

// Normalize canonicalizes an area name for lookup.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Reference is the immutable embedded demographics table.
type Reference struct {
	names   []string
	records map[string]model.DemographicRecord
}

// NewReference indexes reference areas, keeping their order.
func NewReference(areas []refdata.Area) *Reference {
	r := &Reference{
		names:   make([]string, 0, len(areas)),
		records: make(map[string]model.DemographicRecord, len(areas)),
	}
	for _, a := range areas {
		name := Normalize(a.Name)
		if _, dup := r.records[name]; dup {
			continue
		}
		r.names = append(r.names, name)
		r.records[name] = a.DemographicRecord
	}
	return r
}

// Lookup returns the record for an area (case-insensitive, trimmed).
func (r *Reference) Lookup(name string) (model.DemographicRecord, bool) {
	rec, ok := r.records[Normalize(name)]
	return rec, ok
}

// Names returns the reference area names in table order.
func (r *Reference) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// LandAreaKm2 returns the derived land area of a reference area.
func (r *Reference) LandAreaKm2(name string) (float64, bool) {
	rec, ok := r.Lookup(name)
	if !ok {
		return 0, false
	}
	return rec.LandAreaKm2()
}

// FuzzyMatch resolves raw to one of names: exact match first, then the first
// name (in order) that contains raw or is contained by it. The substring rule
// is permissive and can pick the wrong area when raw is a fragment of several
// names; the first in order wins.
func FuzzyMatch(names []string, raw string) (string, bool) {
	q := Normalize(raw)
	if q == "" {
		return "", false
	}
	for _, n := range names {
		if n == q {
			return n, true
		}
	}
	for _, n := range names {
		if strings.Contains(n, q) || strings.Contains(q, n) {
			return n, true
		}
	}
	return "", false
}
