// Package centroid finds the planning area whose centroid is nearest to a point.
// It is the offline fallback of the resolution pipeline and never fails.
package centroid

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/bizmapper/internal/model"
	"github.com/sells-group/bizmapper/internal/refdata"
)

type entry struct {
	name  string
	point *geom.Point
}

// Index is an immutable, ordered table of area centroids.
type Index struct {
	entries []entry
	byName  map[string]int
}

// NewIndex builds an Index from reference areas, keeping their order.
func NewIndex(areas []refdata.Area) (*Index, error) {
	if len(areas) == 0 {
		return nil, eris.New("centroid: empty centroid table")
	}
	idx := &Index{
		entries: make([]entry, 0, len(areas)),
		byName:  make(map[string]int, len(areas)),
	}
	for _, a := range areas {
		p := a.Point()
		// XY layout: X is longitude, Y is latitude.
		pt := geom.NewPointFlat(geom.XY, []float64{p.Lng, p.Lat}).SetSRID(4326)
		idx.byName[a.Name] = len(idx.entries)
		idx.entries = append(idx.entries, entry{name: a.Name, point: pt})
	}
	return idx, nil
}

// Nearest returns the area with the smallest Euclidean distance in degrees.
// Ties keep the first entry in table order.
func (idx *Index) Nearest(p model.GeoPoint) string {
	best := ""
	bestDist := math.Inf(1)
	for _, e := range idx.entries {
		c := e.point.Coords()
		d := math.Hypot(p.Lng-c.X(), p.Lat-c.Y())
		if d < bestDist {
			best, bestDist = e.name, d
		}
	}
	return best
}

// Centroid returns the centroid of a known area (case-insensitive).
func (idx *Index) Centroid(name string) (model.GeoPoint, bool) {
	i, ok := idx.byName[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return model.GeoPoint{}, false
	}
	c := idx.entries[i].point.Coords()
	return model.GeoPoint{Lat: c.Y(), Lng: c.X()}, true
}

// Len returns the number of indexed areas.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// FeatureCollection exports the centroids as GeoJSON points for map overlays.
func (idx *Index) FeatureCollection() *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(idx.entries))}
	for _, e := range idx.entries {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         e.name,
			Geometry:   e.point,
			Properties: map[string]any{"name": e.name},
		})
	}
	return fc
}
