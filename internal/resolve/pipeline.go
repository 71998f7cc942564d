// Package resolve turns a map coordinate or a free-text query into a planning
// area with demographics, degrading from the live geocoder to the offline
// centroid table.
package resolve

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bizmapper/internal/centroid"
	"github.com/sells-group/bizmapper/internal/demographics"
	"github.com/sells-group/bizmapper/internal/model"
	"github.com/sells-group/bizmapper/internal/observability"
)

// Default reverse-geocode buffers in metres.
const (
	DefaultNarrowRadiusM = 300
	DefaultWideRadiusM   = 500
)

// ErrInvalidPoint is returned for coordinates outside WGS-84 bounds.
var ErrInvalidPoint = eris.New("resolve: invalid coordinate")

// Demographics is the area knowledge the pipeline needs.
type Demographics interface {
	Get(ctx context.Context, area string) (demographics.Lookup, bool)
	FuzzyMatch(raw string) (string, bool)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRadii overrides the narrow and wide reverse-geocode buffers.
func WithRadii(narrowM, wideM int) Option {
	return func(p *Pipeline) {
		if narrowM > 0 {
			p.narrowM = narrowM
		}
		if wideM > 0 {
			p.wideM = wideM
		}
	}
}

// WithMetrics records resolution outcomes.
func WithMetrics(m *observability.Collector) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// Pipeline resolves interactions. It holds no per-interaction state and is
// safe for concurrent use.
type Pipeline struct {
	geo       *Geocoder
	demo      Demographics
	centroids *centroid.Index
	narrowM   int
	wideM     int
	metrics   *observability.Collector
}

// New creates a Pipeline.
func New(geo *Geocoder, demo Demographics, centroids *centroid.Index, opts ...Option) *Pipeline {
	p := &Pipeline{
		geo:       geo,
		demo:      demo,
		centroids: centroids,
		narrowM:   DefaultNarrowRadiusM,
		wideM:     DefaultWideRadiusM,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ResolvePoint resolves a coordinate to an area and its demographics.
//
// The geocoder is tried at the narrow radius, then once more at the wide
// radius when it answered without a known area. If neither yields an area the
// nearest centroid names it. Provenance is remote whenever the geocoder
// answered, and offline-estimate when a call to it failed.
func (p *Pipeline) ResolvePoint(ctx context.Context, pt model.GeoPoint) (*model.ResolutionResult, error) {
	start := time.Now()
	if !pt.Valid() {
		return nil, eris.Wrapf(ErrInvalidPoint, "%v,%v", pt.Lat, pt.Lng)
	}

	ctx, id := ensureInteractionID(ctx)
	log := zap.L().With(
		zap.String("interaction_id", id),
		zap.Float64("lat", pt.Lat),
		zap.Float64("lng", pt.Lng),
	)

	res := &model.ResolutionResult{
		Point:      pt,
		Provenance: model.ProvenanceOffline,
		Tier:       model.TierCentroid,
	}

	narrow := p.geo.Reverse(ctx, pt, p.narrowM)
	if narrow.Outcome.Reachable() {
		res.Provenance = model.ProvenanceRemote
		if area, ok := p.match(narrow); ok {
			res.Area, res.Address, res.Tier = area, narrow.Address, model.TierGeocodeNarrow
		} else {
			wide := p.geo.Reverse(ctx, pt, p.wideM)
			if !wide.Outcome.Reachable() {
				res.Provenance = model.ProvenanceOffline
			} else if area, ok := p.match(wide); ok {
				res.Area, res.Address, res.Tier = area, wide.Address, model.TierGeocodeWide
			}
		}
	}

	if res.Area == "" {
		res.Area = p.centroids.Nearest(pt)
	}

	look, ok := p.demo.Get(ctx, res.Area)
	if !ok {
		rerr := model.NoArea(res.Area)
		log.Warn("no demographics for resolved area", zap.String("area", res.Area))
		p.metrics.ObserveFailure(string(rerr.Kind), time.Since(start))
		return nil, rerr
	}

	rec := look.Record
	res.DisplayName = demographics.DisplayName(res.Area)
	res.Demographics = &rec
	res.DataSource = look.Source
	res.SourceLabel = look.SourceLabel
	res.DensityTier = demographics.DensityTierFor(rec.Density)
	res.Insights = demographics.Insights(rec)

	log.Info("resolved location",
		zap.String("area", res.Area),
		zap.String("provenance", string(res.Provenance)),
		zap.String("tier", string(res.Tier)),
		zap.String("data_source", string(res.DataSource)),
	)
	p.metrics.ObserveResolution(string(res.Provenance), string(res.Tier), time.Since(start))
	return res, nil
}

// match maps a derived area name to a known area, exactly or fuzzily.
func (p *Pipeline) match(r ReverseResult) (string, bool) {
	if r.Outcome != OutcomeOK {
		return "", false
	}
	return p.demo.FuzzyMatch(r.Area)
}

// ResolveQuery finds a point for free text and resolves it like a pin drop.
// The place search is tried first; when it is unreachable or empty the query
// is matched against known area names and that area's centroid is used.
func (p *Pipeline) ResolveQuery(ctx context.Context, query string) (*model.ResolutionResult, error) {
	start := time.Now()
	q := strings.TrimSpace(query)
	ctx, id := ensureInteractionID(ctx)

	pt, found := p.locate(ctx, q)
	if !found {
		rerr := model.NoSearchResults(q)
		zap.L().Info("no results for query",
			zap.String("interaction_id", id),
			zap.String("query", q),
		)
		p.metrics.ObserveFailure(string(rerr.Kind), time.Since(start))
		return nil, rerr
	}

	res, err := p.ResolvePoint(ctx, pt)
	if err != nil {
		return nil, err
	}
	res.Query = q
	return res, nil
}

func (p *Pipeline) locate(ctx context.Context, q string) (model.GeoPoint, bool) {
	if q == "" {
		return model.GeoPoint{}, false
	}
	if pt, outcome := p.geo.SearchPoint(ctx, q); outcome == OutcomeOK {
		return pt, true
	}
	area, ok := p.demo.FuzzyMatch(q)
	if !ok {
		return model.GeoPoint{}, false
	}
	// Areas learned only from live tables have no centroid.
	return p.centroids.Centroid(area)
}

// IsUserFacing reports whether err is a terminal resolution failure whose
// message can be shown as is.
func IsUserFacing(err error) bool {
	var rerr *model.ResolutionError
	return errors.As(err, &rerr)
}
