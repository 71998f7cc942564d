package resolve

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/bizmapper/internal/model"
	"github.com/sells-group/bizmapper/internal/observability"
	"github.com/sells-group/bizmapper/internal/postal"
	"github.com/sells-group/bizmapper/internal/resilience"
	"github.com/sells-group/bizmapper/pkg/onemap"
)

const geocodeService = "onemap"

// Outcome is the result kind of one adapter call. Errors never leave the
// adapter; they become OutcomeFailed.
type Outcome int

const (
	// OutcomeOK means the call succeeded and produced a usable value.
	OutcomeOK Outcome = iota
	// OutcomeEmpty means the call succeeded but nothing usable came back.
	OutcomeEmpty
	// OutcomeFailed means the service could not be reached or rejected us.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return observability.OutcomeOK
	case OutcomeEmpty:
		return observability.OutcomeEmpty
	default:
		return observability.OutcomeFailed
	}
}

// Reachable reports whether the upstream answered.
func (o Outcome) Reachable() bool {
	return o != OutcomeFailed
}

// ReverseResult is a derived area name from one reverse-geocode call.
type ReverseResult struct {
	Outcome Outcome
	Area    string
	Address string
}

// Breakers guards the two OneMap calls. Reverse and Search trip
// independently; either may be nil.
type Breakers struct {
	Reverse *resilience.CircuitBreaker
	Search  *resilience.CircuitBreaker
}

// Geocoder adapts a OneMap client into outcome-returning calls.
type Geocoder struct {
	client   onemap.Client
	postal   *postal.Resolver
	breakers Breakers
	metrics  *observability.Collector
}

// NewGeocoder wraps client. metrics may be nil.
func NewGeocoder(client onemap.Client, pr *postal.Resolver, breakers Breakers, metrics *observability.Collector) *Geocoder {
	return &Geocoder{client: client, postal: pr, breakers: breakers, metrics: metrics}
}

// Reverse geocodes p within radiusM metres and derives an area name.
func (g *Geocoder) Reverse(ctx context.Context, p model.GeoPoint, radiusM int) ReverseResult {
	log := zap.L().With(
		zap.Float64("lat", p.Lat),
		zap.Float64("lng", p.Lng),
		zap.Int("radius_m", radiusM),
	)

	addrs, err := resilience.Call(ctx, g.breakers.Reverse, func(ctx context.Context) ([]onemap.Address, error) {
		return g.client.ReverseGeocode(ctx, p.Lat, p.Lng, radiusM)
	})
	if err != nil {
		log.Debug("reverse geocode failed",
			zap.String("kind", string(resilience.Classify(err))),
			zap.Error(err),
		)
		g.metrics.ObserveRemoteCall(geocodeService, OutcomeFailed.String())
		return ReverseResult{Outcome: OutcomeFailed}
	}

	area, addr, ok := DeriveArea(addrs, g.postal)
	if !ok {
		log.Debug("reverse geocode returned no usable address", zap.Int("candidates", len(addrs)))
		g.metrics.ObserveRemoteCall(geocodeService, OutcomeEmpty.String())
		return ReverseResult{Outcome: OutcomeEmpty}
	}
	g.metrics.ObserveRemoteCall(geocodeService, OutcomeOK.String())
	return ReverseResult{Outcome: OutcomeOK, Area: area, Address: addr.Label()}
}

// DeriveArea walks candidates in order and returns the first area name found:
// an explicit planning-area field, else a usable postal code mapped through
// the prefix tables.
func DeriveArea(addrs []onemap.Address, pr *postal.Resolver) (string, onemap.Address, bool) {
	for _, a := range addrs {
		if name := strings.TrimSpace(a.PlanningArea); name != "" {
			return name, a, true
		}
		if pr == nil || !postal.Usable(a.PostalCode) {
			continue
		}
		if name, ok := pr.Resolve(a.PostalCode); ok {
			return name, a, true
		}
	}
	return "", onemap.Address{}, false
}

// SearchPoint returns the coordinates of the first search hit whose
// coordinates parse to a valid point.
func (g *Geocoder) SearchPoint(ctx context.Context, query string) (model.GeoPoint, Outcome) {
	hits, err := resilience.Call(ctx, g.breakers.Search, func(ctx context.Context) ([]onemap.SearchHit, error) {
		return g.client.Search(ctx, query)
	})
	if err != nil {
		zap.L().Debug("place search failed",
			zap.String("query", query),
			zap.String("kind", string(resilience.Classify(err))),
			zap.Error(err),
		)
		g.metrics.ObserveRemoteCall(geocodeService, OutcomeFailed.String())
		return model.GeoPoint{}, OutcomeFailed
	}

	for _, h := range hits {
		lat, lng, ok := h.Coordinates()
		if !ok {
			continue
		}
		if pt := (model.GeoPoint{Lat: lat, Lng: lng}); pt.Valid() {
			g.metrics.ObserveRemoteCall(geocodeService, OutcomeOK.String())
			return pt, OutcomeOK
		}
	}
	g.metrics.ObserveRemoteCall(geocodeService, OutcomeEmpty.String())
	return model.GeoPoint{}, OutcomeEmpty
}
