package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/bizmapper/internal/basemap"
	"github.com/sells-group/bizmapper/internal/demographics"
	"github.com/sells-group/bizmapper/internal/model"
	"github.com/sells-group/bizmapper/internal/resolve"
)

// Error kinds for non-resolution failures.
const (
	errBadRequest = "bad_request"
	errNotFound   = "not_found"
	errUpstream   = "upstream_unavailable"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorBody{Error: kind, Message: msg})
}

// writeResolveError maps pipeline errors: terminal resolution failures are
// 404 with their user-facing message, bad coordinates are 400.
func writeResolveError(w http.ResponseWriter, err error) {
	var rerr *model.ResolutionError
	switch {
	case errors.As(err, &rerr):
		writeError(w, http.StatusNotFound, string(rerr.Kind), rerr.Message)
	case errors.Is(err, resolve.ErrInvalidPoint):
		writeError(w, http.StatusBadRequest, errBadRequest, "lat must be within [-90, 90] and lng within [-180, 180]")
	default:
		zap.L().Error("api: resolve failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.deps.Breakers != nil {
		body["breakers"] = s.deps.Breakers.States()
	}
	writeJSON(w, http.StatusOK, body)
}

type pointRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (s *Server) handleResolvePoint(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errBadRequest, "invalid request body")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, http.StatusBadRequest, errBadRequest, "lat and lng are required")
		return
	}

	res, err := s.deps.Resolver.ResolvePoint(r.Context(), model.GeoPoint{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleResolveSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, errBadRequest, "q is required")
		return
	}

	res, err := s.deps.Resolver.ResolveQuery(r.Context(), q)
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AreaSummary is one row of the area catalogue.
type AreaSummary struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Centroid    *model.GeoPoint   `json:"centroid,omitempty"`
	Population  int               `json:"population"`
	Density     int               `json:"density"`
	DensityTier model.DensityTier `json:"density_tier"`
	DataSource  model.DataSource  `json:"data_source"`
}

// AreaDetail is the full demographic view of one area.
type AreaDetail struct {
	AreaSummary
	Demographics model.DemographicRecord `json:"demographics"`
	SourceLabel  string                  `json:"source_label"`
	Insights     []model.Insight         `json:"insights"`
}

func (s *Server) summary(name string, look demographics.Lookup) AreaSummary {
	sum := AreaSummary{
		Name:        name,
		DisplayName: demographics.DisplayName(name),
		Population:  look.Record.Population,
		Density:     look.Record.Density,
		DensityTier: demographics.DensityTierFor(look.Record.Density),
		DataSource:  look.Source,
	}
	if pt, ok := s.deps.Centroids.Centroid(name); ok {
		sum.Centroid = &pt
	}
	return sum
}

func (s *Server) handleListAreas(w http.ResponseWriter, r *http.Request) {
	names := s.deps.Demographics.Names()
	out := make([]AreaSummary, 0, len(names))
	for _, name := range names {
		look, ok := s.deps.Demographics.Get(r.Context(), name)
		if !ok {
			continue
		}
		out = append(out, s.summary(name, look))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetArea(w http.ResponseWriter, r *http.Request) {
	name := demographics.Normalize(chi.URLParam(r, "name"))
	if !s.deps.Demographics.Known(name) {
		writeError(w, http.StatusNotFound, errNotFound, "unknown planning area "+strconv.Quote(name))
		return
	}
	look, ok := s.deps.Demographics.Get(r.Context(), name)
	if !ok {
		writeError(w, http.StatusNotFound, string(model.FailureNoArea), model.NoArea(name).Message)
		return
	}
	writeJSON(w, http.StatusOK, AreaDetail{
		AreaSummary:  s.summary(name, look),
		Demographics: look.Record,
		SourceLabel:  look.SourceLabel,
		Insights:     demographics.Insights(look.Record),
	})
}

func (s *Server) handleCentroids(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(s.deps.Centroids.FeatureCollection()); err != nil {
		zap.L().Warn("api: encode centroids", zap.Error(err))
	}
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	var c basemap.Coord
	var err error
	for _, p := range []struct {
		key string
		dst *int
	}{{"z", &c.Z}, {"x", &c.X}, {"y", &c.Y}} {
		if *p.dst, err = strconv.Atoi(chi.URLParam(r, p.key)); err != nil {
			writeError(w, http.StatusBadRequest, errBadRequest, "invalid tile coordinate "+p.key)
			return
		}
	}

	tile, cached, err := s.deps.Tiles.Fetch(r.Context(), c)
	switch {
	case errors.Is(err, basemap.ErrOutOfRange):
		writeError(w, http.StatusNotFound, errNotFound, "tile out of range")
		return
	case err != nil:
		zap.L().Warn("api: basemap tile fetch failed", zap.String("tile", c.String()), zap.Error(err))
		writeError(w, http.StatusBadGateway, errUpstream, "basemap upstream unavailable")
		return
	}

	w.Header().Set("Content-Type", tile.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	_, _ = w.Write(tile.Data)
}
