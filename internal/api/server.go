// Package api exposes the resolution pipeline, the area catalogue and the
// basemap proxy over HTTP for the map UI.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/bizmapper/internal/basemap"
	"github.com/sells-group/bizmapper/internal/centroid"
	"github.com/sells-group/bizmapper/internal/demographics"
	"github.com/sells-group/bizmapper/internal/model"
	"github.com/sells-group/bizmapper/internal/observability"
	"github.com/sells-group/bizmapper/internal/resilience"
	"github.com/sells-group/bizmapper/internal/resolve"
)

// Resolver runs resolution interactions.
type Resolver interface {
	ResolvePoint(ctx context.Context, pt model.GeoPoint) (*model.ResolutionResult, error)
	ResolveQuery(ctx context.Context, query string) (*model.ResolutionResult, error)
}

// TileSource serves basemap tiles.
type TileSource interface {
	Fetch(ctx context.Context, c basemap.Coord) (basemap.Tile, bool, error)
}

// Deps are the collaborators the API serves. Tiles, Metrics and Breakers are
// optional.
type Deps struct {
	Resolver       Resolver
	Demographics   *demographics.Service
	Centroids      *centroid.Index
	Tiles          TileSource
	Metrics        *observability.Collector
	Breakers       *resilience.ServiceBreakers
	AllowedOrigins []string
}

// Server holds the API handlers.
type Server struct {
	deps Deps
}

// NewServer creates a Server.
func NewServer(deps Deps) *Server {
	if len(deps.AllowedOrigins) == 0 {
		deps.AllowedOrigins = []string{"*"}
	}
	return &Server{deps: deps}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(interactionID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, "X-Cache"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.deps.Metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/resolve/point", s.handleResolvePoint)
		r.Get("/resolve/search", s.handleResolveSearch)
		r.Get("/areas", s.handleListAreas)
		r.Get("/areas/centroids.geojson", s.handleCentroids)
		r.Get("/areas/{name}", s.handleGetArea)
	})

	if s.deps.Tiles != nil {
		r.Get("/tiles/{z}/{x}/{y}.png", s.handleTile)
	}
	return r
}

const requestIDHeader = "X-Request-Id"

// interactionID tags each request with an interaction id, reusing the
// caller's X-Request-Id when present.
func interactionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(resolve.WithInteractionID(r.Context(), id)))
	})
}

// observe records request metrics and an access log line.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.deps.Metrics.ObserveHTTP(route, status)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
