// Package basemap proxies OneMap raster basemap tiles for the map UI.
package basemap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bizmapper/internal/observability"
	"github.com/sells-group/bizmapper/internal/resilience"
)

const serviceName = "tiles"

// Zoom levels served by the OneMap Default basemap.
const (
	MinZoom = 11
	MaxZoom = 19
)

// ErrOutOfRange is returned for tile coordinates the basemap does not serve.
var ErrOutOfRange = eris.New("basemap: tile out of range")

// Coord addresses one slippy-map tile.
type Coord struct {
	Z, X, Y int
}

// Valid reports whether the coordinate is inside the served zoom range and
// the tile grid for its zoom.
func (c Coord) Valid() bool {
	if c.Z < MinZoom || c.Z > MaxZoom {
		return false
	}
	n := 1 << c.Z
	return c.X >= 0 && c.X < n && c.Y >= 0 && c.Y < n
}

func (c Coord) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

// Tile is raw tile bytes with their MIME type.
type Tile struct {
	Data        []byte
	ContentType string
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Proxy) { p.client = hc }
}

// WithCache enables tile caching.
func WithCache(c *Cache) Option {
	return func(p *Proxy) { p.cache = c }
}

// WithBreaker guards upstream fetches with a circuit breaker.
func WithBreaker(cb *resilience.CircuitBreaker) Option {
	return func(p *Proxy) { p.breaker = cb }
}

// WithMetrics records upstream fetch outcomes.
func WithMetrics(m *observability.Collector) Option {
	return func(p *Proxy) { p.metrics = m }
}

// Proxy fetches tiles from {baseURL}/{z}/{x}/{y}.{format}.
type Proxy struct {
	baseURL string
	format  string
	client  *http.Client
	cache   *Cache
	breaker *resilience.CircuitBreaker
	metrics *observability.Collector
}

// NewProxy creates a basemap proxy.
func NewProxy(baseURL, format string, opts ...Option) *Proxy {
	if format == "" {
		format = "png"
	}
	p := &Proxy{
		baseURL: baseURL,
		format:  format,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Fetch returns a tile from cache or upstream. cached reports a cache hit.
func (p *Proxy) Fetch(ctx context.Context, c Coord) (t Tile, cached bool, err error) {
	if !c.Valid() {
		return Tile{}, false, eris.Wrapf(ErrOutOfRange, "%s", c)
	}

	if p.cache != nil {
		if t, ok := p.cache.Get(c); ok {
			return t, true, nil
		}
	}

	t, err = resilience.Call(ctx, p.breaker, func(ctx context.Context) (Tile, error) {
		return p.fetchUpstream(ctx, c)
	})
	if err != nil {
		p.metrics.ObserveRemoteCall(serviceName, observability.OutcomeFailed)
		return Tile{}, false, err
	}
	p.metrics.ObserveRemoteCall(serviceName, observability.OutcomeOK)

	if p.cache != nil {
		p.cache.Put(c, t)
	}
	return t, false, nil
}

func (p *Proxy) fetchUpstream(ctx context.Context, c Coord) (Tile, error) {
	url := fmt.Sprintf("%s/%d/%d/%d.%s", p.baseURL, c.Z, c.X, c.Y, p.format)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Tile{}, eris.Wrap(err, "basemap: create request")
	}
	req.Header.Set("User-Agent", "bizmapper/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return Tile{}, eris.Wrap(err, "basemap: fetch tile")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := resilience.CheckStatus(serviceName, resp.StatusCode); err != nil {
		return Tile{}, eris.Wrapf(err, "basemap: tile %s", c)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Tile{}, eris.Wrap(err, "basemap: read tile body")
	}

	zap.L().Debug("basemap: fetched tile", zap.String("tile", c.String()), zap.Int("bytes", len(data)))
	return Tile{Data: data, ContentType: contentType(p.format)}, nil
}

// Stats returns cache statistics, or zero values when caching is off.
func (p *Proxy) Stats() CacheStats {
	if p.cache == nil {
		return CacheStats{}
	}
	return p.cache.Stats()
}

// contentType returns the MIME type for a tile format.
func contentType(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
