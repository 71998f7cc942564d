// Package onemap is a client for the Singapore Land Authority OneMap API:
// reverse geocoding (token required) and place search (public).
package onemap

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/bizmapper/internal/resilience"
)

const (
	defaultBaseURL = "https://www.onemap.gov.sg"
	serviceName    = "onemap"
)

// ErrNoToken is returned by ReverseGeocode when no credential is configured.
var ErrNoToken = eris.Wrap(resilience.ErrUnauthorized, "onemap: no token configured")

// Client performs OneMap API operations.
type Client interface {
	// ReverseGeocode lists addresses within bufferM metres of a point.
	ReverseGeocode(ctx context.Context, lat, lng float64, bufferM int) ([]Address, error)
	// Search looks up places by free text.
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithToken sets the bearer credential used for reverse geocoding.
func WithToken(token string) Option {
	return func(c *httpClient) {
		c.token = token
	}
}

// WithRateLimit sets the requests-per-second limit across both endpoints.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
		}
	}
}

type httpClient struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a OneMap client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(4, 4), // OneMap allows 250 calls per minute
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// getJSON issues a GET and decodes a 200 response into out.
func (c *httpClient) getJSON(ctx context.Context, reqURL string, auth bool, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "onemap: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "onemap: create request")
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "onemap: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := resilience.CheckStatus(serviceName, resp.StatusCode); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "onemap: read response")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(resilience.ErrDecode, "onemap: %v", err)
	}
	return nil
}
