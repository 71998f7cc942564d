// Package singstat is a client for the SingStat Table Builder API.
package singstat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/bizmapper/internal/resilience"
)

const (
	defaultBaseURL = "https://tablebuilder.singstat.gov.sg"
	serviceName    = "singstat"
)

// Census 2020 resident tables by planning area.
const (
	TablePopulation = "17561"
	TableAge        = "17560"
	TableDwelling   = "17574"
	TableIncome     = "17779"
)

// Client fetches statistical tables.
type Client interface {
	TableData(ctx context.Context, tableID string) (*Table, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a SingStat client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type tableResponse struct {
	Data *Table `json:"Data"`
}

// TableData implements Client.
func (c *httpClient) TableData(ctx context.Context, tableID string) (*Table, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "singstat: rate limit")
	}

	reqURL := c.baseURL + "/api/table/tabledata/" + url.PathEscape(tableID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "singstat: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "singstat: fetch table %s", tableID)
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := resilience.CheckStatus(serviceName, resp.StatusCode); err != nil {
		return nil, eris.Wrapf(err, "singstat: fetch table %s", tableID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "singstat: read response")
	}

	var tr tableResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, eris.Wrapf(resilience.ErrDecode, "singstat: table %s: %v", tableID, err)
	}
	if tr.Data == nil {
		return nil, eris.Wrapf(resilience.ErrDecode, "singstat: table %s: missing Data", tableID)
	}
	return tr.Data, nil
}
