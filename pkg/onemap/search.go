package onemap

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// SearchHit is one place-search result. Coordinates arrive as decimal strings.
type SearchHit struct {
	SearchValue string `json:"SEARCHVAL"`
	Address     string `json:"ADDRESS"`
	Postal      string `json:"POSTAL"`
	Latitude    string `json:"LATITUDE"`
	Longitude   string `json:"LONGITUDE"`
}

// Coordinates parses the hit's latitude and longitude.
func (h SearchHit) Coordinates() (lat, lng float64, ok bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(h.Latitude), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(h.Longitude), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

type searchResponse struct {
	Found   int         `json:"found"`
	Results []SearchHit `json:"results"`
}

// Search implements Client. The endpoint is public; no token is sent.
func (c *httpClient) Search(ctx context.Context, query string) ([]SearchHit, error) {
	params := url.Values{
		"searchVal":      {query},
		"returnGeom":     {"Y"},
		"getAddrDetails": {"Y"},
		"pageNum":        {"1"},
	}
	reqURL := c.baseURL + "/api/common/elastic/search?" + params.Encode()

	var resp searchResponse
	if err := c.getJSON(ctx, reqURL, false, &resp); err != nil {
		return nil, eris.Wrap(err, "onemap: search")
	}
	return resp.Results, nil
}
