package onemap

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Address is one reverse-geocode candidate. PlanningArea is rarely populated;
// PostalCode may be the "NIL" placeholder.
type Address struct {
	BuildingName string `json:"BUILDINGNAME"`
	Block        string `json:"BLOCK"`
	Road         string `json:"ROAD"`
	PostalCode   string `json:"POSTALCODE"`
	PlanningArea string `json:"PLANNING_AREA,omitempty"`
	Latitude     string `json:"LATITUDE"`
	Longitude    string `json:"LONGITUDE"`
}

// Label returns a short human-readable address line.
func (a Address) Label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Block, a.Road, a.BuildingName} {
		p = strings.TrimSpace(p)
		if p != "" && !strings.EqualFold(p, "NIL") {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

type reverseResponse struct {
	GeocodeInfo []Address `json:"GeocodeInfo"`
}

// ReverseGeocode implements Client.
func (c *httpClient) ReverseGeocode(ctx context.Context, lat, lng float64, bufferM int) ([]Address, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	params := url.Values{
		"location":      {strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)},
		"buffer":        {strconv.Itoa(bufferM)},
		"addressType":   {"All"},
		"otherFeatures": {"N"},
	}
	reqURL := c.baseURL + "/api/public/revgeocode?" + params.Encode()

	var resp reverseResponse
	if err := c.getJSON(ctx, reqURL, true, &resp); err != nil {
		return nil, eris.Wrap(err, "onemap: reverse geocode")
	}
	return resp.GeocodeInfo, nil
}
