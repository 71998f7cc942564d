package onemap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bizmapper/internal/resilience"
)

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/revgeocode", r.URL.Path)
		assert.Equal(t, "1.3162,103.7649", r.URL.Query().Get("location"))
		assert.Equal(t, "300", r.URL.Query().Get("buffer"))
		assert.Equal(t, "All", r.URL.Query().Get("addressType"))
		assert.Equal(t, "N", r.URL.Query().Get("otherFeatures"))
		assert.Equal(t, "tok-123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"GeocodeInfo":[
			{"BUILDINGNAME":"NIL","BLOCK":"43","ROAD":"COMMONWEALTH AVENUE","POSTALCODE":"NIL","LATITUDE":"1.3161","LONGITUDE":"103.7648"},
			{"BUILDINGNAME":"CLEMENTI MALL","BLOCK":"3155","ROAD":"COMMONWEALTH AVENUE WEST","POSTALCODE":"600043","LATITUDE":"1.3150","LONGITUDE":"103.7640"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithToken("tok-123"))
	addrs, err := c.ReverseGeocode(context.Background(), 1.3162, 103.7649, 300)
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, "NIL", addrs[0].PostalCode)
	assert.Equal(t, "600043", addrs[1].PostalCode)
	assert.Equal(t, "43 COMMONWEALTH AVENUE", addrs[0].Label())
	assert.Equal(t, "3155 COMMONWEALTH AVENUE WEST CLEMENTI MALL", addrs[1].Label())
}

func TestReverseGeocode_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"GeocodeInfo":[]}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithToken("tok"))
	addrs, err := c.ReverseGeocode(context.Background(), 1.3, 103.8, 500)
	require.NoError(t, err)
	assert.Empty(t, addrs)
}

func TestReverseGeocode_NoToken(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.ReverseGeocode(context.Background(), 1.3, 103.8, 300)
	require.Error(t, err)
	assert.True(t, errors.Is(err, resilience.ErrUnauthorized))
	assert.False(t, called)
}

func TestReverseGeocode_ExpiredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Token has expired"}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithToken("stale"))
	_, err := c.ReverseGeocode(context.Background(), 1.3, 103.8, 300)
	require.Error(t, err)
	assert.Equal(t, resilience.FailureAuth, resilience.Classify(err))
}

func TestReverseGeocode_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithToken("tok"))
	_, err := c.ReverseGeocode(context.Background(), 1.3, 103.8, 300)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
	assert.Contains(t, err.Error(), "status 503")
}

func TestReverseGeocode_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>maintenance</html>`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithToken("tok"))
	_, err := c.ReverseGeocode(context.Background(), 1.3, 103.8, 300)
	require.Error(t, err)
	assert.Equal(t, resilience.FailureDecode, resilience.Classify(err))
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/common/elastic/search", r.URL.Path)
		assert.Equal(t, "Tampines Mall", r.URL.Query().Get("searchVal"))
		assert.Equal(t, "Y", r.URL.Query().Get("returnGeom"))
		assert.Equal(t, "1", r.URL.Query().Get("pageNum"))
		assert.Empty(t, r.Header.Get("Authorization"))

		_, _ = io.WriteString(w, `{"found":1,"totalNumPages":1,"pageNum":1,"results":[
			{"SEARCHVAL":"TAMPINES MALL","ADDRESS":"4 TAMPINES CENTRAL 5 TAMPINES MALL SINGAPORE 529510","POSTAL":"529510","LATITUDE":"1.35252","LONGITUDE":"103.94474"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithToken("unused"))
	hits, err := c.Search(context.Background(), "Tampines Mall")
	require.NoError(t, err)
	require.Len(t, hits, 1)

	lat, lng, ok := hits[0].Coordinates()
	assert.True(t, ok)
	assert.InDelta(t, 1.35252, lat, 1e-9)
	assert.InDelta(t, 103.94474, lng, 1e-9)
	assert.Equal(t, "529510", hits[0].Postal)
}

func TestSearchHit_BadCoordinates(t *testing.T) {
	_, _, ok := SearchHit{Latitude: "n/a", Longitude: "103.9"}.Coordinates()
	assert.False(t, ok)
	_, _, ok = SearchHit{Latitude: "1.3", Longitude: ""}.Coordinates()
	assert.False(t, ok)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/common/elastic/search", r.URL.Path)
		_, _ = io.WriteString(w, `{"found":0,"results":[]}`)
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(newRewriteClient(srv.URL, defaultBaseURL)), WithRateLimit(100))
	hits, err := c.Search(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, hits)
}
