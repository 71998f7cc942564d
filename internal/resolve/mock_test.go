package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bizmapper/internal/centroid"
	"github.com/sells-group/bizmapper/internal/demographics"
	"github.com/sells-group/bizmapper/internal/postal"
	"github.com/sells-group/bizmapper/internal/refdata"
	"github.com/sells-group/bizmapper/pkg/onemap"
)

// --- OneMap Mock ---

type mockOneMap struct {
	mock.Mock
}

func (m *mockOneMap) ReverseGeocode(ctx context.Context, lat, lng float64, bufferM int) ([]onemap.Address, error) {
	args := m.Called(ctx, lat, lng, bufferM)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]onemap.Address), args.Error(1)
}

func (m *mockOneMap) Search(ctx context.Context, query string) ([]onemap.SearchHit, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]onemap.SearchHit), args.Error(1)
}

// --- Demographics Mock ---

type mockDemographics struct {
	mock.Mock
}

func (m *mockDemographics) Get(ctx context.Context, area string) (demographics.Lookup, bool) {
	args := m.Called(ctx, area)
	return args.Get(0).(demographics.Lookup), args.Bool(1)
}

func (m *mockDemographics) FuzzyMatch(raw string) (string, bool) {
	args := m.Called(raw)
	return args.String(0), args.Bool(1)
}

// --- Fixtures ---

type fixture struct {
	client    *mockOneMap
	postal    *postal.Resolver
	demo      *demographics.Service
	centroids *centroid.Index
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ds, err := refdata.Load()
	require.NoError(t, err)
	idx, err := centroid.NewIndex(ds.Areas)
	require.NoError(t, err)
	return &fixture{
		client:    new(mockOneMap),
		postal:    postal.NewResolver(ds.Prefix3, ds.Prefix2),
		demo:      demographics.NewService(demographics.NewReference(ds.Areas), nil),
		centroids: idx,
	}
}

func (f *fixture) pipeline(opts ...Option) *Pipeline {
	geo := NewGeocoder(f.client, f.postal, Breakers{}, nil)
	return New(geo, f.demo, f.centroids, opts...)
}
