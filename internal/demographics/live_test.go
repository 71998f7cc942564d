package demographics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bizmapper/internal/model"
	"github.com/sells-group/bizmapper/internal/resilience"
	"github.com/sells-group/bizmapper/pkg/singstat"
)

func mockAllTables(m *mockTableClient) {
	m.On("TableData", mock.Anything, singstat.TablePopulation).Return(populationFixture(), nil)
	m.On("TableData", mock.Anything, singstat.TableAge).Return(ageFixture(), nil)
	m.On("TableData", mock.Anything, singstat.TableDwelling).Return(dwellingFixture(), nil)
	m.On("TableData", mock.Anything, singstat.TableIncome).Return(incomeFixture(), nil)
}

func TestLiveCache_Ensure(t *testing.T) {
	ref := testReference(t)
	client := new(mockTableClient)
	mockAllTables(client)

	cache := NewLiveCache(client, ref)
	assert.Nil(t, cache.Loaded())

	snap, err := cache.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Census of Population 2020 · Updated 18/06/2021", snap.SourceLabel)
	assert.Equal(t, []string{"SELETAR"}, snap.Extra)

	bishan := snap.Records["BISHAN"]
	assert.Equal(t, model.DemographicRecord{
		Population:            88000,
		MedianAge:             42,
		MedianHouseholdIncome: 5750,
		Density:               10964,
		Dwellings:             model.Dwellings{HDB: 60, Condo: 30, Landed: 8, Other: 2},
		AgeGroups:             model.AgeGroups{Young: 25, Working: 60, Senior: 15},
	}, bishan)

	// Seletar has no reference record and no usable age, dwelling or income rows.
	assert.Equal(t, model.DemographicRecord{
		Population:            400,
		MedianAge:             model.DefaultMedianAge,
		MedianHouseholdIncome: model.DefaultMedianHouseholdIncome,
		Dwellings:             model.DefaultDwellings,
		AgeGroups:             model.DefaultAgeGroups,
	}, snap.Records["SELETAR"])

	// Second call is served from cache.
	again, err := cache.Ensure(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, again)
	client.AssertNumberOfCalls(t, "TableData", 4)
}

func TestLiveCache_PartialFailure(t *testing.T) {
	ref := testReference(t)
	client := new(mockTableClient)
	client.On("TableData", mock.Anything, singstat.TablePopulation).Return(populationFixture(), nil)
	client.On("TableData", mock.Anything, singstat.TableAge).Return(ageFixture(), nil)
	client.On("TableData", mock.Anything, singstat.TableDwelling).Return(dwellingFixture(), nil)
	client.On("TableData", mock.Anything, singstat.TableIncome).Return(nil, errors.New("connection reset by peer"))

	cache := NewLiveCache(client, ref)
	_, err := cache.Ensure(context.Background())
	require.Error(t, err)
	assert.Nil(t, cache.Loaded())
}

func TestLiveCache_ConcurrentEnsureConverges(t *testing.T) {
	ref := testReference(t)
	client := new(mockTableClient)
	mockAllTables(client)
	cache := NewLiveCache(client, ref)

	const n = 8
	snaps := make([]*Snapshot, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := cache.Ensure(context.Background())
			assert.NoError(t, err)
			snaps[i] = s
		}()
	}
	wg.Wait()

	winner := cache.Loaded()
	require.NotNil(t, winner)
	for _, s := range snaps {
		assert.Same(t, winner, s)
	}
}

func TestLiveCache_BreakerOpens(t *testing.T) {
	ref := testReference(t)
	client := new(mockTableClient)
	client.On("TableData", mock.Anything, mock.Anything).Return(nil, &resilience.StatusError{Service: "singstat", StatusCode: 503})

	cb := resilience.NewCircuitBreaker("singstat", resilience.CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     time.Hour,
		ShouldTrip:       resilience.CountsAsOutage,
	})
	cache := NewLiveCache(client, ref, WithBreaker(cb))

	_, err := cache.Ensure(context.Background())
	require.Error(t, err)
	calls := len(client.Calls)

	_, err = cache.Ensure(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, resilience.ErrCircuitOpen))
	assert.Len(t, client.Calls, calls, "open breaker skips the fetch")
}

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "Census · Updated N/A", SourceLabel(nil))
	assert.Equal(t, "Census · Updated N/A", SourceLabel(&singstat.Table{}))
	assert.Equal(t, "General Household Survey · Updated 01/02/2026",
		SourceLabel(&singstat.Table{TableType: "General Household Survey", DataLastUpdated: "01/02/2026"}))
}
