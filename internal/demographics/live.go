package demographics

import (
	"context"
	"math"
	"sort"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/bizmapper/internal/model"
	"github.com/sells-group/bizmapper/internal/observability"
	"github.com/sells-group/bizmapper/internal/resilience"
	"github.com/sells-group/bizmapper/pkg/singstat"
)

const serviceName = "singstat"

// TableIDs names the four SingStat tables the live fetch needs.
type TableIDs struct {
	Population string
	Age        string
	Dwelling   string
	Income     string
}

// DefaultTableIDs returns the Census 2020 planning-area tables.
func DefaultTableIDs() TableIDs {
	return TableIDs{
		Population: singstat.TablePopulation,
		Age:        singstat.TableAge,
		Dwelling:   singstat.TableDwelling,
		Income:     singstat.TableIncome,
	}
}

// Snapshot is one successful live fetch merged over the reference table.
// It is never mutated after publication.
type Snapshot struct {
	Records     map[string]model.DemographicRecord
	SourceLabel string
	// Extra lists live areas missing from the reference table, sorted.
	Extra []string
}

// LiveOption configures a LiveCache.
type LiveOption func(*LiveCache)

// WithTables overrides the table ids.
func WithTables(ids TableIDs) LiveOption {
	return func(c *LiveCache) { c.tables = ids }
}

// WithBreaker guards the fetch with a circuit breaker.
func WithBreaker(cb *resilience.CircuitBreaker) LiveOption {
	return func(c *LiveCache) { c.breaker = cb }
}

// WithMetrics records fetch outcomes.
func WithMetrics(m *observability.Collector) LiveOption {
	return func(c *LiveCache) { c.metrics = m }
}

// LiveCache holds the process-wide live demographics. It is populated at
// most once; a failed fetch leaves it empty so a later request retries.
// Concurrent first requests may fetch in parallel; the first to finish wins
// and the others adopt its snapshot.
type LiveCache struct {
	client  singstat.Client
	ref     *Reference
	tables  TableIDs
	breaker *resilience.CircuitBreaker
	metrics *observability.Collector

	snap atomic.Pointer[Snapshot]
}

// NewLiveCache creates an empty cache backed by client.
func NewLiveCache(client singstat.Client, ref *Reference, opts ...LiveOption) *LiveCache {
	c := &LiveCache{
		client: client,
		ref:    ref,
		tables: DefaultTableIDs(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Loaded returns the cached snapshot, or nil before the first successful fetch.
func (c *LiveCache) Loaded() *Snapshot {
	return c.snap.Load()
}

// Ensure returns the cached snapshot, fetching it first if needed.
func (c *LiveCache) Ensure(ctx context.Context) (*Snapshot, error) {
	if s := c.snap.Load(); s != nil {
		return s, nil
	}

	s, err := resilience.Call(ctx, c.breaker, c.fetch)
	if err != nil {
		c.metrics.ObserveRemoteCall(serviceName, observability.OutcomeFailed)
		return nil, err
	}
	c.metrics.ObserveRemoteCall(serviceName, observability.OutcomeOK)

	if !c.snap.CompareAndSwap(nil, s) {
		return c.snap.Load(), nil
	}
	zap.L().Info("live demographics loaded",
		zap.Int("areas", len(s.Records)),
		zap.String("source", s.SourceLabel),
	)
	return s, nil
}

// fetch loads all four tables concurrently. Any single failure fails the
// whole fetch; no partial data is merged.
func (c *LiveCache) fetch(ctx context.Context) (*Snapshot, error) {
	var pop, age, dwell, income *singstat.Table

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range []struct {
		id  string
		dst **singstat.Table
	}{
		{c.tables.Population, &pop},
		{c.tables.Age, &age},
		{c.tables.Dwelling, &dwell},
		{c.tables.Income, &income},
	} {
		job := job
		g.Go(func() error {
			t, err := c.client.TableData(gctx, job.id)
			if err != nil {
				return err
			}
			*job.dst = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "demographics: live fetch")
	}

	return buildSnapshot(c.ref, pop, age, dwell, income), nil
}

// SourceLabel formats the live provenance line from the age table metadata.
func SourceLabel(t *singstat.Table) string {
	tableType, updated := "Census", "N/A"
	if t != nil {
		if t.TableType != "" {
			tableType = t.TableType
		}
		if t.DataLastUpdated != "" {
			updated = t.DataLastUpdated
		}
	}
	return tableType + " · Updated " + updated
}

func buildSnapshot(ref *Reference, popT, ageT, dwellT, incomeT *singstat.Table) *Snapshot {
	pop := populationByArea(popT)
	age := ageByArea(ageT)
	dwell := dwellingsByArea(dwellT)
	income := incomeByArea(incomeT)

	areas := make(map[string]struct{}, len(pop))
	for a := range pop {
		areas[a] = struct{}{}
	}
	for a := range age {
		areas[a] = struct{}{}
	}
	for a := range dwell {
		areas[a] = struct{}{}
	}
	for a := range income {
		areas[a] = struct{}{}
	}

	s := &Snapshot{
		Records:     make(map[string]model.DemographicRecord, len(areas)),
		SourceLabel: SourceLabel(ageT),
	}
	for a := range areas {
		refRec, hasRef := ref.Lookup(a)
		if !hasRef {
			s.Extra = append(s.Extra, a)
		}
		s.Records[a] = merge(liveArea{
			population: pop[a],
			age:        age[a],
			hasAge:     hasKey(age, a),
			dwellings:  dwell[a],
			hasDwell:   hasKey(dwell, a),
			income:     income[a],
			hasIncome:  hasKey(income, a),
		}, refRec, hasRef)
	}
	sort.Strings(s.Extra)
	return s
}

func hasKey[V any](m map[string]V, k string) bool {
	_, ok := m[k]
	return ok
}

type liveArea struct {
	population int
	age        ageStats
	hasAge     bool
	dwellings  model.Dwellings
	hasDwell   bool
	income     int
	hasIncome  bool
}

// merge picks each field from the live values, then the reference record,
// then the neutral defaults.
func merge(live liveArea, ref model.DemographicRecord, hasRef bool) model.DemographicRecord {
	var out model.DemographicRecord

	switch {
	case live.population > 0:
		out.Population = live.population
	case hasRef:
		out.Population = ref.Population
	}

	landArea, hasLand := ref.LandAreaKm2()
	switch {
	case hasRef && hasLand && live.population > 0:
		out.Density = int(math.Round(float64(live.population) / landArea))
	case hasRef:
		out.Density = ref.Density
	}

	switch {
	case live.hasAge && live.age.hasMedian:
		out.MedianAge = live.age.medianAge
	case hasRef:
		out.MedianAge = ref.MedianAge
	default:
		out.MedianAge = model.DefaultMedianAge
	}

	switch {
	case live.hasIncome:
		out.MedianHouseholdIncome = live.income
	case hasRef:
		out.MedianHouseholdIncome = ref.MedianHouseholdIncome
	default:
		out.MedianHouseholdIncome = model.DefaultMedianHouseholdIncome
	}

	switch {
	case live.hasDwell:
		out.Dwellings = live.dwellings
	case hasRef:
		out.Dwellings = ref.Dwellings
	default:
		out.Dwellings = model.DefaultDwellings
	}

	switch {
	case live.hasAge:
		out.AgeGroups = live.age.groups
	case hasRef:
		out.AgeGroups = ref.AgeGroups
	default:
		out.AgeGroups = model.DefaultAgeGroups
	}

	return out
}
