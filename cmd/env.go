package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bizmapper/internal/basemap"
	"github.com/sells-group/bizmapper/internal/centroid"
	"github.com/sells-group/bizmapper/internal/config"
	"github.com/sells-group/bizmapper/internal/demographics"
	"github.com/sells-group/bizmapper/internal/observability"
	"github.com/sells-group/bizmapper/internal/postal"
	"github.com/sells-group/bizmapper/internal/refdata"
	"github.com/sells-group/bizmapper/internal/resilience"
	"github.com/sells-group/bizmapper/internal/resolve"
	"github.com/sells-group/bizmapper/pkg/onemap"
	"github.com/sells-group/bizmapper/pkg/singstat"
)

// Breaker names, one per remote service.
const (
	breakerOneMap       = "onemap"
	breakerOneMapSearch = "onemap-search"
	breakerSingStat     = "singstat"
	breakerTiles        = "tiles"
)

// appEnv holds the wired components shared by the serve, resolve, search
// and areas commands.
type appEnv struct {
	Pipeline     *resolve.Pipeline
	Demographics *demographics.Service
	Live         *demographics.LiveCache // nil when singstat is disabled
	Centroids    *centroid.Index
	Tiles        *basemap.Proxy
	Metrics      *observability.Collector
	Breakers     *resilience.ServiceBreakers
}

// envOptions are the test seams for initEnv.
type envOptions struct {
	registry prometheus.Registerer
	oneMap   onemap.Client
	singStat singstat.Client
}

// initEnv validates the config for mode, loads the reference data and builds
// the remote clients, the demographics service and the pipeline.
func initEnv(c *config.Config, mode string, opts envOptions) (*appEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	ds, err := refdata.Load()
	if err != nil {
		return nil, eris.Wrap(err, "load reference data")
	}
	idx, err := centroid.NewIndex(ds.Areas)
	if err != nil {
		return nil, eris.Wrap(err, "build centroid index")
	}

	reg := opts.registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	metrics, err := observability.NewCollector(reg)
	if err != nil {
		return nil, eris.Wrap(err, "init metrics")
	}

	breakers := resilience.NewServiceBreakers(resilience.FromCircuitConfig(
		c.Resilience.FailureThreshold, c.Resilience.ResetTimeoutSecs))

	oneMapClient := opts.oneMap
	if oneMapClient == nil {
		oneMapClient = newOneMapClient(c.OneMap)
	}

	ref := demographics.NewReference(ds.Areas)
	var live *demographics.LiveCache
	if !c.SingStat.Disabled {
		singStatClient := opts.singStat
		if singStatClient == nil {
			singStatClient = singstat.NewClient(
				singstat.WithBaseURL(c.SingStat.BaseURL),
				singstat.WithHTTPClient(&http.Client{Timeout: c.SingStat.Timeout()}),
				singstat.WithRateLimit(c.SingStat.RateLimitRPS),
			)
		}
		live = demographics.NewLiveCache(singStatClient, ref,
			demographics.WithTables(tableIDs(c.SingStat.Tables)),
			demographics.WithBreaker(breakers.Get(breakerSingStat)),
			demographics.WithMetrics(metrics),
		)
	}
	demo := demographics.NewService(ref, live)

	geo := resolve.NewGeocoder(oneMapClient, postal.NewResolver(ds.Prefix3, ds.Prefix2),
		resolve.Breakers{
			Reverse: breakers.Get(breakerOneMap),
			Search:  breakers.Get(breakerOneMapSearch),
		}, metrics)
	pipe := resolve.New(geo, demo, idx,
		resolve.WithRadii(c.OneMap.NarrowRadiusM, c.OneMap.WideRadiusM),
		resolve.WithMetrics(metrics),
	)

	env := &appEnv{
		Pipeline:     pipe,
		Demographics: demo,
		Live:         live,
		Centroids:    idx,
		Metrics:      metrics,
		Breakers:     breakers,
	}
	if c.Tiles.BaseURL != "" {
		env.Tiles = basemap.NewProxy(c.Tiles.BaseURL, c.Tiles.Format,
			basemap.WithCache(basemap.NewCache(c.Tiles.CacheEntries, time.Duration(c.Tiles.CacheTTLMins)*time.Minute)),
			basemap.WithBreaker(breakers.Get(breakerTiles)),
			basemap.WithMetrics(metrics),
		)
	}

	zap.L().Debug("environment ready",
		zap.String("mode", mode),
		zap.Int("areas", idx.Len()),
		zap.Bool("live_demographics", live != nil),
		zap.Bool("token_configured", c.OneMap.Token() != ""),
	)
	return env, nil
}

func newOneMapClient(c config.OneMapConfig) onemap.Client {
	return onemap.NewClient(
		onemap.WithBaseURL(c.BaseURL),
		onemap.WithToken(c.Token()),
		onemap.WithHTTPClient(&http.Client{Timeout: c.Timeout()}),
		onemap.WithRateLimit(c.RateLimitRPS),
	)
}

// tableIDs fills blanks in the configured table ids with the defaults.
func tableIDs(t config.TablesConfig) demographics.TableIDs {
	ids := demographics.DefaultTableIDs()
	if t.Population != "" {
		ids.Population = t.Population
	}
	if t.Age != "" {
		ids.Age = t.Age
	}
	if t.Dwelling != "" {
		ids.Dwelling = t.Dwelling
	}
	if t.Income != "" {
		ids.Income = t.Income
	}
	return ids
}
