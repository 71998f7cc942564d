// Package observability holds the Prometheus metrics for location resolution
// and the upstream services it calls.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
)

// Remote call outcomes, mirroring the adapter result kinds.
const (
	OutcomeOK     = "ok"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
)

// Collector bundles the resolution metrics. All methods are safe on a nil
// receiver so callers without metrics need no guards.
type Collector struct {
	gatherer prometheus.Gatherer

	Resolutions  *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	RemoteCalls  *prometheus.CounterVec
	Duration     prometheus.Histogram
	HTTPRequests *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	resolutions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bizmapper_resolutions_total",
		Help: "Completed location resolutions, labeled by provenance and fallback tier.",
	}, []string{"provenance", "tier"}), "bizmapper_resolutions_total")
	if err != nil {
		return nil, err
	}

	failures, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bizmapper_resolution_failures_total",
		Help: "Terminal resolution failures, labeled by kind.",
	}, []string{"kind"}), "bizmapper_resolution_failures_total")
	if err != nil {
		return nil, err
	}

	remote, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bizmapper_remote_calls_total",
		Help: "Upstream API calls, labeled by service and outcome (ok, empty, failed).",
	}, []string{"service", "outcome"}), "bizmapper_remote_calls_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bizmapper_resolution_duration_seconds",
		Help:    "End-to-end resolution latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}), "bizmapper_resolution_duration_seconds")
	if err != nil {
		return nil, err
	}

	httpReqs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bizmapper_http_requests_total",
		Help: "HTTP API requests, labeled by route pattern and status code.",
	}, []string{"route", "code"}), "bizmapper_http_requests_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:     gatherer,
		Resolutions:  resolutions,
		Failures:     failures,
		RemoteCalls:  remote,
		Duration:     duration,
		HTTPRequests: httpReqs,
	}, nil
}

// ObserveResolution records one successful resolution.
func (c *Collector) ObserveResolution(provenance, tier string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Resolutions.WithLabelValues(provenance, tier).Inc()
	c.Duration.Observe(elapsed.Seconds())
}

// ObserveFailure records one terminal resolution failure.
func (c *Collector) ObserveFailure(kind string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Failures.WithLabelValues(kind).Inc()
	c.Duration.Observe(elapsed.Seconds())
}

// ObserveRemoteCall records one upstream call outcome.
func (c *Collector) ObserveRemoteCall(service, outcome string) {
	if c == nil {
		return
	}
	c.RemoteCalls.WithLabelValues(service, outcome).Inc()
}

// ObserveHTTP records one served API request.
func (c *Collector) ObserveHTTP(route string, code int) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, eris.Errorf("observability: collector %s already registered with incompatible type", name)
		}
		return nil, eris.Wrapf(err, "observability: register %s", name)
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, eris.Errorf("observability: collector %s already registered with incompatible type", name)
		}
		return nil, eris.Wrapf(err, "observability: register %s", name)
	}
	return h, nil
}
