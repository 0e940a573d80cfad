package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements every hook interface on top of Prometheus collectors
// registered in a private registry.
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal      *prometheus.CounterVec
	fetchErrorTotal *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	tagsFetched     *prometheus.GaugeVec
	resolvedTotal   *prometheus.CounterVec
	runTotal        *prometheus.CounterVec
	runDuration     prometheus.Histogram
	cacheTotal      *prometheus.CounterVec
	httpTotal       *prometheus.CounterVec
	httpErrorTotal  prometheus.Counter
	httpDuration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghdepup_fetch_total",
				Help: "Number of tag fetches by dependency.",
			},
			[]string{"dep"},
		),
		fetchErrorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghdepup_fetch_error_total",
				Help: "Number of failed tag fetches by dependency.",
			},
			[]string{"dep"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ghdepup_fetch_duration_seconds",
				Help:    "Time taken to fetch the tags of one project.",
				Buckets: prometheus.DefBuckets,
			},
		),
		tagsFetched: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ghdepup_tags",
				Help: "Number of tags seen in the last fetch by dependency.",
			},
			[]string{"dep"},
		),
		resolvedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghdepup_resolved_total",
				Help: "Number of version selections by outcome.",
			},
			[]string{"outcome"},
		),
		runTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghdepup_run_total",
				Help: "Number of resolution runs by final state.",
			},
			[]string{"state"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ghdepup_run_duration_seconds",
				Help:    "Time taken by a resolution run.",
				Buckets: prometheus.DefBuckets,
			},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghdepup_cache_total",
				Help: "Number of cache operations by key type and result.",
			},
			[]string{"type", "result"},
		),
		httpTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghdepup_http_requests_total",
				Help: "Number of outgoing HTTP requests by host and status code.",
			},
			[]string{"host", "code"},
		),
		httpErrorTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ghdepup_http_errors_total",
				Help: "Number of outgoing HTTP requests that got no response.",
			},
		),
		httpDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ghdepup_http_request_duration_seconds",
				Help:    "Time taken by outgoing HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	m.registry.MustRegister(
		m.fetchTotal,
		m.fetchErrorTotal,
		m.fetchDuration,
		m.tagsFetched,
		m.resolvedTotal,
		m.runTotal,
		m.runDuration,
		m.cacheTotal,
		m.httpTotal,
		m.httpErrorTotal,
		m.httpDuration,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the collected metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OnFetchStart(_ context.Context, dep, _ string) {
	m.fetchTotal.WithLabelValues(dep).Inc()
}

func (m *Metrics) OnFetchComplete(_ context.Context, dep, _ string, tagCount int, d time.Duration, err error) {
	m.fetchDuration.Observe(d.Seconds())
	if err != nil {
		m.fetchErrorTotal.WithLabelValues(dep).Inc()
		return
	}
	m.tagsFetched.WithLabelValues(dep).Set(float64(tagCount))
}

func (m *Metrics) OnResolved(_ context.Context, _ string, found bool) {
	outcome := "none"
	if found {
		outcome = "found"
	}
	m.resolvedTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) OnRunComplete(_ context.Context, state string, _ int, d time.Duration, _ error) {
	m.runTotal.WithLabelValues(state).Inc()
	m.runDuration.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheTotal.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	m.httpTotal.WithLabelValues(host, strconv.Itoa(code)).Inc()
	m.httpDuration.Observe(d.Seconds())
}

func (m *Metrics) OnError(context.Context, string, string, string, error) {
	m.httpErrorTotal.Inc()
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)
