// Package observability holds the process-wide Prometheus collectors used by
// the HTTP layer, the view pipeline, the cache and the invalidation consumer.
package observability

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "geodata"

type collectors struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	viewBuilds      *prometheus.CounterVec
	viewDuration    *prometheus.HistogramVec
	featuresEmitted *prometheus.CounterVec
	rowsDropped     *prometheus.CounterVec
	cacheResults    *prometheus.CounterVec
	cacheOps        *prometheus.CounterVec
	cacheOpDuration *prometheus.HistogramVec
	invalidations   *prometheus.CounterVec
	consumerErrors  *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
}

var current atomic.Pointer[collectors]

// Init registers all collectors on reg. With enabled=false every Observe call
// becomes a no-op. Calling Init again replaces the active set.
func Init(reg prometheus.Registerer, enabled bool) {
	if !enabled || reg == nil {
		current.Store(nil)
		return
	}
	f := promauto.With(reg)
	buckets := prometheus.ExponentialBuckets(0.001, 2, 14) // 1ms to ~8s

	c := &collectors{
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help: "HTTP request latency.", Buckets: buckets,
		}, []string{"method", "route"}),
		viewBuilds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "view_builds_total",
			Help: "View builds by view kind and outcome.",
		}, []string{"view", "outcome"}),
		viewDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "view_build_duration_seconds",
			Help: "Time spent building a view from rows.", Buckets: buckets,
		}, []string{"view"}),
		featuresEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "features_emitted_total",
			Help: "GeoJSON features emitted per view kind.",
		}, []string{"view"}),
		rowsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_dropped_total",
			Help: "Rows removed by a pipeline stage.",
		}, []string{"stage"}),
		cacheResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_results_total",
			Help: "View cache lookups by tier and outcome.",
		}, []string{"tier", "outcome"}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_ops_total",
			Help: "Redis operations by op and result.",
		}, []string{"op", "result"}),
		cacheOpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "cache_op_duration_seconds",
			Help: "Redis operation latency.", Buckets: buckets,
		}, []string{"op"}),
		invalidations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "invalidation_events_total",
			Help: "Table update events by outcome.",
		}, []string{"outcome"}),
		consumerErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "kafka_consumer_errors_total",
			Help: "Kafka consumer errors by stage.",
		}, []string{"stage"}),
		dbQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "db_query_duration_seconds",
			Help: "Database query latency.", Buckets: buckets,
		}, []string{"query"}),
	}
	current.Store(c)
}

func ObserveHTTP(method, route string, status int, seconds float64) {
	if c := current.Load(); c != nil {
		c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(method, route).Observe(seconds)
	}
}

func ObserveViewBuild(view string, err error, seconds float64) {
	if c := current.Load(); c != nil {
		c.viewBuilds.WithLabelValues(view, result(err)).Inc()
		c.viewDuration.WithLabelValues(view).Observe(seconds)
	}
}

func AddFeaturesEmitted(view string, n int) {
	if c := current.Load(); c != nil && n > 0 {
		c.featuresEmitted.WithLabelValues(view).Add(float64(n))
	}
}

func AddRowsDropped(stage string, n int) {
	if c := current.Load(); c != nil && n > 0 {
		c.rowsDropped.WithLabelValues(stage).Add(float64(n))
	}
}

// IncCacheResult records a cache outcome; tier is "lru" or "redis", outcome
// "hit", "miss" or "stale_write".
func IncCacheResult(tier, outcome string) {
	if c := current.Load(); c != nil {
		c.cacheResults.WithLabelValues(tier, outcome).Inc()
	}
}

func ObserveCacheOp(op string, err error, seconds float64) {
	if c := current.Load(); c != nil {
		c.cacheOps.WithLabelValues(op, result(err)).Inc()
		c.cacheOpDuration.WithLabelValues(op).Observe(seconds)
	}
}

func IncInvalidation(outcome string) {
	if c := current.Load(); c != nil {
		c.invalidations.WithLabelValues(outcome).Inc()
	}
}

func IncKafkaConsumerError(stage string) {
	if c := current.Load(); c != nil {
		c.consumerErrors.WithLabelValues(stage).Inc()
	}
}

func ObserveDBQuery(query string, seconds float64) {
	if c := current.Load(); c != nil {
		c.dbQueryDuration.WithLabelValues(query).Observe(seconds)
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
