package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	dbQueryDuration *prometheus.HistogramVec
	eventsCreated   *prometheus.CounterVec
	uploadDuration  *prometheus.HistogramVec
	slugCollisions  prometheus.Counter
	mediaCleanups   *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	eventsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_created_total",
		Help: "Event creation attempts by outcome code",
	}, []string{"result"})

	uploadDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "media_upload_duration_seconds",
		Help:    "Duration of image uploads to the media host",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"result"})

	slugCollisions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "event_slug_collisions_total",
		Help: "Inserts rejected by the slug unique index and retried",
	})

	mediaCleanups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_cleanup_total",
		Help: "Orphaned image deletions by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLookups, cacheLatency, dbQueryDuration,
		eventsCreated, uploadDuration, slugCollisions, mediaCleanups, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLookups:    cacheLookups,
		cacheLatency:    cacheLatency,
		dbQueryDuration: dbQueryDuration,
		eventsCreated:   eventsCreated,
		uploadDuration:  uploadDuration,
		slugCollisions:  slugCollisions,
		mediaCleanups:   mediaCleanups,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordEventCreation counts a create attempt under its outcome code.
func (m *MetricsService) RecordEventCreation(result string) {
	if m == nil {
		return
	}
	m.eventsCreated.WithLabelValues(result).Inc()
}

// ObserveUpload records one media host call.
func (m *MetricsService) ObserveUpload(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if !success {
		result = "error"
	}
	m.uploadDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordSlugCollision counts an insert retried after a unique violation.
func (m *MetricsService) RecordSlugCollision() {
	if m == nil {
		return
	}
	m.slugCollisions.Inc()
}

// RecordMediaCleanup counts an orphaned image deletion.
func (m *MetricsService) RecordMediaCleanup(success bool) {
	if m == nil {
		return
	}
	if success {
		m.mediaCleanups.WithLabelValues("ok").Inc()
	} else {
		m.mediaCleanups.WithLabelValues("error").Inc()
	}
}
