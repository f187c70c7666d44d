package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	StoreOperations     *prometheus.HistogramVec
	ActiveSubscriptions prometheus.Gauge
	NotificationsTotal  *prometheus.CounterVec
	JobRuns             *prometheus.CounterVec
	CacheLookups        *prometheus.CounterVec
}

// NewMetrics creates metrics registered on the default registry
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates metrics registered on reg; tests pass a fresh registry
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		StoreOperations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Time taken by document store operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection", "operation", "outcome"}),
		ActiveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_subscriptions",
			Help:      "The number of live query subscriptions",
		}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "The total number of notifications by final status",
		}, []string{"kind", "status"}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "The total number of scheduled job runs",
		}, []string{"job", "outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_lookups_total",
			Help:      "Response cache hits and misses",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.HTTPRequests,
			m.HTTPDuration,
			m.StoreOperations,
			m.ActiveSubscriptions,
			m.NotificationsTotal,
			m.JobRuns,
			m.CacheLookups,
		)
	}

	return m
}

// NewNopMetrics returns unregistered collectors
func NewNopMetrics() *Metrics {
	return NewMetricsWithRegistry("test", nil)
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveStore records the outcome of one store call
func (m *Metrics) ObserveStore(collection, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.StoreOperations.WithLabelValues(collection, operation, outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) SubscriptionOpened() {
	if m != nil {
		m.ActiveSubscriptions.Inc()
	}
}

func (m *Metrics) SubscriptionClosed() {
	if m != nil {
		m.ActiveSubscriptions.Dec()
	}
}

func (m *Metrics) RecordNotification(kind, status string) {
	if m != nil {
		m.NotificationsTotal.WithLabelValues(kind, status).Inc()
	}
}

func (m *Metrics) RecordJobRun(job string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.JobRuns.WithLabelValues(job, outcome).Inc()
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}
