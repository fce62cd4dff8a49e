package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"soulhealing/internal/structures"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveStorageDuration(driver, operation string, duration time.Duration, err error)
	ObserveBackupDuration(operation string, duration time.Duration)
	SetBackupRecords(kind string, count int)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	storageDuration *prometheus.HistogramVec
	storageErrors   *prometheus.CounterVec
	backupDuration  *prometheus.HistogramVec
	backupRecords   *prometheus.GaugeVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveStorageDuration(driver, operation string, duration time.Duration, err error) {
	m.storageDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
	if err != nil {
		m.storageErrors.WithLabelValues(driver, operation).Inc()
	}
}

func (m *MetricsProvider) ObserveBackupDuration(operation string, duration time.Duration) {
	m.backupDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *MetricsProvider) SetBackupRecords(kind string, count int) {
	m.backupRecords.WithLabelValues(kind).Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// storageBuckets span 100µs to about 1.6s; local store calls rarely reach the
// millisecond range where DefBuckets begin.
var storageBuckets = prometheus.ExponentialBuckets(0.0001, 4, 8)

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soulhealing_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soulhealing_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soulhealing_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "soulhealing_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		storageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soulhealing_storage_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: storageBuckets,
		}, []string{"driver", "operation"}),

		storageErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soulhealing_storage_errors_total",
			Help: "Total number of failed storage operations",
		}, []string{"driver", "operation"}),

		backupDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soulhealing_backup_duration_seconds",
			Help:    "Duration of backup export, save and import in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		backupRecords: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "soulhealing_backup_records",
			Help: "Records per kind in the dataset last exported or imported",
		}, []string{"kind"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                             {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)             {}
func (n *noopMetrics) IncCacheHits()                                                {}
func (n *noopMetrics) IncCacheMisses()                                              {}
func (n *noopMetrics) ObserveStorageDuration(_, _ string, _ time.Duration, _ error) {}
func (n *noopMetrics) ObserveBackupDuration(_ string, _ time.Duration)              {}
func (n *noopMetrics) SetBackupRecords(_ string, _ int)                             {}
