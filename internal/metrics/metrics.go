package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editcore_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "editcore_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Editing Metrics
	EditOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editcore_edit_ops_total",
			Help: "Total number of timeline editing operations",
		},
		[]string{"op", "status"},
	)

	UndoTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "editcore_undo_total",
			Help: "Total number of undo operations",
		},
	)

	RedoTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "editcore_redo_total",
			Help: "Total number of redo operations",
		},
	)

	AssetFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "editcore_asset_fallbacks_total",
			Help: "Clip placements that fell back to the default duration because the asset was not resolvable",
		},
	)

	TabsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "editcore_tabs_active",
			Help: "Number of open timeline tabs",
		},
	)

	ClipsPerTab = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "editcore_clips_per_tab",
			Help: "Number of clips in each open tab",
		},
		[]string{"tab_id"},
	)

	// Compositor Metrics
	CompositeEvaluationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "editcore_composite_evaluations_total",
			Help: "Total number of layer resolutions",
		},
	)

	CompositeLayers = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "editcore_composite_layers",
			Help:    "Number of active layers per composite evaluation",
			Buckets: []float64{0, 1, 2, 3, 4, 6, 8, 12, 16},
		},
	)

	ReframeComputationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editcore_reframe_computations_total",
			Help: "Total number of auto-reframe transform computations",
		},
		[]string{"mode"},
	)

	// Persistence Metrics
	ProjectSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editcore_project_saves_total",
			Help: "Total number of project saves",
		},
		[]string{"status"},
	)

	ProjectSaveCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "editcore_project_saves_coalesced_total",
			Help: "Save requests absorbed by the debounce window",
		},
	)

	// Queue Metrics
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "editcore_queue_depth",
			Help: "Number of messages waiting in each queue",
		},
		[]string{"queue"},
	)

	// Storage Metrics
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editcore_storage_operations_total",
			Help: "Total number of object storage operations",
		},
		[]string{"operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "editcore_storage_operation_duration_seconds",
			Help:    "Object storage operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"operation"},
	)

	// Database Metrics
	DatabaseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editcore_database_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "status"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "editcore_database_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Cache Metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editcore_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editcore_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editcore_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordEditOp records a timeline editing operation
func RecordEditOp(op, status string) {
	EditOpsTotal.WithLabelValues(op, status).Inc()
}

// RecordComposite records one layer resolution
func RecordComposite(layerCount int) {
	CompositeEvaluationsTotal.Inc()
	CompositeLayers.Observe(float64(layerCount))
}

// RecordReframe records one auto-reframe computation
func RecordReframe(mode string) {
	ReframeComputationsTotal.WithLabelValues(mode).Inc()
}

// RecordProjectSave records a project save attempt
func RecordProjectSave(status string) {
	ProjectSavesTotal.WithLabelValues(status).Inc()
}

// RecordStorageOperation records a storage operation
func RecordStorageOperation(operation, status string, duration float64) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	StorageOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordDatabaseOperation records a database operation
func RecordDatabaseOperation(operation, status string, duration float64) {
	DatabaseOperationsTotal.WithLabelValues(operation, status).Inc()
	DatabaseOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCacheAccess records cache hit or miss
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues(cacheType).Inc()
	} else {
		CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
