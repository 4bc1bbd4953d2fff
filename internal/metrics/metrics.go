package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstream_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidstream_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidstream_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Transcode orchestrator metrics
var (
	EncodeJobsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidstream_encode_jobs_started_total",
			Help: "Total number of encoder processes spawned",
		},
	)

	EncodeJobsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstream_encode_jobs_settled_total",
			Help: "Total number of encode jobs settled by outcome",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	EncodeJobsBusy = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidstream_encode_jobs_busy_total",
			Help: "Total number of encode requests shed because no slot was free",
		},
	)

	EncodeCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidstream_encode_cache_hits_total",
			Help: "Total number of stream requests satisfied by a cached manifest",
		},
	)

	EncodeDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstream_encode_decisions_total",
			Help: "Total number of codec decisions by kind",
		},
		[]string{"kind"}, // "passthrough", "reencode"
	)

	EncodeSlotsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidstream_encode_slots_active",
			Help: "Number of encode slots currently held",
		},
	)

	ManifestWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidstream_manifest_wait_duration_seconds",
			Help:    "Time from job start until the manifest appeared on disk",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
	)
)

// Segment serving metrics
var (
	SegmentRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstream_segment_requests_total",
			Help: "Total number of segment requests by result",
		},
		[]string{"result"}, // "served", "pending", "rejected"
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidstream_thumbnail_generations_total",
			Help: "Total number of thumbnail extractions by status",
		},
		[]string{"status"}, // "success", "error"
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidstream_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail extraction duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidstream_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidstream_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)

	ThumbnailBusy = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidstream_thumbnail_busy_total",
			Help: "Total number of thumbnail requests shed because no slot was free",
		},
	)

	ThumbnailSlotsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidstream_thumbnail_slots_active",
			Help: "Number of thumbnail slots currently held",
		},
	)
)

// Catalog metrics
var (
	CatalogRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidstream_catalog_rebuilds_total",
			Help: "Total number of catalog snapshot rebuilds",
		},
	)

	CatalogRebuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidstream_catalog_rebuild_errors_total",
			Help: "Total number of failed catalog rebuilds",
		},
	)

	CatalogRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidstream_catalog_rebuild_duration_seconds",
			Help:    "Catalog rebuild duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	CatalogAssets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidstream_catalog_assets",
			Help: "Number of assets in the current catalog snapshot",
		},
	)
)
