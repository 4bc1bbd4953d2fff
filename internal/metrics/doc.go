// Package metrics provides Prometheus instrumentation for the vidstream server.
//
// All metrics are prefixed with "vidstream_" to avoid naming collisions with
// other applications. Metrics are registered with the default Prometheus
// registry via promauto, so importing this package is enough to make them
// available; expose them by mounting promhttp.Handler() on the metrics
// endpoint.
//
// # Metric Categories
//
// ## HTTP Metrics
//
// Track HTTP request performance:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Transcode Metrics
//
// Monitor the on-demand HLS pipeline:
//   - EncodeJobsStarted: Counter of encoder processes spawned
//   - EncodeJobsSettled: Counter of settled jobs by outcome (success/failure)
//   - EncodeJobsBusy: Counter of requests shed because no encode slot was free
//   - EncodeCacheHits: Counter of stream requests satisfied from the cache
//   - EncodeDecisions: Counter of codec decisions (passthrough/reencode)
//   - EncodeSlotsActive: Gauge of encode slots currently held
//   - ManifestWaitDuration: Histogram of time until the manifest appeared
//
// ## Segment Metrics
//
//   - SegmentRequests: Counter of segment requests by result
//     (served/pending/rejected)
//
// ## Thumbnail Metrics
//
//   - ThumbnailGenerations: Counter of extractions by status
//   - ThumbnailGenerationDuration: Histogram of extraction time
//   - ThumbnailCacheHits / ThumbnailCacheMisses: Cache effectiveness counters
//   - ThumbnailBusy: Counter of requests shed because no slot was free
//   - ThumbnailSlotsActive: Gauge of thumbnail slots currently held
//
// ## Catalog Metrics
//
//   - CatalogRebuilds / CatalogRebuildErrors: Snapshot rebuild counters
//   - CatalogRebuildDuration: Histogram of rebuild duration
//   - CatalogAssets: Gauge of assets in the current snapshot
//
// ## Application Info
//
//   - AppInfo: Gauge with version, commit, and Go version labels
//
// # Recording Metrics
//
// Import this package and use the exported metric variables:
//
//	metrics.EncodeJobsStarted.Inc()
//	metrics.EncodeJobsSettled.WithLabelValues("success").Inc()
//	metrics.ManifestWaitDuration.Observe(elapsed.Seconds())
//
// Call [InitializeMetrics] once at startup to pre-populate label
// combinations so every series is present from the first scrape.
package metrics
