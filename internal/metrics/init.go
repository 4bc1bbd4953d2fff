package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AppInfo exposes build information as a constant gauge.
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "vidstream_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics(version, commit string) {
	AppInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)

	for _, outcome := range []string{"success", "failure"} {
		EncodeJobsSettled.WithLabelValues(outcome)
	}

	for _, kind := range []string{"passthrough", "reencode"} {
		EncodeDecisions.WithLabelValues(kind)
	}

	for _, result := range []string{"served", "pending", "rejected"} {
		SegmentRequests.WithLabelValues(result)
	}

	for _, status := range []string{"success", "error"} {
		ThumbnailGenerations.WithLabelValues(status)
	}
}
