package metrics

import (
	"testing"
)

func TestHTTPMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestEncodeMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"EncodeJobsStarted", EncodeJobsStarted},
		{"EncodeJobsSettled", EncodeJobsSettled},
		{"EncodeJobsBusy", EncodeJobsBusy},
		{"EncodeCacheHits", EncodeCacheHits},
		{"EncodeDecisions", EncodeDecisions},
		{"EncodeSlotsActive", EncodeSlotsActive},
		{"ManifestWaitDuration", ManifestWaitDuration},
		{"SegmentRequests", SegmentRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestThumbnailMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"ThumbnailGenerations", ThumbnailGenerations},
		{"ThumbnailGenerationDuration", ThumbnailGenerationDuration},
		{"ThumbnailCacheHits", ThumbnailCacheHits},
		{"ThumbnailCacheMisses", ThumbnailCacheMisses},
		{"ThumbnailBusy", ThumbnailBusy},
		{"ThumbnailSlotsActive", ThumbnailSlotsActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestCatalogMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"CatalogRebuilds", CatalogRebuilds},
		{"CatalogRebuildErrors", CatalogRebuildErrors},
		{"CatalogRebuildDuration", CatalogRebuildDuration},
		{"CatalogAssets", CatalogAssets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetrics(t *testing.T) {
	// Must be safe to call more than once.
	InitializeMetrics("test", "abc1234")
	InitializeMetrics("test", "abc1234")

	if AppInfo == nil {
		t.Fatal("AppInfo metric is nil")
	}
}
