package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"vidstream/internal/assetid"
	"vidstream/internal/hls"
	"vidstream/internal/logging"
	"vidstream/internal/mediatypes"
	"vidstream/internal/metrics"
)

// GetManifest ensures an HLS stream exists for the asset and serves its
// manifest. The first request for an uncached asset blocks until the
// encoder produces the manifest, then returns while segments are still
// being written.
func (h *Handlers) GetManifest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	absPath, _, err := h.resolveAsset(id)
	if err != nil {
		if errors.Is(err, assetid.ErrInvalidID) {
			writeJSONError(w, "invalid asset id", http.StatusBadRequest)
			return
		}
		writeJSONError(w, "asset not found", http.StatusNotFound)
		return
	}

	state, err := h.orchestrator.EnsureStream(r.Context(), id, absPath)
	switch {
	case err == nil:
	case errors.Is(err, hls.ErrBusy):
		w.Header().Set("Retry-After", "5")
		writeJSONError(w, "all encode slots are busy, retry shortly", http.StatusAccepted)
		return
	case errors.Is(err, context.Canceled):
		// Client went away while waiting; nothing to send.
		return
	default:
		logging.Error("stream setup failed for %s: %v", absPath, err)
		writeJSONError(w, "failed to prepare stream", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", mediatypes.ManifestContentType)
	// The manifest grows while the encode runs; clients must re-fetch it.
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, state.Manifest)
}

// GetSegment serves one already-produced MPEG-TS segment. It never
// triggers orchestration: a segment either exists in the stream cache or
// the response is 404 and the player retries off the manifest.
func (h *Handlers) GetSegment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	segment := vars["segment"]

	if !mediatypes.IsSegmentName(segment) {
		metrics.SegmentRequests.WithLabelValues("rejected").Inc()
		writeJSONError(w, "no such segment", http.StatusNotFound)
		return
	}

	if _, err := assetid.Decode(id); err != nil {
		metrics.SegmentRequests.WithLabelValues("rejected").Inc()
		writeJSONError(w, "no such segment", http.StatusNotFound)
		return
	}

	path := filepath.Join(h.orchestrator.StreamDir(id), segment)

	if !fileExists(path) {
		metrics.SegmentRequests.WithLabelValues("pending").Inc()
		writeJSONError(w, "segment not yet available", http.StatusNotFound)
		return
	}

	metrics.SegmentRequests.WithLabelValues("served").Inc()
	w.Header().Set("Content-Type", mediatypes.SegmentContentType)
	http.ServeFile(w, r, path)
}
