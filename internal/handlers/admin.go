package handlers

import (
	"net/http"

	"vidstream/internal/logging"
)

// ClearCacheResponse reports the outcome of a cache purge.
type ClearCacheResponse struct {
	Status     string `json:"status"`
	FreedBytes int64  `json:"freedBytes"`
}

// ClearCache removes all cached stream output. Thumbnails are kept: they
// are cheap, immutable, and expensive to regenerate in bulk.
func (h *Handlers) ClearCache(w http.ResponseWriter, _ *http.Request) {
	freed, err := h.orchestrator.ClearCache()
	if err != nil {
		logging.Error("cache clear failed: %v", err)
		writeJSONError(w, "failed to clear cache", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ClearCacheResponse{
		Status:     "ok",
		FreedBytes: freed,
	})
}
