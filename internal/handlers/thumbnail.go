package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"vidstream/internal/assetid"
	"vidstream/internal/logging"
	"vidstream/internal/mediatypes"
	"vidstream/internal/thumbs"
)

// GetThumbnail serves the asset's JPEG thumbnail, generating it on first
// request.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
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

	data, err := h.thumbs.Thumbnail(r.Context(), id, absPath)
	switch {
	case err == nil:
	case errors.Is(err, thumbs.ErrBusy):
		w.Header().Set("Retry-After", "2")
		writeJSONError(w, "all thumbnail slots are busy, retry shortly", http.StatusAccepted)
		return
	default:
		logging.Error("thumbnail generation failed for %s: %v", absPath, err)
		writeJSONError(w, "failed to generate thumbnail", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", mediatypes.ThumbnailContentType)
	// Thumbnails are immutable per asset id.
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		logging.Debug("failed to write thumbnail response: %v", err)
	}
}
