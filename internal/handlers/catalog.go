package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"vidstream/internal/assetid"
	"vidstream/internal/catalog"
)

// AssetResponse is the detail payload for a single asset.
type AssetResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	RelativePath string `json:"relativePath"`
	ManifestURL  string `json:"manifestUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// resolveAsset maps an opaque id to an on-disk library file. It returns
// assetid.ErrInvalidID for malformed or escaping ids and os.ErrNotExist
// when the id is well-formed but no such file exists.
func (h *Handlers) resolveAsset(id string) (absPath, relPath string, err error) {
	absPath, relPath, err = assetid.Resolve(h.libraryDir, id)
	if err != nil {
		return "", "", err
	}

	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		return "", "", os.ErrNotExist
	}

	return absPath, relPath, nil
}

// GetCatalog returns the flat asset catalog, optionally filtered by a
// case-insensitive name substring.
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	assets, err := h.catalog.List(query)
	if err != nil {
		writeJSONError(w, "failed to read catalog", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, assets)
}

// GetAsset returns details for one asset, including its manifest URL.
func (h *Handlers) GetAsset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	_, relPath, err := h.resolveAsset(id)
	if err != nil {
		if errors.Is(err, assetid.ErrInvalidID) {
			writeJSONError(w, "invalid asset id", http.StatusBadRequest)
			return
		}
		writeJSONError(w, "asset not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AssetResponse{
		ID:           id,
		Name:         filepath.Base(relPath),
		RelativePath: relPath,
		ManifestURL:  "/stream/" + id + "/manifest",
		ThumbnailURL: "/api/thumbnail/" + id,
	})
}

// Browse returns the folders and assets directly inside one library
// directory.
func (h *Handlers) Browse(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")

	listing, err := h.catalog.Browse(dir)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidPath):
			writeJSONError(w, "directory outside library", http.StatusForbidden)
		case errors.Is(err, catalog.ErrNotFound):
			writeJSONError(w, "directory not found", http.StatusNotFound)
		default:
			writeJSONError(w, "failed to browse library", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, listing)
}
