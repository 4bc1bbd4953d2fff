package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"vidstream/internal/catalog"
	"vidstream/internal/hls"
	"vidstream/internal/startup"
	"vidstream/internal/thumbs"
)

type Handlers struct {
	catalog      *catalog.Service
	orchestrator *hls.Orchestrator
	thumbs       *thumbs.Generator
	libraryDir   string
	startedAt    time.Time
}

func New(cat *catalog.Service, orch *hls.Orchestrator, gen *thumbs.Generator, config *startup.Config) *Handlers {
	return &Handlers{
		catalog:      cat,
		orchestrator: orch,
		thumbs:       gen,
		libraryDir:   config.LibraryDir,
		startedAt:    time.Now(),
	}
}

// RegisterRoutes mounts all application routes on the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Health and version endpoints
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	// Catalog API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/catalog", h.GetCatalog).Methods(http.MethodGet)
	api.HandleFunc("/browse", h.Browse).Methods(http.MethodGet)
	api.HandleFunc("/asset/{id}", h.GetAsset).Methods(http.MethodGet)
	api.HandleFunc("/thumbnail/{id}", h.GetThumbnail).Methods(http.MethodGet)
	api.HandleFunc("/cache/clear", h.ClearCache).Methods(http.MethodPost)

	// Streaming endpoints
	stream := r.PathPrefix("/stream").Subrouter()
	stream.HandleFunc("/{id}/manifest", h.GetManifest).Methods(http.MethodGet)
	stream.HandleFunc("/{id}/{segment}", h.GetSegment).Methods(http.MethodGet)
}
