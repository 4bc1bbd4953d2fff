package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"vidstream/internal/assetid"
	"vidstream/internal/catalog"
	"vidstream/internal/gate"
	"vidstream/internal/handlers"
	"vidstream/internal/hls"
	"vidstream/internal/mediatypes"
	"vidstream/internal/probe"
	"vidstream/internal/startup"
	"vidstream/internal/thumbs"
)

type stubProber struct{}

func (stubProber) Probe(ctx context.Context, path string) (*probe.MediaInfo, error) {
	return &probe.MediaInfo{VideoCodec: "h264", Duration: 60}, nil
}

type stubProcess struct {
	once sync.Once
	exit chan error
}

func (p *stubProcess) Wait() error { return <-p.exit }

func (p *stubProcess) Kill() error {
	p.once.Do(func() { p.exit <- errors.New("killed") })
	return nil
}

// stubRunner starts processes that never exit until killed.
type stubRunner struct {
	mu    sync.Mutex
	procs []*stubProcess
}

func (r *stubRunner) Start(name string, args []string) (hls.Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := &stubProcess{exit: make(chan error, 1)}
	r.procs = append(r.procs, p)
	return p, nil
}

type stubExtractor struct {
	err error
}

func (e *stubExtractor) Extract(ctx context.Context, srcPath string, offset time.Duration) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 320, 240))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type testEnv struct {
	router       *mux.Router
	orchestrator *hls.Orchestrator
	libraryDir   string
}

func newTestEnv(t *testing.T, extractErr error, manifestTimeout time.Duration) *testEnv {
	t.Helper()

	libraryDir := t.TempDir()
	cacheDir := t.TempDir()

	for _, rel := range []string{"movies/alpha.mp4", "beta.mkv"} {
		path := filepath.Join(libraryDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte("fake video"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	cat := catalog.New(libraryDir, mediatypes.NewExtensionSet(mediatypes.DefaultVideoExtensions), time.Minute)

	orch := hls.New(hls.Config{
		CacheDir:        cacheDir,
		ManifestTimeout: manifestTimeout,
		PollInterval:    5 * time.Millisecond,
	}, stubProber{}, &stubRunner{}, gate.New(1))
	t.Cleanup(orch.Shutdown)

	gen := thumbs.New(cacheDir, stubProber{}, &stubExtractor{err: extractErr}, gate.New(1))

	h := handlers.New(cat, orch, gen, &startup.Config{LibraryDir: libraryDir})
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	return &testEnv{router: router, orchestrator: orch, libraryDir: libraryDir}
}

func (env *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func alphaID() string { return assetid.Encode("movies/alpha.mp4") }

func TestGetCatalog(t *testing.T) {
	env := newTestEnv(t, nil, 2*time.Second)

	rec := env.get(t, "/api/catalog")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var assets []catalog.Asset
	if err := json.Unmarshal(rec.Body.Bytes(), &assets); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(assets))
	}

	rec = env.get(t, "/api/catalog?query=alpha")
	if err := json.Unmarshal(rec.Body.Bytes(), &assets); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(assets) != 1 || assets[0].Name != "alpha.mp4" {
		t.Errorf("query=alpha returned %+v, want just alpha.mp4", assets)
	}
}

func TestGetAsset(t *testing.T) {
	env := newTestEnv(t, nil, 2*time.Second)

	rec := env.get(t, "/api/asset/"+alphaID())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp handlers.AssetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Name != "alpha.mp4" {
		t.Errorf("Name = %q, want alpha.mp4", resp.Name)
	}
	if want := "/stream/" + alphaID() + "/manifest"; resp.ManifestURL != want {
		t.Errorf("ManifestURL = %q, want %q", resp.ManifestURL, want)
	}
}

func TestGetAssetErrors(t *testing.T) {
	env := newTestEnv(t, nil, 2*time.Second)

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"unknown file", assetid.Encode("movies/missing.mp4"), http.StatusNotFound},
		{"malformed id", "%21%21%21", http.StatusBadRequest},
		{"escaping id", assetid.Encode("../etc/passwd"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.get(t, "/api/asset/"+tt.id)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestBrowse(t *testing.T) {
	env := newTestEnv(t, nil, 2*time.Second)

	rec := env.get(t, "/api/browse")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var listing catalog.Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(listing.Folders) != 1 || listing.Folders[0].Name != "movies" {
		t.Errorf("root folders = %+v, want [movies]", listing.Folders)
	}
	if len(listing.Assets) != 1 || listing.Assets[0].Name != "beta.mkv" {
		t.Errorf("root assets = %+v, want [beta.mkv]", listing.Assets)
	}

	if rec := env.get(t, "/api/browse?dir=movies"); rec.Code != http.StatusOK {
		t.Errorf("browse movies status = %d, want 200", rec.Code)
	}
	if rec := env.get(t, "/api/browse?dir=.."); rec.Code != http.StatusForbidden {
		t.Errorf("browse .. status = %d, want 403", rec.Code)
	}
	if rec := env.get(t, "/api/browse?dir=nonexistent"); rec.Code != http.StatusNotFound {
		t.Errorf("browse nonexistent status = %d, want 404", rec.Code)
	}
}

func TestGetManifestCached(t *testing.T) {
	env := newTestEnv(t, nil, 2*time.Second)
	id := alphaID()

	manifest := env.orchestrator.ManifestPath(id)
	if err := os.MkdirAll(filepath.Dir(manifest), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(manifest, []byte("#EXTM3U\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rec := env.get(t, "/stream/"+id+"/manifest")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != mediatypes.ManifestContentType {
		t.Errorf("Content-Type = %q, want %q", got, mediatypes.ManifestContentType)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("#EXTM3U")) {
		t.Error("manifest body missing #EXTM3U header")
	}
}

func TestGetManifestErrors(t *testing.T) {
	env := newTestEnv(t, nil, 2*time.Second)

	if rec := env.get(t, "/stream/"+assetid.Encode("nope.mp4")+"/manifest"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown asset status = %d, want 404", rec.Code)
	}
	if rec := env.get(t, "/stream/%21%21%21/manifest"); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", rec.Code)
	}
}

func TestGetManifestTimeoutThenBusy(t *testing.T) {
	env := newTestEnv(t, nil, 50*time.Millisecond)

	// The encoder never produces a manifest, so the first request times
	// out server-side.
	rec := env.get(t, "/stream/"+assetid.Encode("beta.mkv")+"/manifest")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("timeout status = %d, want 500", rec.Code)
	}

	// That job still holds the only encode slot, so another asset is shed.
	rec = env.get(t, "/stream/"+alphaID()+"/manifest")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("busy status = %d, want 202", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("busy response missing Retry-After header")
	}
}

func TestGetSegment(t *testing.T) {
	env := newTestEnv(t, nil, 2*time.Second)
	id := alphaID()

	dir := env.orchestrator.StreamDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "seg00000.ts"), []byte("tsdata"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rec := env.get(t, "/stream/"+id+"/seg00000.ts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != mediatypes.SegmentContentType {
		t.Errorf("Content-Type = %q, want %q", got, mediatypes.SegmentContentType)
	}

	if rec := env.get(t, "/stream/"+id+"/seg00001.ts"); rec.Code != http.StatusNotFound {
		t.Errorf("missing segment status = %d, want 404", rec.Code)
	}
	if rec := env.get(t, "/stream/"+id+"/notasegment.txt"); rec.Code != http.StatusNotFound {
		t.Errorf("non-segment name status = %d, want 404", rec.Code)
	}
	if rec := env.get(t, "/stream/"+id+"/.hidden.ts"); rec.Code != http.StatusNotFound {
		t.Errorf("hidden name status = %d, want 404", rec.Code)
	}
}

func TestGetSegmentSupportsRanges(t *testing.T) {
	env := newTestEnv(t, nil, 2*time.Second)
	id := alphaID()

	dir := env.orchestrator.StreamDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "seg00000.ts"), []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/stream/"+id+"/seg00000.ts", nil)
	req.Header.Set("Range", "bytes=2-5")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if rec.Body.String() != "2345" {
		t.Errorf("range body = %q, want %q", rec.Body.String(), "2345")
	}
}

func TestGetThumbnail(t *testing.T) {
	env := newTestEnv(t, nil, 2*time.Second)

	rec := env.get(t, "/api/thumbnail/"+alphaID())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != mediatypes.ThumbnailContentType {
		t.Errorf("Content-Type = %q, want %q", got, mediatypes.ThumbnailContentType)
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Error("thumbnail response missing Cache-Control header")
	}
}

func TestGetThumbnailFailure(t *testing.T) {
	env := newTestEnv(t, errors.New("extraction broke"), 2*time.Second)

	rec := env.get(t, "/api/thumbnail/"+alphaID())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestClearCache(t *testing.T) {
	env := newTestEnv(t, nil, 2*time.Second)
	id := alphaID()

	dir := env.orchestrator.StreamDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "seg00000.ts"), make([]byte, 2048), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp handlers.ClearCacheResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.FreedBytes < 2048 {
		t.Errorf("FreedBytes = %d, want at least 2048", resp.FreedBytes)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil, 2*time.Second)

	for _, path := range []string{"/health", "/healthz", "/livez", "/readyz", "/version"} {
		if rec := env.get(t, path); rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}

	rec := env.get(t, "/health")
	var health handlers.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("invalid health JSON: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("health status = %q, want healthy", health.Status)
	}
	if health.CatalogAssets != 2 {
		t.Errorf("CatalogAssets = %d, want 2", health.CatalogAssets)
	}
}
