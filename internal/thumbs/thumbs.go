package thumbs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"vidstream/internal/gate"
	"vidstream/internal/logging"
	"vidstream/internal/metrics"
	"vidstream/internal/probe"
)

// ErrBusy means every thumbnail slot is occupied.
var ErrBusy = errors.New("all thumbnail slots are busy")

const (
	thumbSubdir = "thumbnails"

	// Output dimensions; sources are fitted inside, preserving aspect.
	thumbWidth  = 640
	thumbHeight = 360

	jpegQuality = 80

	// Capture point for videos long enough to have skipped any intro.
	captureFraction = 0.10
	minCaptureLen   = 10 * time.Second
	fallbackOffset  = 3 * time.Second
)

// Generator produces and caches JPEG thumbnails for library videos.
// Thumbnails are cached permanently under <cache>/thumbnails/<id>.jpg;
// a given asset id is extracted at most once per cache lifetime.
type Generator struct {
	cacheDir  string
	prober    probe.Prober
	extractor Extractor
	gate      *gate.Gate
}

// New creates a Generator writing into cacheDir.
func New(cacheDir string, prober probe.Prober, extractor Extractor, g *gate.Gate) *Generator {
	return &Generator{
		cacheDir:  cacheDir,
		prober:    prober,
		extractor: extractor,
		gate:      g,
	}
}

// CachePath returns the cache location for an asset's thumbnail.
func (g *Generator) CachePath(id string) string {
	return filepath.Join(g.cacheDir, thumbSubdir, id+".jpg")
}

// captureOffset picks the frame capture point from the source duration:
// 10% in for videos of at least ten seconds, a fixed 3s otherwise. An
// unknown duration (zero) also gets the fallback.
func captureOffset(duration time.Duration) time.Duration {
	if duration >= minCaptureLen {
		return time.Duration(float64(duration) * captureFraction)
	}
	return fallbackOffset
}

// Thumbnail returns JPEG thumbnail bytes for the asset, generating and
// caching them on first request. When no extraction slot is free it
// fails fast with ErrBusy.
func (g *Generator) Thumbnail(ctx context.Context, id, srcPath string) ([]byte, error) {
	cachePath := g.CachePath(id)
	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.ThumbnailCacheHits.Inc()
		return data, nil
	}
	metrics.ThumbnailCacheMisses.Inc()

	if !g.gate.TryAcquire() {
		metrics.ThumbnailBusy.Inc()
		return nil, ErrBusy
	}
	defer func() {
		g.gate.Release()
		metrics.ThumbnailSlotsActive.Set(float64(g.gate.Active()))
	}()
	metrics.ThumbnailSlotsActive.Set(float64(g.gate.Active()))

	// Another request may have finished the same thumbnail while this one
	// waited on the gate.
	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.ThumbnailCacheHits.Inc()
		return data, nil
	}

	start := time.Now()
	data, err := g.generate(ctx, srcPath)
	if err != nil {
		metrics.ThumbnailGenerations.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ThumbnailGenerations.WithLabelValues("success").Inc()
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())

	if err := g.writeCache(cachePath, data); err != nil {
		// Serving the bytes still works; only the cache write failed.
		logging.Warn("failed to cache thumbnail for %s: %v", srcPath, err)
	}

	return data, nil
}

// generate extracts a frame, fits it into the thumbnail box, and encodes
// it as JPEG.
func (g *Generator) generate(ctx context.Context, srcPath string) ([]byte, error) {
	var duration time.Duration
	if info, err := g.prober.Probe(ctx, srcPath); err != nil {
		logging.Warn("Probe failed for %s, using fallback capture offset: %v", srcPath, err)
	} else {
		duration = time.Duration(info.Duration * float64(time.Second))
	}

	raw, err := g.extractor.Extract(ctx, srcPath, captureOffset(duration))
	if err != nil {
		return nil, fmt.Errorf("frame extraction failed: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode extracted frame: %w", err)
	}

	img = imaging.Fit(img, thumbWidth, thumbHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}

// writeCache persists thumbnail bytes atomically via a temp file rename.
func (g *Generator) writeCache(cachePath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(cachePath), ".thumb-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, cachePath)
}
