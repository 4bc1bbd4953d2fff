package hls

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vidstream/internal/gate"
	"vidstream/internal/logging"
	"vidstream/internal/mediatypes"
	"vidstream/internal/metrics"
	"vidstream/internal/probe"
)

var (
	// ErrBusy means every encode slot is occupied by another asset.
	ErrBusy = errors.New("all encode slots are busy")

	// ErrManifestTimeout means the encoder ran but produced no manifest
	// within the configured window.
	ErrManifestTimeout = errors.New("timed out waiting for manifest")

	// ErrEncodeFailed means the encoder exited without producing usable
	// output.
	ErrEncodeFailed = errors.New("encoding failed")
)

// streamSubdir is the directory under the cache root holding per-asset
// HLS output.
const streamSubdir = "streams"

// Config holds orchestrator tunables.
type Config struct {
	CacheDir        string
	FFmpegPath      string
	SegmentSeconds  int
	SegmentWindow   int
	ManifestTimeout time.Duration
	PollInterval    time.Duration
}

// StreamState reports the outcome of EnsureStream.
type StreamState struct {
	Ready    bool
	Manifest string
}

// job tracks one in-flight encode. There is at most one job per asset id.
type job struct {
	id        string
	dir       string
	manifest  string
	startedAt time.Time

	ready chan struct{} // closed when the manifest appears on disk
	done  chan struct{} // closed at settlement
	err   error         // valid only after done is closed
}

// Orchestrator manages on-demand HLS encodes: one single-flight job per
// asset, bounded by an encode gate, with output cached under the cache
// directory.
type Orchestrator struct {
	cfg    Config
	prober probe.Prober
	runner Runner
	gate   *gate.Gate

	mu   sync.Mutex
	jobs map[string]*job

	processMu sync.Mutex
	processes map[string]Process
}

// New creates an Orchestrator. Zero config fields get defaults: 4s
// segments, 6-segment window, 30s manifest timeout, 250ms poll interval.
func New(cfg Config, prober probe.Prober, runner Runner, g *gate.Gate) *Orchestrator {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.SegmentSeconds <= 0 {
		cfg.SegmentSeconds = 4
	}
	if cfg.SegmentWindow <= 0 {
		cfg.SegmentWindow = 6
	}
	if cfg.ManifestTimeout <= 0 {
		cfg.ManifestTimeout = 30 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}

	return &Orchestrator{
		cfg:       cfg,
		prober:    prober,
		runner:    runner,
		gate:      g,
		jobs:      make(map[string]*job),
		processes: make(map[string]Process),
	}
}

// StreamDir returns the output directory for an asset's HLS stream.
func (o *Orchestrator) StreamDir(id string) string {
	return filepath.Join(o.cfg.CacheDir, streamSubdir, id)
}

// ManifestPath returns the manifest location for an asset's HLS stream.
func (o *Orchestrator) ManifestPath(id string) string {
	return filepath.Join(o.StreamDir(id), mediatypes.ManifestName)
}

// ActiveJobs returns the number of encode jobs currently in flight.
func (o *Orchestrator) ActiveJobs() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.jobs)
}

// SlotCapacity returns the configured encoder concurrency limit.
func (o *Orchestrator) SlotCapacity() int {
	return o.gate.Capacity()
}

// EnsureStream makes sure an HLS stream for the asset exists or is being
// produced, and blocks until the manifest is available. A manifest
// already on disk returns immediately without touching the encode gate.
// Concurrent calls for the same asset share one encoder process. When no
// encode slot is free and no job exists for the asset, ErrBusy is
// returned without queuing.
func (o *Orchestrator) EnsureStream(ctx context.Context, id, srcPath string) (*StreamState, error) {
	manifest := o.ManifestPath(id)
	if _, err := os.Stat(manifest); err == nil {
		metrics.EncodeCacheHits.Inc()
		return &StreamState{Ready: true, Manifest: manifest}, nil
	}

	o.mu.Lock()
	if j, ok := o.jobs[id]; ok {
		o.mu.Unlock()
		return o.await(ctx, j)
	}

	if !o.gate.TryAcquire() {
		o.mu.Unlock()
		metrics.EncodeJobsBusy.Inc()
		return nil, ErrBusy
	}

	j := &job{
		id:        id,
		dir:       o.StreamDir(id),
		manifest:  manifest,
		startedAt: time.Now(),
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
	}
	o.jobs[id] = j
	o.mu.Unlock()

	metrics.EncodeSlotsActive.Set(float64(o.gate.Active()))
	go o.run(j, srcPath)

	return o.await(ctx, j)
}

// await blocks until the job's manifest appears, the job settles, the
// caller's context is cancelled, or the manifest timeout elapses. The
// job itself runs to settlement regardless of how the wait ends.
func (o *Orchestrator) await(ctx context.Context, j *job) (*StreamState, error) {
	timer := time.NewTimer(o.cfg.ManifestTimeout)
	defer timer.Stop()

	select {
	case <-j.ready:
		return &StreamState{Ready: true, Manifest: j.manifest}, nil
	case <-j.done:
		if j.err != nil {
			return nil, j.err
		}
		// The job settled cleanly; the manifest must be on disk even if
		// the ready signal lost the select race.
		if _, err := os.Stat(j.manifest); err == nil {
			return &StreamState{Ready: true, Manifest: j.manifest}, nil
		}
		return nil, ErrEncodeFailed
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrManifestTimeout
	}
}

// run owns the full lifetime of one encode job. It settles exactly once:
// the gate slot is released, the registry entry removed, and done closed.
func (o *Orchestrator) run(j *job, srcPath string) {
	defer func() {
		o.gate.Release()
		metrics.EncodeSlotsActive.Set(float64(o.gate.Active()))

		o.mu.Lock()
		delete(o.jobs, j.id)
		o.mu.Unlock()

		close(j.done)
	}()

	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		j.err = fmt.Errorf("%w: creating stream directory: %v", ErrEncodeFailed, err)
		metrics.EncodeJobsSettled.WithLabelValues("failure").Inc()
		return
	}

	info, err := o.prober.Probe(context.Background(), srcPath)
	if err != nil {
		logging.Warn("Probe failed for %s, forcing re-encode: %v", srcPath, err)
		info = nil
	}

	reencode := needsReencode(info)
	if reencode {
		metrics.EncodeDecisions.WithLabelValues("reencode").Inc()
	} else {
		metrics.EncodeDecisions.WithLabelValues("passthrough").Inc()
	}
	logging.Debug("Encoding %s (reencode=%v)", srcPath, reencode)

	args := buildArgs(srcPath, j.dir, reencode, o.cfg.SegmentSeconds, o.cfg.SegmentWindow)

	proc, err := o.runner.Start(o.cfg.FFmpegPath, args)
	if err != nil {
		j.err = fmt.Errorf("%w: %v", ErrEncodeFailed, err)
		metrics.EncodeJobsSettled.WithLabelValues("failure").Inc()
		return
	}
	metrics.EncodeJobsStarted.Inc()

	o.processMu.Lock()
	o.processes[j.id] = proc
	o.processMu.Unlock()

	defer func() {
		o.processMu.Lock()
		delete(o.processes, j.id)
		o.processMu.Unlock()
	}()

	go o.watchManifest(j)

	waitErr := proc.Wait()

	if waitErr == nil {
		metrics.EncodeJobsSettled.WithLabelValues("success").Inc()
		return
	}

	// A crashed encoder that already wrote a manifest for this job still
	// produced a playable stream; readiness already handed to clients is
	// never revoked.
	if fi, statErr := os.Stat(j.manifest); statErr == nil && !fi.ModTime().Before(j.startedAt) {
		logging.Warn("Encoder for %s exited with error but manifest exists, keeping output: %v", srcPath, waitErr)
		metrics.EncodeJobsSettled.WithLabelValues("success").Inc()
		return
	}

	logging.Error("Encoding failed for %s: %v", srcPath, waitErr)
	metrics.EncodeJobsSettled.WithLabelValues("failure").Inc()
	if err := os.RemoveAll(j.dir); err != nil {
		logging.Warn("failed to remove stream directory %s: %v", j.dir, err)
	}
	j.err = fmt.Errorf("%w: %v", ErrEncodeFailed, waitErr)
}

// watchManifest polls the filesystem until the manifest appears, then
// closes the ready channel. It stops when the job settles.
func (o *Orchestrator) watchManifest(j *job) {
	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			if _, err := os.Stat(j.manifest); err == nil {
				metrics.ManifestWaitDuration.Observe(time.Since(j.startedAt).Seconds())
				close(j.ready)
				return
			}
		}
	}
}

// Shutdown stops all active encoder processes.
func (o *Orchestrator) Shutdown() {
	o.processMu.Lock()
	defer o.processMu.Unlock()

	for id, proc := range o.processes {
		logging.Info("Killing encoder process for: %s", id)
		if err := proc.Kill(); err != nil {
			logging.Warn("failed to kill encoder process for %s: %v", id, err)
		}
	}
}

// ClearCache removes all cached stream output and returns the number of
// bytes freed. Streams being written concurrently may be partially
// removed; their encoders will fail and settle normally.
func (o *Orchestrator) ClearCache() (int64, error) {
	root := filepath.Join(o.cfg.CacheDir, streamSubdir)

	var freedBytes int64

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read stream cache directory: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())

		if entry.IsDir() {
			dirSize, _ := dirSize(path)
			if err := os.RemoveAll(path); err != nil {
				logging.Warn("failed to remove directory %s: %v", path, err)
				continue
			}
			freedBytes += dirSize
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logging.Warn("failed to get info for %s: %v", path, err)
			continue
		}
		if err := os.Remove(path); err != nil {
			logging.Warn("failed to remove file %s: %v", path, err)
			continue
		}
		freedBytes += info.Size()
	}

	logging.Info("Cleared stream cache: freed %d bytes", freedBytes)
	return freedBytes, nil
}

// dirSize calculates the total size of a directory.
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
