package catalog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"vidstream/internal/assetid"
	"vidstream/internal/logging"
	"vidstream/internal/mediatypes"
	"vidstream/internal/metrics"
)

// MaxResults caps listings for UI responsiveness.
const MaxResults = 300

var (
	// ErrNotFound is returned when a browsed directory does not exist.
	ErrNotFound = errors.New("directory not found")
	// ErrInvalidPath is returned when a browsed directory resolves outside
	// the library root.
	ErrInvalidPath = errors.New("path outside library root")
)

// Asset is one media file under the library root.
type Asset struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	RelPath string `json:"relativePath"`
}

// Folder is one subdirectory in a browse listing.
type Folder struct {
	Name    string `json:"name"`
	RelPath string `json:"relativePath"`
}

// Listing is a non-recursive view of one library directory.
type Listing struct {
	Path    string   `json:"path"`
	Folders []Folder `json:"folders"`
	Assets  []Asset  `json:"assets"`
}

// Service maintains a time-bounded snapshot of the library. An expired or
// invalidated snapshot is wholly discarded and rebuilt by the next caller;
// concurrent callers share a single rebuild walk.
type Service struct {
	root string
	exts mediatypes.ExtensionSet
	ttl  time.Duration

	mu       sync.Mutex
	snapshot []Asset
	builtAt  time.Time

	stale atomic.Bool
	group singleflight.Group

	watchMu sync.Mutex
	watcher *watcher
}

// New creates a catalog service over root. The extension set decides which
// files count as assets; ttl bounds how long a snapshot is reused.
func New(root string, exts mediatypes.ExtensionSet, ttl time.Duration) *Service {
	return &Service{
		root: root,
		exts: exts,
		ttl:  ttl,
	}
}

// Start begins watching the library for changes so the snapshot can be
// invalidated before its TTL elapses. Watching is best effort: on failure
// the catalog degrades to pure TTL behavior.
func (s *Service) Start() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	if s.watcher != nil {
		return
	}
	w, err := newWatcher(s.root, func() { s.stale.Store(true) })
	if err != nil {
		logging.Warn("catalog: library watcher unavailable, falling back to TTL only: %v", err)
		return
	}
	s.watcher = w
	logging.Info("catalog: watching %s for changes", s.root)
}

// Stop shuts down the library watcher, if one is running.
func (s *Service) Stop() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	if s.watcher != nil {
		s.watcher.close()
		s.watcher = nil
	}
}

// List returns up to MaxResults assets, filtered by a case-insensitive
// substring match on the asset name when query is non-empty.
func (s *Service) List(query string) ([]Asset, error) {
	snapshot, err := s.assets()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	results := make([]Asset, 0, MaxResults)
	for _, a := range snapshot {
		if query != "" && !strings.Contains(strings.ToLower(a.Name), query) {
			continue
		}
		results = append(results, a)
		if len(results) == MaxResults {
			break
		}
	}
	return results, nil
}

// Browse returns the direct subfolders and assets of one library directory.
// relDir is slash-separated and relative to the root; empty means the root
// itself.
func (s *Service) Browse(relDir string) (*Listing, error) {
	relDir = strings.Trim(filepath.ToSlash(relDir), "/")

	abs := s.root
	if relDir != "" {
		abs = filepath.Join(s.root, filepath.FromSlash(relDir))
		if !assetid.Contains(s.root, abs) {
			return nil, ErrInvalidPath
		}
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	listing := &Listing{
		Path:    relDir,
		Folders: []Folder{},
		Assets:  []Asset{},
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		rel := name
		if relDir != "" {
			rel = relDir + "/" + name
		}
		if e.IsDir() {
			listing.Folders = append(listing.Folders, Folder{Name: name, RelPath: rel})
			continue
		}
		if s.exts.Matches(name) {
			listing.Assets = append(listing.Assets, Asset{
				ID:      assetid.Encode(rel),
				Name:    name,
				RelPath: rel,
			})
		}
	}
	return listing, nil
}

// Age returns the time since the current snapshot was built, or zero when
// no snapshot exists yet.
func (s *Service) Age() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.builtAt.IsZero() {
		return 0
	}
	return time.Since(s.builtAt)
}

// AssetCount returns the size of the current snapshot without rebuilding.
func (s *Service) AssetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshot)
}

// assets returns the current snapshot, rebuilding it when expired or
// invalidated. Concurrent rebuild requests collapse into one walk.
func (s *Service) assets() ([]Asset, error) {
	s.mu.Lock()
	fresh := !s.builtAt.IsZero() && time.Since(s.builtAt) < s.ttl && !s.stale.Load()
	snapshot := s.snapshot
	s.mu.Unlock()

	if fresh {
		return snapshot, nil
	}

	v, err, _ := s.group.Do("rebuild", func() (interface{}, error) {
		start := time.Now()
		assets, err := s.walk()
		if err != nil {
			metrics.CatalogRebuildErrors.Inc()
			return nil, err
		}

		s.mu.Lock()
		s.snapshot = assets
		s.builtAt = time.Now()
		s.stale.Store(false)
		s.mu.Unlock()

		metrics.CatalogRebuilds.Inc()
		metrics.CatalogRebuildDuration.Observe(time.Since(start).Seconds())
		metrics.CatalogAssets.Set(float64(len(assets)))
		logging.Debug("catalog: rebuilt %d assets in %v", len(assets), time.Since(start))
		return assets, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Asset), nil
}

// walk scans the library recursively. Unreadable directories are skipped
// rather than failing the whole rebuild.
func (s *Service) walk() ([]Asset, error) {
	var assets []Asset

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Debug("catalog: skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != s.root {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !s.exts.Matches(name) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		assets = append(assets, Asset{
			ID:      assetid.Encode(rel),
			Name:    name,
			RelPath: rel,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].RelPath < assets[j].RelPath })
	return assets, nil
}
