package catalog

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"vidstream/internal/logging"
)

// watcher invalidates the catalog snapshot when the library changes on
// disk. fsnotify does not watch recursively, so every existing directory
// is registered up front and new directories are added as they appear.
type watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

func newWatcher(root string, onChange func()) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := addDirTree(fsw, root); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &watcher{
		fsw:  fsw,
		done: make(chan struct{}),
	}
	go w.loop(onChange)
	return w, nil
}

func (w *watcher) loop(onChange func()) {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Create) {
				// New directories need their own watch to keep
				// coverage recursive.
				if err := addDirTree(w.fsw, ev.Name); err != nil {
					logging.Debug("catalog: watch %s: %v", ev.Name, err)
				}
			}
			onChange()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("catalog: watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *watcher) close() {
	close(w.done)
	if err := w.fsw.Close(); err != nil {
		logging.Warn("catalog: watcher close: %v", err)
	}
}

// addDirTree registers path and all directories below it. Non-directory
// paths and unreadable subtrees are ignored.
func addDirTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return fs.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			logging.Debug("catalog: cannot watch %s: %v", path, err)
		}
		return nil
	})
}
