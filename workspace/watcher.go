package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhamidi/oak/lang"
)

// Watcher polls a directory tree and keeps a store in step with the files
// on disk that have a known language. Hidden directories are skipped.
type Watcher struct {
	store    *Store
	root     string
	interval time.Duration
	modTimes map[string]time.Time
	changed  func(e *Entry)
	removed  func(uri string)
	stopCh   chan struct{}
	done     chan struct{}
}

type WatchOption func(*Watcher)

// WithInterval sets the polling interval. The default is one second.
func WithInterval(d time.Duration) WatchOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// OnChange is called after a file is loaded or reloaded.
func OnChange(fn func(e *Entry)) WatchOption {
	return func(w *Watcher) {
		w.changed = fn
	}
}

// OnRemove is called after a file disappears from disk.
func OnRemove(fn func(uri string)) WatchOption {
	return func(w *Watcher) {
		w.removed = fn
	}
}

func NewWatcher(store *Store, root string, opts ...WatchOption) *Watcher {
	w := &Watcher{
		store:    store,
		root:     root,
		interval: time.Second,
		modTimes: make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start scans once and then polls in the background until Stop.
func (w *Watcher) Start() {
	go w.run()
}

// Stop ends polling and waits for the current scan to finish.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.done
}

func (w *Watcher) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scan()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

// Scan loads new and modified files and closes the ones that are gone. A
// file that fails to load is retried on the next scan. When the root
// cannot be walked nothing is closed and the error is returned.
func (w *Watcher) Scan() error {
	current := make(map[string]bool)

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return err
			}
			log.Debugf("watch %s: %s", path, err)
			return nil
		}
		if d.IsDir() {
			if path != w.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := w.store.registry.Detect(path, nil); !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		current[path] = true
		last, known := w.modTimes[path]
		if known && !info.ModTime().After(last) {
			return nil
		}
		if err := w.load(path); err != nil {
			log.Warningf("watch: %s", err)
			return nil
		}
		w.modTimes[path] = info.ModTime()
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}

	for path := range w.modTimes {
		if current[path] {
			continue
		}
		delete(w.modTimes, path)
		uri := URIFromPath(path)
		if w.store.Close(uri) && w.removed != nil {
			w.removed(uri)
		}
	}
	return nil
}

func (w *Watcher) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	uri := URIFromPath(path)
	text := string(data)

	e, ok := w.store.Get(uri)
	if ok {
		err = e.Update(e.Version()+1, func(doc lang.Document) error {
			doc.Replace(text)
			return nil
		})
	} else {
		e, err = w.store.Open(uri, "", text, 1)
	}
	if err != nil {
		return err
	}
	if w.changed != nil {
		w.changed(e)
	}
	return nil
}

func (w *Watcher) scan() {
	if err := w.Scan(); err != nil {
		log.Warningf("%s", err)
	}
}
