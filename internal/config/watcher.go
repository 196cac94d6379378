package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"convoy/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a services manifest for changes and reports them on a
// channel, debounced so editors that write in several bursts trigger one
// notification instead of five.
type Watcher struct {
	mu sync.Mutex

	// path is the manifest file being watched
	path string

	// debounceInterval is how long to wait for additional changes
	debounceInterval time.Duration

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher for the given manifest path.
func NewWatcher(path string, debounceInterval time.Duration) *Watcher {
	if debounceInterval == 0 {
		debounceInterval = 500 * time.Millisecond
	}
	return &Watcher{
		path:             path,
		debounceInterval: debounceInterval,
	}
}

// Start begins watching. Change notifications carry the manifest path and
// are delivered on changes until the context is cancelled or Stop is
// called. Watching is directory-based so the common write-temp-then-rename
// save pattern is seen too.
func (w *Watcher) Start(ctx context.Context, changes chan<- string) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		w.mu.Unlock()
		return err
	}

	w.watcher = watcher
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	go w.processEvents(ctx, changes)

	logging.Info("ManifestWatcher", "Watching %s for changes", w.path)
	return nil
}

// Stop ends the watch and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.watcher.Close()
	w.running = false
}

func (w *Watcher) processEvents(ctx context.Context, changes chan<- string) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounceInterval)
				timerC = timer.C
			} else {
				timer.Reset(w.debounceInterval)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case changes <- w.path:
			default:
				// Receiver busy; the next change will notify again.
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("ManifestWatcher", err, "Filesystem watcher error")
		}
	}
}
