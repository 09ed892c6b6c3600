package app

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceWindow = 150 * time.Millisecond

// Watcher runs a background goroutine that watches a set of files and
// directories (App passes the scene file, the schema directory and the
// constraint directory), flipping needsReload when any of them are
// written. The watcher thread is this package's one concession
// to concurrency: it only ever writes a bool behind a mutex, never
// touches the world directly. Built on the usual
// fsnotify.NewWatcher/watcher.Events select loop, extended with a
// debounce timer since editors commonly emit several WRITE events per
// save.
type Watcher struct {
	fs *fsnotify.Watcher

	mu           sync.Mutex
	needsReload  bool
	debounceStop chan struct{}

	done chan struct{}
}

// NewWatcher starts watching the given file and directory paths. Call
// Close when the viewer exits.
func NewWatcher(paths []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := fw.Add(p); err != nil {
			fw.Close()
			return nil, err
		}
	}

	w := &Watcher{fs: fw, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	var debounce *time.Timer
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceWindow, w.setReload)
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			// a watch error doesn't invalidate the scene already loaded;
			// the next successful event still triggers a reload.
		case <-w.done:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}

func (w *Watcher) setReload() {
	w.mu.Lock()
	w.needsReload = true
	w.mu.Unlock()
}

// ConsumeReload reports whether a reload is pending and clears the
// flag, so the main loop picks it up exactly once per change.
func (w *Watcher) ConsumeReload() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	pending := w.needsReload
	w.needsReload = false
	return pending
}

// Add watches an additional path.
func (w *Watcher) Add(path string) error {
	return w.fs.Add(path)
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
