package barrel

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"barrelgen/internal/config"
)

// Watcher keeps regenerating barrels while source files change. Events are
// debounced so a burst of editor saves triggers one run; runs themselves stay
// strictly sequential. Writes of the generated output file are ignored so a
// run never re-triggers itself.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	orch    *Orchestrator
	root    string
	log     *zap.Logger

	pending     map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a Watcher that re-runs orch.Process(root) on changes.
// The orchestrator must be backed by the real filesystem; fsnotify cannot
// observe an in-memory afero tree.
func NewWatcher(root string, orch *Orchestrator, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		orch:        orch,
		root:        root,
		log:         log,
		pending:     make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start registers the watch tree and begins the event loop in a goroutine.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	go w.run()
	return nil
}

// Stop ends the event loop and closes the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("error closing watcher", zap.Error(err))
	}
}

// addTree watches root and, in recursive mode, every subdirectory.
func (w *Watcher) addTree(root string) error {
	if err := w.watcher.Add(root); err != nil {
		return err
	}
	if !w.orch.opts.Recursive {
		return nil
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() || path == root {
			return err
		}
		if err := w.watcher.Add(path); err != nil {
			w.log.Warn("could not watch directory", zap.String("dir", path), zap.Error(err))
		}
		return nil
	})
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-ticker.C:
			w.flushSettled()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return // chmod etc.
	}

	name := filepath.Base(event.Name)
	switch {
	case name == w.orch.opts.OutputFile:
		return // our own write
	case name == config.SidecarName:
		// exclusion changes re-shape the barrel
	case w.orch.reg.Handles(name):
		// recognized source file
	default:
		// A created directory becomes part of the watch tree in
		// recursive mode; everything else is noise.
		if event.Op&fsnotify.Create != 0 && w.orch.opts.Recursive {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := w.watcher.Add(event.Name); err == nil {
					break
				}
			}
		}
		return
	}

	w.log.Debug("change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// flushSettled runs the orchestrator once if any pending change has settled
// past the debounce window.
func (w *Watcher) flushSettled() {
	w.mu.Lock()
	now := time.Now()
	settled := false
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounceDur {
			delete(w.pending, path)
			settled = true
		}
	}
	w.mu.Unlock()

	if !settled {
		return
	}
	if _, err := w.orch.Process(w.root); err != nil {
		w.log.Warn("regeneration failed", zap.Error(err))
	}
}
