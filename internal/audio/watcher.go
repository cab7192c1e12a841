package audio

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a set of sound files. Their directories are
// watched so replaced files are noticed too.
type Watcher struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	paths    map[string]struct{}
	dirs     map[string]struct{}
	onChange func(path string)

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher calling onChange with the path of every
// changed file.
func NewWatcher(onChange func(path string), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		logger:   logger,
		watcher:  fw,
		paths:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		onChange: onChange,
	}, nil
}

// Watch adds path to the watched set.
func (w *Watcher) Watch(path string) error {
	if path == "" {
		return nil
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.paths[path] = struct{}{}
	if _, ok := w.dirs[dir]; ok {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = struct{}{}
	return nil
}

// Start begins delivering change notifications.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.watchLoop(ctx, w.stopCh, w.doneCh)
	w.logger.Debug("audio watcher started", "files", len(w.paths))
}

// Stop stops the watcher and releases its file descriptors.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	if running {
		close(w.stopCh)
	}
	done := w.doneCh
	w.mu.Unlock()

	if running {
		<-done
	}
	_ = w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			path := filepath.Clean(event.Name)
			w.mu.RLock()
			_, watched := w.paths[path]
			callback := w.onChange
			w.mu.RUnlock()
			if watched && callback != nil {
				w.logger.Debug("sound file changed", "path", path, "op", event.Op.String())
				callback(path)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("audio watcher error", "error", err)
		}
	}
}
