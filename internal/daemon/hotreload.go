package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/histoast/internal/config"
)

// reloadDebounce coalesces the burst of events an editor save produces.
const reloadDebounce = 100 * time.Millisecond

// ConfigWatcher watches the daemon config file and hands over every new
// configuration that parses and validates.
type ConfigWatcher struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	path    string
	current *config.DaemonConfig

	onReload func(cfg *config.DaemonConfig)
	onError  func(err error)

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewConfigWatcher creates a watcher for the config file at path.
func NewConfigWatcher(path string, logger *slog.Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = config.DaemonConfigPath()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ConfigWatcher{
		logger:  logger,
		watcher: fw,
		path:    path,
	}, nil
}

// SetReloadCallback sets the callback invoked with each valid new config.
func (w *ConfigWatcher) SetReloadCallback(callback func(cfg *config.DaemonConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = callback
}

// SetErrorCallback sets the callback invoked when a changed file is invalid.
func (w *ConfigWatcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// Start begins watching. initial is reported by Current until a reload.
func (w *ConfigWatcher) Start(ctx context.Context, initial *config.DaemonConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.current = initial
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.watchLoop(ctx, w.stopCh, w.doneCh)

	w.logger.Debug("config watcher started", "path", w.path)
	return nil
}

// Stop stops the watcher.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	<-done
	_ = w.watcher.Close()
	w.logger.Debug("config watcher stopped")
}

// Current returns the last valid configuration.
func (w *ConfigWatcher) Current() *config.DaemonConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *ConfigWatcher) watchLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	filename := filepath.Base(w.path)
	debounce := time.NewTimer(reloadDebounce)
	debounce.Stop()
	defer debounce.Stop()

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
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce.Reset(reloadDebounce)
			}
		case <-debounce.C:
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *ConfigWatcher) reload() {
	w.mu.RLock()
	onReload, onError := w.onReload, w.onError
	w.mu.RUnlock()

	cfg, err := config.LoadDaemonConfig(w.path)
	if err != nil {
		w.logger.Warn("config file changed but validation failed", "path", w.path, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path)
	if onReload != nil {
		onReload(cfg)
	}
}
