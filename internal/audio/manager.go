package audio

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/jmylchreest/histoast/internal/config"
	"github.com/jmylchreest/histoast/internal/model"
)

// sink is the part of Player the manager drives.
type sink interface {
	Play(path string) error
	Preload(path string) error
	Invalidate(path string)
	SetVolume(volume float64)
	Close()
}

// Manager plays the sound configured for each toast kind.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  sink
	watcher *Watcher
	cfg     config.AudioConfig
	sounds  map[model.Kind]string
}

// NewManager creates a manager playing through a beep Player.
func NewManager(cfg config.AudioConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return newManager(cfg, NewPlayer(logger), logger)
}

func newManager(cfg config.AudioConfig, player sink, logger *slog.Logger) *Manager {
	m := &Manager{
		logger: logger,
		player: player,
	}
	m.apply(cfg)
	return m
}

// apply resolves the sound of every kind, skipping files that do not exist.
func (m *Manager) apply(cfg config.AudioConfig) {
	sounds := make(map[model.Kind]string)
	for _, kind := range model.AllKinds() {
		path := cfg.Sounds.ForKind(kind)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "kind", kind, "path", path)
			continue
		}
		sounds[kind] = path
	}

	m.mu.Lock()
	m.cfg = cfg
	m.sounds = sounds
	m.mu.Unlock()

	m.player.SetVolume(float64(cfg.Volume) / 100)
}

// Start preloads the sounds and watches their files.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.RLock()
	enabled := m.cfg.Enabled
	sounds := maps.Clone(m.sounds)
	m.mu.RUnlock()

	if !enabled {
		m.logger.Debug("audio disabled")
		return nil
	}

	for _, path := range sounds {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
	}

	watcher, err := NewWatcher(m.player.Invalidate, m.logger)
	if err != nil {
		return err
	}
	for _, path := range sounds {
		if err := watcher.Watch(path); err != nil {
			m.logger.Warn("failed to watch sound", "path", path, "error", err)
		}
	}
	watcher.Start(ctx)

	m.mu.Lock()
	m.watcher = watcher
	m.mu.Unlock()

	m.logger.Info("audio manager started", "sounds", len(sounds))
	return nil
}

// Stop stops the watcher and closes the speaker.
func (m *Manager) Stop() {
	m.mu.Lock()
	watcher := m.watcher
	m.watcher = nil
	m.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
	}
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// PlayForKind plays the sound configured for kind. Nothing is played when
// audio is disabled or the kind has no sound.
func (m *Manager) PlayForKind(kind model.Kind) error {
	m.mu.RLock()
	enabled := m.cfg.Enabled
	path, ok := m.sounds[kind]
	m.mu.RUnlock()

	if !enabled || !ok {
		return nil
	}
	return m.player.Play(path)
}

// OnShown plays the sound for a newly shown toast. Its signature matches
// toast.ShownFunc.
func (m *Manager) OnShown(id model.ID, kind model.Kind) {
	if err := m.PlayForKind(kind); err != nil {
		m.logger.Warn("failed to play sound", "id", id, "kind", kind, "error", err)
	}
}

// UpdateConfig replaces the audio settings. Newly configured files are
// preloaded and watched.
func (m *Manager) UpdateConfig(cfg config.AudioConfig) {
	m.apply(cfg)

	m.mu.RLock()
	enabled := cfg.Enabled
	sounds := maps.Clone(m.sounds)
	watcher := m.watcher
	m.mu.RUnlock()

	if !enabled {
		return
	}
	for _, path := range sounds {
		m.player.Invalidate(path)
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound on reload", "path", path, "error", err)
		}
		if watcher != nil {
			if err := watcher.Watch(path); err != nil {
				m.logger.Warn("failed to watch sound", "path", path, "error", err)
			}
		}
	}
	m.logger.Debug("audio config updated", "enabled", enabled, "sounds", len(sounds))
}
