package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/histoast/internal/audio"
	"github.com/jmylchreest/histoast/internal/config"
	"github.com/jmylchreest/histoast/internal/dbus"
	"github.com/jmylchreest/histoast/internal/layout"
	"github.com/jmylchreest/histoast/internal/model"
	"github.com/jmylchreest/histoast/internal/surface"
	"github.com/jmylchreest/histoast/internal/surface/x11"
	"github.com/jmylchreest/histoast/internal/theme"
	"github.com/jmylchreest/histoast/internal/toast"
)

// ErrUnknownTheme is returned by SetTheme for names no loader knows.
var ErrUnknownTheme = errors.New("unknown theme")

// headlessArea is the work area of the memory backend.
var headlessArea = layout.Rect{Width: 1920, Height: 1080}

// Options adjust a Daemon beyond its configuration file.
type Options struct {
	ConfigPath string // Empty selects the default location
	Backend    string // Overrides display.backend when set
	Version    string
	NoBus      bool // Run without claiming any D-Bus name
}

// Daemon owns every long-running component of histoast.
type Daemon struct {
	logger   *slog.Logger
	opts     Options
	backend  surface.Backend
	manager  *toast.Manager
	themes   *theme.Loader
	audio    *audio.Manager
	server   *dbus.NotificationServer
	notifier *InternalNotifier

	mu          sync.RWMutex
	cfg         *config.DaemonConfig
	backendName string
	watcher     *ConfigWatcher
	runCtx      context.Context
}

// New builds a daemon from cfg. Nothing runs until Run.
func New(cfg *config.DaemonConfig, opts Options, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}

	backendName := cfg.Display.Backend
	if opts.Backend != "" {
		backendName = opts.Backend
	}
	backend, err := newBackend(backendName, metricsFor(cfg.Display), logger)
	if err != nil {
		return nil, err
	}

	themes := theme.NewLoader(config.ThemesDir(), logger)
	current := themes.LoadTheme(cfg.Theme.Name)

	manager := toast.New(backend,
		toast.WithLogger(logger),
		toast.WithTheme(current),
		toast.WithSpacing(cfg.Display.Spacing),
		toast.WithDurations(cfg.Animation.Enter.Duration(), cfg.Animation.Exit.Duration(), cfg.Animation.Move.Duration()),
		toast.WithTickInterval(cfg.Animation.Tick.Duration()),
	)

	d := &Daemon{
		logger:      logger,
		opts:        opts,
		backend:     backend,
		manager:     manager,
		themes:      themes,
		audio:       audio.NewManager(cfg.Audio, logger),
		notifier:    NewInternalNotifier(logger),
		cfg:         cfg,
		backendName: backendName,
		runCtx:      context.Background(),
	}

	d.server = dbus.NewNotificationServer(managerToaster{m: manager}, logger)
	d.server.SetTimeouts(d.timeout)
	d.server.SetRateLimit(cfg.Rate.PerAppPerSec, cfg.Rate.Burst)
	info := dbus.DefaultServerInfo()
	if opts.Version != "" {
		info.Version = opts.Version
	}
	d.server.SetServerInfo(info)
	d.server.SetController(d)

	d.notifier.SetNotifyHandler(d.server.NotifyInternal)
	manager.OnClosed(d.server.HandleClosed)
	manager.OnShown(d.audio.OnShown)
	themes.SetChangeCallback(func(t *theme.Theme) {
		manager.SetTheme(t)
		d.notifier.NotifyThemeReloaded(t.Name)
	})

	return d, nil
}

func newBackend(name string, metrics surface.Metrics, logger *slog.Logger) (surface.Backend, error) {
	switch name {
	case config.BackendX11:
		b, err := x11.New(metrics, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open x11 backend: %w", err)
		}
		return b, nil
	case config.BackendMemory:
		return surface.NewMemoryBackend(headlessArea, metrics), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func metricsFor(display config.DisplayConfig) surface.Metrics {
	m := surface.DefaultMetrics()
	m.MinWidth = display.MinWidth
	m.MinHeight = display.MinHeight
	m.Padding = display.Padding
	m.CharWidth = display.CharWidth
	m.LineHeight = display.LineHeight
	return m
}

// Run starts every component and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	d.mu.Lock()
	d.runCtx = ctx
	d.mu.Unlock()

	if err := d.manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start toast manager: %w", err)
	}
	if err := d.themes.StartHotReload(ctx); err != nil {
		d.logger.Warn("theme hot reload unavailable", "error", err)
	}
	if err := d.audio.Start(ctx); err != nil {
		d.logger.Warn("audio unavailable", "error", err)
	}

	if !d.opts.NoBus {
		if err := d.server.Start(); err != nil {
			d.shutdown()
			return err
		}
	}

	watcher, err := NewConfigWatcher(d.opts.ConfigPath, d.logger)
	if err == nil {
		watcher.SetReloadCallback(d.applyConfig)
		watcher.SetErrorCallback(d.notifier.NotifyConfigError)
		d.mu.RLock()
		initial := d.cfg
		d.mu.RUnlock()
		err = watcher.Start(ctx, initial)
	}
	if err != nil {
		d.logger.Warn("config hot reload unavailable", "error", err)
	} else {
		d.mu.Lock()
		d.watcher = watcher
		d.mu.Unlock()
	}

	d.logger.Info("histoast daemon running",
		"backend", d.backendName,
		"theme", d.manager.Theme().Name,
		"bus", !d.opts.NoBus,
	)

	<-ctx.Done()
	d.shutdown()
	return nil
}

func (d *Daemon) shutdown() {
	d.mu.Lock()
	watcher := d.watcher
	d.watcher = nil
	d.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
	}
	if err := d.server.Stop(); err != nil {
		d.logger.Warn("failed to stop D-Bus server", "error", err)
	}
	d.themes.StopHotReload()
	d.audio.Stop()
	d.manager.Stop()
	if err := d.backend.Close(); err != nil {
		d.logger.Warn("failed to close backend", "error", err)
	}
	d.logger.Info("histoast daemon stopped")
}

// Notify shows an internal notification, bypassing D-Bus.
func (d *Daemon) Notify(n *dbus.DBusNotification) (uint32, error) {
	return d.server.NotifyInternal(n)
}

// Status implements dbus.Controller.
func (d *Daemon) Status() dbus.Status {
	stats := d.manager.Stats()
	d.mu.RLock()
	backendName := d.backendName
	d.mu.RUnlock()

	return dbus.Status{
		Active:       uint32(stats.Active),
		Removing:     uint32(stats.Removing),
		Queued:       uint32(stats.Queued),
		Theme:        stats.Theme,
		Backend:      backendName,
		StartedAt:    stats.StartedAt,
		OldestQueued: stats.OldestQueued,
	}
}

// SetTheme implements dbus.Controller. Toasts already shown keep their
// colors.
func (d *Daemon) SetTheme(name string) error {
	known := false
	for _, info := range d.themes.ListThemes() {
		if info.Name == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}

	t := d.themes.LoadTheme(name)
	d.manager.SetTheme(t)

	d.mu.RLock()
	ctx := d.runCtx
	d.mu.RUnlock()
	if err := d.themes.StartHotReload(ctx); err != nil {
		d.logger.Warn("theme hot reload unavailable", "theme", name, "error", err)
	}
	return nil
}

// CloseAll implements dbus.Controller.
func (d *Daemon) CloseAll() {
	d.manager.HideAll()
}

func (d *Daemon) timeout(kind model.Kind) time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg.Timeouts.ForKind(kind)
}

// applyConfig takes over the settings that can change at runtime and
// reports the ones that need a restart.
func (d *Daemon) applyConfig(cfg *config.DaemonConfig) {
	d.mu.Lock()
	old := d.cfg
	d.cfg = cfg
	d.mu.Unlock()

	if cfg.Rate != old.Rate {
		d.server.SetRateLimit(cfg.Rate.PerAppPerSec, cfg.Rate.Burst)
	}
	if cfg.Theme.Name != old.Theme.Name {
		if err := d.SetTheme(cfg.Theme.Name); err != nil {
			d.logger.Warn("configured theme not applied", "theme", cfg.Theme.Name, "error", err)
		}
	}
	if cfg.Audio != old.Audio {
		d.audio.UpdateConfig(cfg.Audio)
	}
	if cfg.Display != old.Display {
		d.notifier.NotifyRestartRequired("display")
	}
	if cfg.Animation != old.Animation {
		d.notifier.NotifyRestartRequired("animation")
	}

	d.notifier.NotifyConfigReloaded()
}

// managerToaster adapts toast.Manager to dbus.Toaster.
type managerToaster struct {
	m *toast.Manager
}

func (t managerToaster) Show(cfg model.Config) (model.ID, error) {
	h, err := t.m.Show(cfg)
	if err != nil {
		return "", err
	}
	return h.ID(), nil
}

func (t managerToaster) HideByID(id model.ID) {
	t.m.HideByID(id)
}
