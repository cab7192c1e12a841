package daemon

import (
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/histoast/internal/dbus"
	"github.com/jmylchreest/histoast/internal/model"
)

// InternalNotifier shows toasts about the daemon's own events. The same key
// is not repeated within the minimum interval.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	notifyHandler func(n *dbus.DBusNotification) (uint32, error)

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration
	timeout        time.Duration
	enabled        bool
	now            func() time.Time
}

// NewInternalNotifier creates an enabled notifier.
func NewInternalNotifier(logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		timeout:        5 * time.Second,
		enabled:        true,
		now:            time.Now,
	}
}

// SetNotifyHandler sets the function that shows the notification.
func (n *InternalNotifier) SetNotifyHandler(handler func(n *dbus.DBusNotification) (uint32, error)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifyHandler = handler
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications sharing a key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify shows an internal notification unless key fired recently.
func (n *InternalNotifier) Notify(key, summary, body string, kind model.Kind) {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return
	}
	handler := n.notifyHandler
	if handler == nil {
		n.mu.Unlock()
		n.logger.Debug("internal notification skipped: no handler", "summary", summary)
		return
	}
	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "summary", summary)
		return
	}
	n.lastNotifyTime[key] = now
	timeout := n.timeout
	n.mu.Unlock()

	notification := &dbus.DBusNotification{
		AppName: "histoast",
		AppIcon: iconForKind(kind),
		Summary: summary,
		Body:    body,
		Hints: map[string]godbus.Variant{
			dbus.KindHint: godbus.MakeVariant(kind.String()),
		},
		ExpireTimeout: int32(timeout / time.Millisecond),
	}

	n.logger.Debug("sending internal notification", "key", key, "summary", summary, "kind", kind)
	if _, err := handler(notification); err != nil {
		n.logger.Warn("internal notification failed", "key", key, "error", err)
	}
}

func iconForKind(kind model.Kind) string {
	switch kind {
	case model.KindWarning:
		return "dialog-warning"
	case model.KindError:
		return "dialog-error"
	default:
		return "dialog-information"
	}
}

// NotifyConfigReloaded reports a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration Reloaded", "histoast configuration has been reloaded.", model.KindSuccess)
}

// NotifyConfigError reports a config file that failed to load.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration Error", "Failed to reload configuration: "+err.Error(), model.KindWarning)
}

// NotifyThemeReloaded reports a theme change.
func (n *InternalNotifier) NotifyThemeReloaded(themeName string) {
	n.Notify("theme-reload", "Theme Reloaded", "Theme '"+themeName+"' is now in use.", model.KindInfo)
}

// NotifyRestartRequired reports settings that only apply after a restart.
func (n *InternalNotifier) NotifyRestartRequired(section string) {
	n.Notify("restart-"+section, "Restart Required", "Changes to ["+section+"] apply after the daemon restarts.", model.KindWarning)
}
