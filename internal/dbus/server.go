package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"golang.org/x/time/rate"

	"github.com/jmylchreest/histoast/internal/model"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name to claim.
	DBusBusName = "org.freedesktop.Notifications"
)

// Error names returned to Notify callers.
const (
	ErrNameRateLimited = "io.github.jmylchreest.Histoast.Error.RateLimited"
	ErrNameRejected    = "io.github.jmylchreest.Histoast.Error.Rejected"
)

// Toaster shows and hides toasts on behalf of the server.
type Toaster interface {
	Show(cfg model.Config) (model.ID, error)
	HideByID(id model.ID)
}

// emitter sends signals. *dbus.Conn implements it.
type emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// NotificationServer implements the org.freedesktop.Notifications D-Bus
// interface on top of a Toaster.
type NotificationServer struct {
	logger  *slog.Logger
	toaster Toaster
	limiter *appLimiter
	control *controlObject

	mu         sync.Mutex
	conn       *dbus.Conn
	emitter    emitter
	nextID     uint32
	toToast    map[uint32]model.ID
	toBus      map[model.ID]uint32
	timeouts   func(model.Kind) time.Duration
	serverInfo ServerInfo
	running    bool
}

// NewNotificationServer creates a server forwarding to toaster.
func NewNotificationServer(toaster Toaster, logger *slog.Logger) *NotificationServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationServer{
		logger:     logger,
		toaster:    toaster,
		limiter:    newAppLimiter(0, 0),
		toToast:    make(map[uint32]model.ID),
		toBus:      make(map[model.ID]uint32),
		timeouts:   func(model.Kind) time.Duration { return 5 * time.Second },
		serverInfo: DefaultServerInfo(),
	}
}

// SetTimeouts sets the per-kind auto-close delay used for expire_timeout -1.
func (s *NotificationServer) SetTimeouts(fn func(model.Kind) time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.timeouts = fn
	}
}

// SetRateLimit limits every application to perSec Notify calls with the
// given burst. A zero rate disables limiting.
func (s *NotificationServer) SetRateLimit(perSec float64, burst int) {
	s.limiter.configure(perSec, burst)
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (s *NotificationServer) SetServerInfo(info ServerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverInfo = info
}

// SetController enables the io.github.jmylchreest.Histoast interface.
// It must be called before Start.
func (s *NotificationServer) SetController(ctl Controller) {
	s.control = &controlObject{ctl: ctl, logger: s.logger}
}

// Start connects to the session bus and exports the notification service.
func (s *NotificationServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}
	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	if s.control != nil {
		if err := s.control.export(conn); err != nil {
			return err
		}
	}

	if err := requestName(conn, DBusBusName); err != nil {
		return err
	}
	if s.control != nil {
		if err := requestName(conn, ControlBusName); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.conn = conn
	s.emitter = conn
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus notification server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

func requestName(conn *dbus.Conn, name string) error {
	reply, err := conn.RequestName(name, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name %s: %w", name, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", name)
	}
	return nil
}

// Stop releases the bus names. The shared session connection stays open.
func (s *NotificationServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	names := []string{DBusBusName}
	if s.control != nil {
		names = append(names, ControlBusName)
	}
	for _, name := range names {
		if _, err := s.conn.ReleaseName(name); err != nil {
			s.logger.Warn("failed to release bus name", "name", name, "error", err)
		}
	}

	s.logger.Info("D-Bus notification server stopped")
	return nil
}

// GetCapabilities returns the list of capabilities supported by this server.
// D-Bus method: GetCapabilities() -> as
func (s *NotificationServer) GetCapabilities() ([]string, *dbus.Error) {
	return ServerCapabilities, nil
}

// GetServerInformation returns information about the notification server.
// D-Bus method: GetServerInformation() -> (ssss)
func (s *NotificationServer) GetServerInformation() (string, string, string, string, *dbus.Error) {
	s.mu.Lock()
	info := s.serverInfo
	s.mu.Unlock()
	return info.Name, info.Vendor, info.Version, info.SpecVersion, nil
}

// Notify shows a toast for an incoming notification.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (s *NotificationServer) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	n := &DBusNotification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}

	if !s.limiter.allow(appName) {
		s.logger.Warn("notification rate limited", "app_name", appName)
		return 0, dbus.NewError(ErrNameRateLimited, []any{fmt.Sprintf("too many notifications from %q", appName)})
	}

	id, err := s.show(n)
	if err != nil {
		s.logger.Warn("notification rejected", "app_name", appName, "error", err)
		return 0, dbus.NewError(ErrNameRejected, []any{err.Error()})
	}
	return id, nil
}

// NotifyInternal shows a notification raised by the daemon itself. It skips
// rate limiting.
func (s *NotificationServer) NotifyInternal(n *DBusNotification) (uint32, error) {
	return s.show(n)
}

func (s *NotificationServer) show(n *DBusNotification) (uint32, error) {
	kind := n.Kind()

	s.mu.Lock()
	var replaced model.ID
	busID := n.ReplacesID
	if old, ok := s.toToast[busID]; ok && busID != 0 {
		// Replacement keeps the bus id and emits no NotificationClosed.
		replaced = old
		delete(s.toBus, old)
	} else {
		s.nextID++
		if s.nextID == 0 {
			s.nextID = 1
		}
		busID = s.nextID
	}
	timeout := n.Timeout(s.timeouts(kind))
	s.mu.Unlock()

	if replaced != "" {
		s.toaster.HideByID(replaced)
	}

	b := model.NewBuilder().
		Kind(kind).
		Text(n.Text()).
		Icon(n.Icon()).
		AutoClose(timeout)
	if n.HasDefaultAction() {
		b.OnClick(func(model.ID) {
			if err := s.EmitActionInvoked(busID, "default"); err != nil {
				s.logger.Warn("failed to emit ActionInvoked signal", "id", busID, "error", err)
			}
		})
	}

	toastID, err := s.toaster.Show(b.Build())
	if err != nil {
		if replaced != "" {
			s.mu.Lock()
			delete(s.toToast, busID)
			s.mu.Unlock()
		}
		return 0, err
	}

	s.mu.Lock()
	s.toToast[busID] = toastID
	s.toBus[toastID] = busID
	s.mu.Unlock()

	s.logger.Debug("notification shown",
		"app_name", n.AppName,
		"bus_id", busID,
		"id", toastID,
		"kind", kind,
		"timeout", timeout,
	)
	return busID, nil
}

// CloseNotification hides a notification. NotificationClosed follows once
// the toast has slid out.
// D-Bus method: CloseNotification(u) -> nothing
func (s *NotificationServer) CloseNotification(id uint32) *dbus.Error {
	s.mu.Lock()
	toastID, ok := s.toToast[id]
	s.mu.Unlock()

	s.logger.Debug("CloseNotification called", "bus_id", id, "known", ok)
	if ok {
		s.toaster.HideByID(toastID)
	}
	return nil
}

// HandleClosed emits NotificationClosed for a removed toast. Its signature
// matches toast.ClosedFunc.
func (s *NotificationServer) HandleClosed(id model.ID, reason model.CloseReason) {
	s.mu.Lock()
	busID, ok := s.toBus[id]
	if ok {
		delete(s.toBus, id)
		delete(s.toToast, busID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	if err := s.EmitNotificationClosed(busID, CloseReasonFromModel(reason)); err != nil && !errors.Is(err, ErrNotConnected) {
		s.logger.Warn("failed to emit NotificationClosed signal", "id", busID, "error", err)
	}
}

// BusID returns the bus id of a shown toast.
func (s *NotificationServer) BusID(id model.ID) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	busID, ok := s.toBus[id]
	return busID, ok
}

// ToastID returns the toast behind a bus id.
func (s *NotificationServer) ToastID(busID uint32) (model.ID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.toToast[busID]
	return id, ok
}

// appLimiter keeps one token bucket per application name.
type appLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newAppLimiter(perSec float64, burst int) *appLimiter {
	l := &appLimiter{}
	l.configure(perSec, burst)
	return l
}

func (l *appLimiter) configure(perSec float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limit = rate.Limit(perSec)
	l.burst = max(burst, 1)
	l.limiters = make(map[string]*rate.Limiter)
}

func (l *appLimiter) allow(app string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limit <= 0 {
		return true
	}
	lim, ok := l.limiters[app]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[app] = lim
	}
	return lim.Allow()
}

// notificationMethods returns the D-Bus method introspection data.
func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

// notificationSignals returns the D-Bus signal introspection data.
func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
		{
			Name: "ActionInvoked",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "action_key", Type: "s"},
			},
		},
	}
}
