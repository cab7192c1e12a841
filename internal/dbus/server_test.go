package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/histoast/internal/model"
)

type fakeToaster struct {
	mu     sync.Mutex
	next   int
	shown  map[model.ID]model.Config
	hidden []model.ID
	err    error
}

func newFakeToaster() *fakeToaster {
	return &fakeToaster{shown: make(map[model.ID]model.Config)}
}

func (f *fakeToaster) Show(cfg model.Config) (model.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.next++
	id := model.ID(fmt.Sprintf("toast-%d", f.next))
	f.shown[id] = cfg
	return id, nil
}

func (f *fakeToaster) HideByID(id model.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden = append(f.hidden, id)
}

type signal struct {
	name   string
	values []any
}

type fakeEmitter struct {
	mu      sync.Mutex
	signals []signal
}

func (f *fakeEmitter) Emit(path dbus.ObjectPath, name string, values ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if path != DBusPath {
		return errors.New("wrong path")
	}
	f.signals = append(f.signals, signal{name: name, values: values})
	return nil
}

func newTestServer(t *testing.T) (*NotificationServer, *fakeToaster, *fakeEmitter) {
	t.Helper()
	toaster := newFakeToaster()
	em := &fakeEmitter{}
	s := NewNotificationServer(toaster, slog.New(slog.DiscardHandler))
	s.emitter = em
	return s, toaster, em
}

func notify(t *testing.T, s *NotificationServer, app string, replaces uint32, actions []string, hints map[string]dbus.Variant, timeout int32) uint32 {
	t.Helper()
	id, derr := s.Notify(app, replaces, "", "Summary", "Body", actions, hints, timeout)
	require.Nil(t, derr)
	return id
}

func TestNotify_ShowsToast(t *testing.T) {
	s, toaster, _ := newTestServer(t)
	s.SetTimeouts(func(kind model.Kind) time.Duration {
		if kind == model.KindError {
			return 0
		}
		return 7 * time.Second
	})

	id := notify(t, s, "app", 0, nil, nil, -1)
	assert.Equal(t, uint32(1), id)

	toastID, ok := s.ToastID(id)
	require.True(t, ok)
	cfg := toaster.shown[toastID]
	assert.Equal(t, model.KindInfo, cfg.Kind)
	assert.Equal(t, "Summary\nBody", cfg.Content.Text)
	assert.Equal(t, 7*time.Second, cfg.AutoClose)
	assert.Nil(t, cfg.OnClick)

	critical := notify(t, s, "app", 0, nil, map[string]dbus.Variant{"urgency": dbus.MakeVariant(UrgencyCritical)}, -1)
	assert.Equal(t, uint32(2), critical)
	toastID, _ = s.ToastID(critical)
	assert.Equal(t, model.KindError, toaster.shown[toastID].Kind)
	assert.Zero(t, toaster.shown[toastID].AutoClose)

	explicit := notify(t, s, "app", 0, nil, nil, 250)
	toastID, _ = s.ToastID(explicit)
	assert.Equal(t, 250*time.Millisecond, toaster.shown[toastID].AutoClose)
}

func TestNotify_Rejected(t *testing.T) {
	s, toaster, _ := newTestServer(t)
	toaster.err = errors.New("unsupported kind")

	id, derr := s.Notify("app", 0, "", "x", "", nil, nil, -1)
	require.NotNil(t, derr)
	assert.Equal(t, ErrNameRejected, derr.Name)
	assert.Zero(t, id)
}

func TestNotify_RateLimitedPerApp(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.SetRateLimit(0.001, 2)

	notify(t, s, "noisy", 0, nil, nil, -1)
	notify(t, s, "noisy", 0, nil, nil, -1)
	_, derr := s.Notify("noisy", 0, "", "x", "", nil, nil, -1)
	require.NotNil(t, derr)
	assert.Equal(t, ErrNameRateLimited, derr.Name)

	notify(t, s, "quiet", 0, nil, nil, -1)
}

func TestNotify_ReplacesKeepsID(t *testing.T) {
	s, toaster, em := newTestServer(t)

	id := notify(t, s, "app", 0, nil, nil, -1)
	first, _ := s.ToastID(id)

	again := notify(t, s, "app", id, nil, nil, -1)
	assert.Equal(t, id, again)
	assert.Equal(t, []model.ID{first}, toaster.hidden)

	second, _ := s.ToastID(id)
	assert.NotEqual(t, first, second)

	// The replaced toast closes silently.
	s.HandleClosed(first, model.CloseReasonClosed)
	assert.Empty(t, em.signals)

	s.HandleClosed(second, model.CloseReasonExpired)
	require.Len(t, em.signals, 1)
	assert.Equal(t, []any{id, uint32(CloseReasonExpired)}, em.signals[0].values)
}

func TestNotify_UnknownReplacesIDGetsNewID(t *testing.T) {
	s, toaster, _ := newTestServer(t)

	id := notify(t, s, "app", 42, nil, nil, -1)
	assert.Equal(t, uint32(1), id)
	assert.Empty(t, toaster.hidden)
}

func TestCloseNotification(t *testing.T) {
	s, toaster, em := newTestServer(t)

	id := notify(t, s, "app", 0, nil, nil, -1)
	toastID, _ := s.ToastID(id)

	assert.Nil(t, s.CloseNotification(id))
	assert.Nil(t, s.CloseNotification(999))
	assert.Equal(t, []model.ID{toastID}, toaster.hidden)
	assert.Empty(t, em.signals, "the signal follows the removal")

	s.HandleClosed(toastID, model.CloseReasonClosed)
	s.HandleClosed(toastID, model.CloseReasonClosed)

	require.Len(t, em.signals, 1)
	assert.Equal(t, DBusInterface+".NotificationClosed", em.signals[0].name)
	assert.Equal(t, []any{id, uint32(CloseReasonClosed)}, em.signals[0].values)

	_, ok := s.ToastID(id)
	assert.False(t, ok)
}

func TestDefaultActionOnClick(t *testing.T) {
	s, toaster, em := newTestServer(t)

	id := notify(t, s, "app", 0, []string{"default", "Open"}, nil, -1)
	toastID, _ := s.ToastID(id)
	cfg := toaster.shown[toastID]
	require.NotNil(t, cfg.OnClick)

	cfg.OnClick(toastID)
	require.Len(t, em.signals, 1)
	assert.Equal(t, DBusInterface+".ActionInvoked", em.signals[0].name)
	assert.Equal(t, []any{id, "default"}, em.signals[0].values)
}

func TestSignalsBeforeStart(t *testing.T) {
	s := NewNotificationServer(newFakeToaster(), slog.New(slog.DiscardHandler))
	assert.ErrorIs(t, s.EmitNotificationClosed(1, CloseReasonClosed), ErrNotConnected)
}

func TestGetServerInformation(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.SetServerInfo(ServerInfo{Name: "histoast", Vendor: "v", Version: "1.0.0", SpecVersion: "1.2"})

	name, vendor, version, spec, derr := s.GetServerInformation()
	require.Nil(t, derr)
	assert.Equal(t, []string{"histoast", "v", "1.0.0", "1.2"}, []string{name, vendor, version, spec})

	caps, derr := s.GetCapabilities()
	require.Nil(t, derr)
	assert.Contains(t, caps, "actions")
}

type fakeController struct {
	theme  string
	closed int
}

func (f *fakeController) Status() Status { return Status{Active: 2, Theme: f.theme} }

func (f *fakeController) SetTheme(name string) error {
	if name == "" {
		return errors.New("empty theme name")
	}
	f.theme = name
	return nil
}

func (f *fakeController) CloseAll() { f.closed++ }

func TestControlObject(t *testing.T) {
	ctl := &fakeController{theme: "bootstrap"}
	c := &controlObject{ctl: ctl, logger: slog.New(slog.DiscardHandler)}

	v, derr := c.Status()
	require.Nil(t, derr)
	assert.Equal(t, uint32(2), StatusFromVariants(v).Active)

	assert.Nil(t, c.SetTheme("minimal"))
	assert.Equal(t, "minimal", ctl.theme)
	assert.NotNil(t, c.SetTheme(""))

	assert.Nil(t, c.CloseAll())
	assert.Equal(t, 1, ctl.closed)
}
