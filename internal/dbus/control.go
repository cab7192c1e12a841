package dbus

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// ControlInterface is the daemon control interface name.
	ControlInterface = "io.github.jmylchreest.Histoast"
	// ControlPath is the control object path.
	ControlPath = "/io/github/jmylchreest/Histoast"
	// ControlBusName is the bus name claimed for the control interface.
	ControlBusName = "io.github.jmylchreest.Histoast"
)

// Status is the daemon state reported by the control interface.
type Status struct {
	Active       uint32
	Removing     uint32
	Queued       uint32
	Theme        string
	Backend      string
	StartedAt    time.Time
	OldestQueued time.Time // Zero when nothing is queued
}

// Variants encodes s as an a{sv} dictionary.
func (s Status) Variants() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"active":        dbus.MakeVariant(s.Active),
		"removing":      dbus.MakeVariant(s.Removing),
		"queued":        dbus.MakeVariant(s.Queued),
		"theme":         dbus.MakeVariant(s.Theme),
		"backend":       dbus.MakeVariant(s.Backend),
		"started_at":    dbus.MakeVariant(unixMilli(s.StartedAt)),
		"oldest_queued": dbus.MakeVariant(unixMilli(s.OldestQueued)),
	}
}

// StatusFromVariants decodes a dictionary produced by Variants. Missing or
// mistyped entries are left zero.
func StatusFromVariants(v map[string]dbus.Variant) Status {
	var s Status
	s.Active, _ = v["active"].Value().(uint32)
	s.Removing, _ = v["removing"].Value().(uint32)
	s.Queued, _ = v["queued"].Value().(uint32)
	s.Theme, _ = v["theme"].Value().(string)
	s.Backend, _ = v["backend"].Value().(string)
	if ms, ok := v["started_at"].Value().(int64); ok && ms > 0 {
		s.StartedAt = time.UnixMilli(ms)
	}
	if ms, ok := v["oldest_queued"].Value().(int64); ok && ms > 0 {
		s.OldestQueued = time.UnixMilli(ms)
	}
	return s
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// Controller backs the control interface.
type Controller interface {
	Status() Status
	SetTheme(name string) error
	CloseAll()
}

// controlObject is exported at ControlPath.
type controlObject struct {
	ctl    Controller
	logger *slog.Logger
}

func (c *controlObject) export(conn *dbus.Conn) error {
	if err := conn.Export(c, ControlPath, ControlInterface); err != nil {
		return fmt.Errorf("failed to export control object: %w", err)
	}
	node := &introspect.Node{
		Name: ControlPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name: ControlInterface,
				Methods: []introspect.Method{
					{Name: "Status", Args: []introspect.Arg{{Name: "status", Type: "a{sv}", Direction: "out"}}},
					{Name: "SetTheme", Args: []introspect.Arg{{Name: "name", Type: "s", Direction: "in"}}},
					{Name: "CloseAll"},
				},
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ControlPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export control introspectable: %w", err)
	}
	return nil
}

// Status returns the daemon status.
// D-Bus method: Status() -> a{sv}
func (c *controlObject) Status() (map[string]dbus.Variant, *dbus.Error) {
	return c.ctl.Status().Variants(), nil
}

// SetTheme switches the theme used for new toasts.
// D-Bus method: SetTheme(s) -> nothing
func (c *controlObject) SetTheme(name string) *dbus.Error {
	if err := c.ctl.SetTheme(name); err != nil {
		c.logger.Warn("SetTheme failed", "theme", name, "error", err)
		return dbus.MakeFailedError(err)
	}
	return nil
}

// CloseAll hides every toast and drops the queue.
// D-Bus method: CloseAll() -> nothing
func (c *controlObject) CloseAll() *dbus.Error {
	c.ctl.CloseAll()
	return nil
}
