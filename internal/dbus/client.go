package dbus

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/histoast/internal/model"
)

// Client talks to a running daemon over the session bus.
type Client struct {
	conn    *dbus.Conn
	notify  dbus.BusObject
	control dbus.BusObject
}

// NewClient connects to the session bus.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn:    conn,
		notify:  conn.Object(DBusBusName, DBusPath),
		control: conn.Object(ControlBusName, ControlPath),
	}, nil
}

// SendRequest describes a toast sent through Notify.
type SendRequest struct {
	AppName string
	Kind    model.Kind
	Summary string
	Body    string
	Icon    string
	Timeout time.Duration // Negative = server default, 0 = never
}

// Send calls Notify and returns the bus id.
func (c *Client) Send(req SendRequest) (uint32, error) {
	hints := map[string]dbus.Variant{
		KindHint: dbus.MakeVariant(req.Kind.String()),
	}

	timeout := int32(-1)
	if req.Timeout >= 0 {
		timeout = int32(req.Timeout / time.Millisecond)
	}

	appName := req.AppName
	if appName == "" {
		appName = "histoast"
	}

	call := c.notify.Call(
		DBusInterface+".Notify",
		0,
		appName,
		uint32(0),
		req.Icon,
		req.Summary,
		req.Body,
		[]string{},
		hints,
		timeout,
	)
	if call.Err != nil {
		return 0, fmt.Errorf("notify failed: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("failed to read notification id: %w", err)
	}
	return id, nil
}

// Close calls CloseNotification.
func (c *Client) Close(id uint32) error {
	if call := c.notify.Call(DBusInterface+".CloseNotification", 0, id); call.Err != nil {
		return fmt.Errorf("close failed: %w", call.Err)
	}
	return nil
}

// ServerInformation calls GetServerInformation.
func (c *Client) ServerInformation() (ServerInfo, error) {
	var info ServerInfo
	call := c.notify.Call(DBusInterface+".GetServerInformation", 0)
	if call.Err != nil {
		return info, fmt.Errorf("get server information failed: %w", call.Err)
	}
	if err := call.Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion); err != nil {
		return info, fmt.Errorf("failed to read server information: %w", err)
	}
	return info, nil
}

// Status calls the control interface Status method.
func (c *Client) Status() (Status, error) {
	var v map[string]dbus.Variant
	if err := c.control.Call(ControlInterface+".Status", 0).Store(&v); err != nil {
		return Status{}, fmt.Errorf("status failed: %w", err)
	}
	return StatusFromVariants(v), nil
}

// SetTheme calls the control interface SetTheme method.
func (c *Client) SetTheme(name string) error {
	if call := c.control.Call(ControlInterface+".SetTheme", 0, name); call.Err != nil {
		return fmt.Errorf("set theme failed: %w", call.Err)
	}
	return nil
}

// CloseAll calls the control interface CloseAll method.
func (c *Client) CloseAll() error {
	if call := c.control.Call(ControlInterface+".CloseAll", 0); call.Err != nil {
		return fmt.Errorf("close all failed: %w", call.Err)
	}
	return nil
}
