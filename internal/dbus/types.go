package dbus

import (
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/histoast/internal/model"
)

// CloseReason is the reason carried by the NotificationClosed signal.
// Values are fixed by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved by the freedesktop protocol.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// CloseReasonFromModel maps a toast close reason to its wire value.
func CloseReasonFromModel(r model.CloseReason) CloseReason {
	switch r {
	case model.CloseReasonExpired:
		return CloseReasonExpired
	case model.CloseReasonDismissed:
		return CloseReasonDismissed
	case model.CloseReasonClosed:
		return CloseReasonClosed
	default:
		return CloseReasonUndefined
	}
}

// Urgency levels of the "urgency" hint.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// KindHint is the hint that selects the toast kind directly.
const KindHint = "x-histoast-kind"

// DBusNotification represents an incoming D-Bus Notify call.
type DBusNotification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Action represents a notification action with key and label.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ParsedActions converts the D-Bus action array to structured form.
func (n *DBusNotification) ParsedActions() []Action {
	actions := make([]Action, 0, len(n.Actions)/2)
	for i := 0; i+1 < len(n.Actions); i += 2 {
		actions = append(actions, Action{
			Key:   n.Actions[i],
			Label: n.Actions[i+1],
		})
	}
	return actions
}

// HasDefaultAction reports whether the sender asked for click events.
func (n *DBusNotification) HasDefaultAction() bool {
	for _, a := range n.ParsedActions() {
		if a.Key == "default" {
			return true
		}
	}
	return false
}

// Urgency extracts the urgency hint. Returns UrgencyNormal if not specified.
func (n *DBusNotification) Urgency() byte {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return b
		}
	}
	return UrgencyNormal
}

// Category extracts the category hint.
func (n *DBusNotification) Category() string {
	return n.stringHint("category")
}

// Kind picks the toast kind. The x-histoast-kind hint wins, then the
// category, then the urgency.
func (n *DBusNotification) Kind() model.Kind {
	if name := n.stringHint(KindHint); name != "" {
		if kind, err := model.ParseKind(name); err == nil {
			return kind
		}
	}

	category := n.Category()
	switch {
	case strings.HasSuffix(category, ".error"):
		return model.KindError
	case strings.HasSuffix(category, ".complete"),
		strings.HasSuffix(category, ".connected"),
		strings.HasSuffix(category, ".online"):
		return model.KindSuccess
	case strings.HasSuffix(category, ".offline"),
		strings.HasSuffix(category, ".disconnected"):
		return model.KindWarning
	}

	switch n.Urgency() {
	case UrgencyLow:
		return model.KindLog
	case UrgencyCritical:
		return model.KindError
	default:
		return model.KindInfo
	}
}

// Text joins the summary and body into the toast text.
func (n *DBusNotification) Text() string {
	summary := strings.TrimSpace(n.Summary)
	body := strings.TrimSpace(n.Body)
	switch {
	case body == "":
		return summary
	case summary == "":
		return body
	default:
		return summary + "\n" + body
	}
}

// Timeout converts the expire timeout. -1 selects def and 0 never expires.
func (n *DBusNotification) Timeout(def time.Duration) time.Duration {
	switch {
	case n.ExpireTimeout < 0:
		return def
	case n.ExpireTimeout == 0:
		return 0
	default:
		return time.Duration(n.ExpireTimeout) * time.Millisecond
	}
}

// Icon returns the app icon, or the image-path hint when no icon was sent.
func (n *DBusNotification) Icon() string {
	if n.AppIcon != "" {
		return n.AppIcon
	}
	return n.stringHint("image-path")
}

func (n *DBusNotification) stringHint(name string) string {
	if v, ok := n.Hints[name]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// ServerCapabilities lists the capabilities advertised by the daemon.
var ServerCapabilities = []string{
	"actions",     // Only the default action, invoked by a click
	"body",        // Body text is appended to the summary
	"icon-static", // Static icons
	"sound",       // Per-kind sounds
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string
	Vendor      string
	Version     string
	SpecVersion string
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "histoast",
		Vendor:      "jmylchreest",
		Version:     "dev",
		SpecVersion: "1.2",
	}
}
