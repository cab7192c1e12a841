package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID identifies a toast for its whole lifetime. It is a ULID string, so ids
// sort by creation time.
type ID string

// NewID generates a new ULID-based toast id.
func NewID() (ID, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return ID(id.String()), nil
}

// Time returns the creation time encoded in the id, or the zero time if the
// id is not a valid ULID.
func (id ID) Time() time.Time {
	parsed, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(parsed.Time())
}

// Content is the renderable payload of a toast. The manager never inspects it;
// surface backends use it to draw and to compute a minimum size.
type Content struct {
	Text string `json:"text"`
	Icon string `json:"icon,omitempty"` // Icon name or path, backend specific
}

// ClickFunc is invoked when a toast is clicked. It runs at most once.
type ClickFunc func(id ID)

// Config describes a toast to show. It is usually produced by a Builder.
type Config struct {
	Kind      Kind
	Content   Content
	AutoClose time.Duration // 0 = never close automatically
	OnClick   ClickFunc
}

// Validation errors.
var (
	ErrInvalidKind       = errors.New("kind must be one of log, info, warning, error, success")
	ErrNegativeAutoClose = errors.New("auto close delay cannot be negative")
)

// Validate checks the structural fields of a config.
func (c Config) Validate() error {
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	if c.AutoClose < 0 {
		return ErrNegativeAutoClose
	}
	return nil
}

// ShouldAutoClose reports whether an auto-close timer must be armed once the
// toast has finished entering.
func (c Config) ShouldAutoClose() bool {
	return c.AutoClose > 0
}

// State is the lifecycle position of a toast.
type State int

const (
	// StateQueued means the toast is waiting for screen space.
	StateQueued State = iota
	// StateEntering means the toast is sliding in.
	StateEntering
	// StateActive means the toast is fully shown; auto close may be armed.
	StateActive
	// StateExiting means the toast is sliding out.
	StateExiting
	// StateRemoved is terminal; the surface has been disposed.
	StateRemoved
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateEntering:
		return "entering"
	case StateActive:
		return "active"
	case StateExiting:
		return "exiting"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Dismissible reports whether a dismiss request still has an effect.
func (s State) Dismissible() bool {
	return s == StateQueued || s == StateEntering || s == StateActive
}

// CloseReason explains why a toast reached StateRemoved.
type CloseReason int

const (
	// CloseReasonExpired means the auto-close timer fired.
	CloseReasonExpired CloseReason = iota + 1
	// CloseReasonDismissed means the user clicked the toast.
	CloseReasonDismissed
	// CloseReasonClosed means it was hidden programmatically.
	CloseReasonClosed
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
	default:
		return "unknown"
	}
}
