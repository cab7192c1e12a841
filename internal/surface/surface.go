// Package surface defines the drawable window a toast is shown in, and the
// backends that create surfaces.
package surface

import (
	"errors"

	"github.com/jmylchreest/histoast/internal/layout"
	"github.com/jmylchreest/histoast/internal/model"
	"github.com/jmylchreest/histoast/internal/theme"
)

// Surface is a borderless window. Implementations are safe for concurrent use.
type Surface interface {
	// MinSize returns the smallest size that fits the content.
	MinSize() (w, h int)
	Position() (x, y int)
	SetPosition(x, y int)
	Size() (w, h int)
	SetSize(w, h int)
	Visible() bool
	SetVisible(visible bool)
	// OnClick sets the handler run when the user clicks the surface.
	OnClick(fn func())
	// Dispose releases the window. Further calls are no-ops.
	Dispose()
}

// Backend creates surfaces on one display.
type Backend interface {
	// Measure returns the size a surface for content would have, without
	// creating one.
	Measure(content model.Content) (w, h int)
	Create(colors theme.ColorPair, content model.Content) (Surface, error)
	// WorkArea returns the usable screen area, excluding panels.
	WorkArea() layout.Rect
	Close() error
}

// ErrClosed is returned by Create after the backend was closed.
var ErrClosed = errors.New("backend closed")

// BackendError represents a failure reported by a windowing backend.
type BackendError struct {
	Backend string
	Message string
	Cause   error
}

func (e *BackendError) Error() string {
	msg := e.Backend + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}
