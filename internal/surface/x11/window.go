package x11

import (
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/jmylchreest/histoast/internal/surface"
)

// window is a surface.Surface backed by an override-redirect window.
type window struct {
	backend *Backend
	id      xproto.Window
	gc      xproto.Gcontext
	lines   []string
	icon    bool
	metrics surface.Metrics
	minW    int
	minH    int

	mu       sync.Mutex
	x, y     int
	w, h     int
	visible  bool
	disposed bool
	onClick  func()
}

func (w *window) MinSize() (int, int) {
	return w.minW, w.minH
}

func (w *window) Position() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.x, w.y
}

func (w *window) SetPosition(x, y int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed || (w.x == x && w.y == y) {
		return
	}
	w.x, w.y = x, y
	w.configure()
}

func (w *window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w, w.h
}

func (w *window) SetSize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	width, height = max(width, 1), max(height, 1)
	if w.disposed || (w.w == width && w.h == height) {
		return
	}
	w.w, w.h = width, height
	w.configure()
}

// configure pushes the geometry to the server. Callers hold w.mu.
func (w *window) configure() {
	xproto.ConfigureWindow(
		w.backend.xu.Conn(),
		w.id,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(int32(w.x)),
			uint32(int32(w.y)),
			uint32(w.w),
			uint32(w.h),
			xproto.StackModeAbove,
		},
	)
}

func (w *window) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *window) SetVisible(visible bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed || w.visible == visible {
		return
	}
	w.visible = visible
	if visible {
		xproto.MapWindow(w.backend.xu.Conn(), w.id)
	} else {
		xproto.UnmapWindow(w.backend.xu.Conn(), w.id)
	}
}

func (w *window) OnClick(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClick = fn
}

func (w *window) click() {
	w.mu.Lock()
	fn := w.onClick
	if w.disposed {
		fn = nil
	}
	w.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// draw repaints the text. ImageText8 only carries Latin-1, so other runes
// are replaced.
func (w *window) draw() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed || !w.visible {
		return
	}

	conn := w.backend.xu.Conn()
	xproto.ClearArea(conn, false, w.id, 0, 0, 0, 0)

	m := w.metrics
	x := m.Padding
	if w.icon && m.IconSize > 0 {
		// Icons are not rasterized; the column shows a badge in the text color.
		xproto.PolyFillRectangle(conn, xproto.Drawable(w.id), w.gc, []xproto.Rectangle{{
			X:      int16(m.Padding),
			Y:      int16(m.Padding),
			Width:  uint16(m.IconSize),
			Height: uint16(m.IconSize),
		}})
		x += m.IconSize + m.Padding
	}
	baseline := m.Padding + m.LineHeight - 4
	for i, line := range w.lines {
		text := latin1(line)
		if len(text) == 0 {
			continue
		}
		xproto.ImageText8(
			conn,
			byte(len(text)),
			xproto.Drawable(w.id),
			w.gc,
			int16(x),
			int16(baseline+i*m.LineHeight),
			text,
		)
	}
}

func (w *window) Dispose() {
	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return
	}
	w.disposed = true
	w.visible = false
	w.onClick = nil
	w.mu.Unlock()

	conn := w.backend.xu.Conn()
	xevent.Detach(w.backend.xu, w.id)
	xproto.FreeGC(conn, w.gc)
	xproto.DestroyWindow(conn, w.id)
	w.backend.forget(w.id)
}

// latin1 converts s for ImageText8, truncated to the 255 byte request limit.
func latin1(s string) string {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if len(buf) == 255 {
			break
		}
		if r > 0xff {
			r = '?'
		}
		buf = append(buf, byte(r))
	}
	return string(buf)
}
