// Package x11 shows toast surfaces as override-redirect X11 windows.
package x11

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/jmylchreest/histoast/internal/layout"
	"github.com/jmylchreest/histoast/internal/model"
	"github.com/jmylchreest/histoast/internal/surface"
	"github.com/jmylchreest/histoast/internal/theme"
)

// Core fonts tried in order when opening the text font.
var fontNames = []string{"-misc-fixed-medium-r-normal--18-*-*-*-*-*-iso8859-1", "9x15", "fixed"}

// Backend creates surfaces on the X display named by $DISPLAY.
type Backend struct {
	mu      sync.Mutex
	xu      *xgbutil.XUtil
	root    xproto.Window
	font    xproto.Font
	metrics surface.Metrics
	logger  *slog.Logger
	windows map[xproto.Window]*window
	closed  bool
	done    chan struct{}
}

// New connects to the X server and starts the event loop.
func New(metrics surface.Metrics, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, &surface.BackendError{Backend: "x11", Message: "failed to connect to X server", Cause: err}
	}

	font, err := openFont(xu.Conn())
	if err != nil {
		xu.Conn().Close()
		return nil, &surface.BackendError{Backend: "x11", Message: "failed to open font", Cause: err}
	}

	b := &Backend{
		xu:      xu,
		root:    xu.RootWin(),
		font:    font,
		metrics: metrics,
		logger:  logger,
		windows: make(map[xproto.Window]*window),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(b.done)
		xevent.Main(xu)
	}()

	logger.Debug("x11 backend connected", "work_area", b.WorkArea())
	return b, nil
}

func openFont(conn *xgb.Conn) (xproto.Font, error) {
	font, err := xproto.NewFontId(conn)
	if err != nil {
		return 0, err
	}
	for _, name := range fontNames {
		err = xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check()
		if err == nil {
			return font, nil
		}
	}
	return 0, err
}

// Measure implements surface.Backend.
func (b *Backend) Measure(content model.Content) (int, int) {
	return b.metrics.Size(content)
}

// Create implements surface.Backend.
func (b *Backend) Create(colors theme.ColorPair, content model.Content) (surface.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, &surface.BackendError{Backend: "x11", Message: "create surface", Cause: surface.ErrClosed}
	}

	w, err := b.newWindow(colors, content)
	if err != nil {
		return nil, &surface.BackendError{Backend: "x11", Message: "create surface", Cause: err}
	}
	b.windows[w.id] = w
	return w, nil
}

// WorkArea implements surface.Backend. It prefers the EWMH work area of the
// current desktop and falls back to the root window size.
func (b *Backend) WorkArea() layout.Rect {
	if areas, err := ewmh.WorkareaGet(b.xu); err == nil && len(areas) > 0 {
		index := 0
		if desktop, err := ewmh.CurrentDesktopGet(b.xu); err == nil && int(desktop) < len(areas) {
			index = int(desktop)
		}
		wa := areas[index]
		return layout.Rect{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}
	}

	screen := b.xu.Screen()
	return layout.Rect{Width: int(screen.WidthInPixels), Height: int(screen.HeightInPixels)}
}

// Close implements surface.Backend. Remaining windows are destroyed.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	windows := make([]*window, 0, len(b.windows))
	for _, w := range b.windows {
		windows = append(windows, w)
	}
	b.mu.Unlock()

	for _, w := range windows {
		w.Dispose()
	}

	conn := b.xu.Conn()
	xproto.CloseFont(conn, b.font)
	xevent.Quit(b.xu)
	<-b.done
	conn.Close()
	b.logger.Debug("x11 backend closed")
	return nil
}

func (b *Backend) forget(id xproto.Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.windows, id)
}

func (b *Backend) newWindow(colors theme.ColorPair, content model.Content) (*window, error) {
	conn := b.xu.Conn()
	screen := b.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	bg := theme.Pixel(colors.Background)
	fg := theme.Pixel(colors.Foreground)

	// Value list order follows the mask bit order: back pixel, override
	// redirect, event mask.
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		b.root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{bg, 1, uint32(xproto.EventMaskExposure | xproto.EventMaskButtonPress)},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, err
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(wid),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{fg, bg, uint32(b.font), 0},
	).Check()
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, fmt.Errorf("failed to create graphics context: %w", err)
	}

	minW, minH := b.metrics.Size(content)
	w := &window{
		backend: b,
		id:      wid,
		gc:      gc,
		lines:   b.metrics.Lines(content),
		icon:    content.Icon != "",
		metrics: b.metrics,
		minW:    minW,
		minH:    minH,
		w:       1,
		h:       1,
	}

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			w.draw()
		}
	}).Connect(b.xu, wid)
	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, _ xevent.ButtonPressEvent) {
		w.click()
	}).Connect(b.xu, wid)

	return w, nil
}
