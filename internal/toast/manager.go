package toast

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/histoast/internal/animation"
	"github.com/jmylchreest/histoast/internal/layout"
	"github.com/jmylchreest/histoast/internal/model"
	"github.com/jmylchreest/histoast/internal/surface"
	"github.com/jmylchreest/histoast/internal/theme"
	"github.com/jmylchreest/histoast/internal/timer"
	"github.com/jmylchreest/histoast/internal/tween"
)

// notification is the manager-private record of one toast.
type notification struct {
	id       model.ID
	cfg      model.Config
	state    model.State
	width    int
	height   int
	y        int // Slot offset within the work area
	surface  surface.Surface
	entry    *tween.Tween
	timer    Task
	queuedAt time.Time
	clicked  bool
	starved  bool
	reason   model.CloseReason
}

// ClosedFunc is called when a toast reaches StateRemoved.
type ClosedFunc func(id model.ID, reason model.CloseReason)

// ShownFunc is called when a toast is admitted onto the screen.
type ShownFunc func(id model.ID, kind model.Kind)

type event struct {
	id     model.ID
	kind   model.Kind
	closed bool
	reason model.CloseReason
}

// Manager owns every toast surface of one backend.
type Manager struct {
	backend surface.Backend
	logger  *slog.Logger
	anim    *animation.Scheduler
	exec    DelayedExecutor
	queue   *timer.Queue // Owned executor, nil when one was supplied
	mail    *mailbox

	spacing int
	enter   time.Duration
	exit    time.Duration
	move    time.Duration
	tick    time.Duration

	mu        sync.Mutex
	theme     *theme.Theme
	reg       *registry
	onClosed  ClosedFunc
	onShown   ShownFunc
	started   bool
	stopped   bool
	manual    bool // No goroutines; tests tick and apply transitions themselves
	startedAt time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a manager drawing on backend. It does nothing until Start.
func New(backend surface.Backend, opts ...Option) *Manager {
	m := &Manager{
		backend: backend,
		logger:  slog.Default(),
		mail:    newMailbox(),
		spacing: DefaultSpacing,
		enter:   animation.DefaultEnter,
		exit:    animation.DefaultExit,
		move:    animation.DefaultMove,
		tick:    animation.DefaultInterval,
		theme:   theme.Default(),
		reg:     newRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.anim = animation.NewScheduler(m.tick, m.logger)
	if m.exec == nil {
		m.queue = timer.NewQueue(m.logger)
		m.exec = queueExecutor{q: m.queue}
	}
	return m
}

// OnClosed sets the callback run when a toast is removed. It runs without
// the manager lock held.
func (m *Manager) OnClosed(fn ClosedFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClosed = fn
}

// OnShown sets the callback run when a toast is admitted. It runs without
// the manager lock held.
func (m *Manager) OnShown(fn ShownFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onShown = fn
}

// Start runs the animation loop, the auto-close timers and the transition
// loop until Stop or until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return ErrStopped
	}
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.startedAt = time.Now()
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stopCh, doneCh := m.stopCh, m.doneCh
	manual := m.manual
	m.mu.Unlock()

	if m.queue != nil {
		m.queue.Start(ctx)
	}
	if manual {
		close(doneCh)
	} else {
		m.anim.Start(ctx)
		go m.transitionLoop(ctx, stopCh, doneCh)
	}

	m.logger.Info("toast manager started", "work_area", m.backend.WorkArea(), "spacing", m.spacing)
	return nil
}

// Stop cancels every timer and animation, disposes every surface and drops
// the queue. No close callbacks run. Stop is idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	started := m.started
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	m.anim.Stop()
	m.anim.CancelAll()
	if m.queue != nil {
		m.queue.Stop()
	}
	if started {
		close(stopCh)
		<-doneCh
	}

	m.mu.Lock()
	var surfaces []surface.Surface
	for _, n := range m.reg.reset() {
		if n.timer != nil {
			n.timer.Cancel()
			n.timer = nil
		}
		if n.surface != nil {
			surfaces = append(surfaces, n.surface)
			n.surface = nil
		}
		n.state = model.StateRemoved
	}
	m.mu.Unlock()

	for _, s := range surfaces {
		s.Dispose()
	}
	m.logger.Info("toast manager stopped", "disposed", len(surfaces))
}

// Show admits a toast, or queues it when the stack has no room. It returns a
// ConfigError when the theme cannot color the toast.
func (m *Manager) Show(cfg model.Config) (Handle, error) {
	if err := cfg.Validate(); err != nil {
		return Handle{}, &ConfigError{Kind: cfg.Kind, Cause: err}
	}

	id, err := model.NewID()
	if err != nil {
		return Handle{}, err
	}

	area := m.backend.WorkArea()
	w, h := m.backend.Measure(cfg.Content)
	n := &notification{id: id, cfg: cfg, width: w, height: h}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return Handle{}, ErrStopped
	}
	if _, err := m.colorsLocked(cfg.Kind); err != nil {
		m.mu.Unlock()
		return Handle{}, err
	}

	var events []event
	if m.blockedLocked(area) {
		m.enqueueLocked(n, area, nil)
	} else {
		admitted, err := m.admitLocked(n, area)
		if err != nil {
			m.mu.Unlock()
			return Handle{}, err
		}
		if admitted {
			events = append(events, event{id: id, kind: cfg.Kind})
		} else {
			m.enqueueLocked(n, area, nil)
		}
	}
	state := n.state
	queueSize := m.reg.queue.Len()
	m.mu.Unlock()

	m.emit(events)
	m.logger.Debug("toast shown", "id", id, "kind", cfg.Kind, "state", state, "queue_size", queueSize)
	return Handle{id: id, m: m}, nil
}

// Hide dismisses a toast. Queued toasts are dropped at once; shown ones slide
// out. Hiding an exiting or removed toast does nothing.
func (m *Manager) Hide(h Handle) {
	m.hide(h.id, model.CloseReasonClosed)
}

// HideByID is Hide for callers that only kept the id.
func (m *Manager) HideByID(id model.ID) {
	m.hide(id, model.CloseReasonClosed)
}

// HideAll dismisses every shown toast and drops the queue.
func (m *Manager) HideAll() {
	m.mu.Lock()
	var events []event
	for _, n := range m.reg.queued() {
		events = append(events, m.hideLocked(n, model.CloseReasonClosed)...)
	}
	for _, n := range slices.Clone(m.reg.active) {
		events = append(events, m.hideLocked(n, model.CloseReasonClosed)...)
	}
	m.mu.Unlock()

	m.emit(events)
}

// Click handles a click on a shown toast: the click callback runs once, then
// the toast is dismissed. Clicks on exiting toasts are ignored.
func (m *Manager) Click(h Handle) {
	m.mu.Lock()
	n := m.reg.get(h.id)
	if n == nil || n.clicked || (n.state != model.StateEntering && n.state != model.StateActive) {
		m.mu.Unlock()
		return
	}
	n.clicked = true
	callback := n.cfg.OnClick
	m.mu.Unlock()

	if callback != nil {
		callback(h.id)
	}
	m.hide(h.id, model.CloseReasonDismissed)
}

// SetTheme replaces the theme used by later admissions. Shown toasts keep
// their colors.
func (m *Manager) SetTheme(t *theme.Theme) {
	if t == nil {
		return
	}
	m.mu.Lock()
	m.theme = t
	m.mu.Unlock()
	m.logger.Info("toast theme changed", "theme", t.Name)
}

// Theme returns the current theme.
func (m *Manager) Theme() *theme.Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.theme
}

// Handle returns a handle for id. The toast need not exist.
func (m *Manager) Handle(id model.ID) Handle {
	return Handle{id: id, m: m}
}

// State returns the state of the toast with id. Unknown ids are Removed.
func (m *Manager) State(id model.ID) model.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := m.reg.get(id); n != nil {
		return n.state
	}
	return model.StateRemoved
}

func (m *Manager) hide(id model.ID, reason model.CloseReason) {
	m.mu.Lock()
	n := m.reg.get(id)
	if n == nil || !n.state.Dismissible() {
		m.mu.Unlock()
		return
	}
	events := m.hideLocked(n, reason)
	m.mu.Unlock()

	m.emit(events)
	m.logger.Debug("toast hidden", "id", id, "reason", reason)
}

func (m *Manager) hideLocked(n *notification, reason model.CloseReason) []event {
	n.reason = reason

	if n.state == model.StateQueued {
		m.reg.drop(n)
		return []event{{id: n.id, kind: n.cfg.Kind, closed: true, reason: reason}}
	}

	if n.timer != nil {
		n.timer.Cancel()
		n.timer = nil
	}
	if n.entry != nil {
		n.entry.Cancel()
		n.entry = nil
	}

	m.reg.promoteToExiting(n)

	id := n.id
	m.anim.Add(animation.Exit(n.surface, m.slide(m.backend.WorkArea(), n, m.exit), func() {
		m.mail.post(transition{kind: transitionRemove, id: id})
	}))
	return nil
}

// admitLocked places n above the active stack. It returns false when n does
// not fit.
func (m *Manager) admitLocked(n *notification, area layout.Rect) (bool, error) {
	y, ok := layout.Admit(area, m.reg.activeHeights(), n.height, m.spacing)
	if !ok {
		return false, nil
	}

	colors, err := m.colorsLocked(n.cfg.Kind)
	if err != nil {
		return false, err
	}
	s, err := m.backend.Create(colors, n.cfg.Content)
	if err != nil {
		return false, fmt.Errorf("failed to create surface: %w", err)
	}

	n.surface = s
	m.reg.admit(n, y)

	h := Handle{id: n.id, m: m}
	s.SetPosition(area.Right(), area.Y+y)
	s.OnClick(func() { m.Click(h) })

	id := n.id
	n.entry = m.anim.Add(animation.Entry(s, m.slide(area, n, m.enter), func() {
		m.mail.post(transition{kind: transitionActivate, id: id})
	}))
	return true, nil
}

// enqueueLocked inserts n into the queue before mark, or at the back when
// mark is nil.
func (m *Manager) enqueueLocked(n *notification, area layout.Rect, mark *list.Element) {
	m.reg.enqueue(n, mark)

	if !n.starved && !layout.Fits(area, n.height, m.spacing) {
		n.starved = true
		m.logger.Warn("toast is taller than the work area and stays queued",
			"id", n.id,
			"height", n.height,
			"work_area_height", area.Height,
		)
	}
}

// blockedLocked reports whether a queued toast that could ever fit is
// waiting. New toasts then queue behind it.
func (m *Manager) blockedLocked(area layout.Rect) bool {
	for e := m.reg.queue.Front(); e != nil; e = e.Next() {
		if layout.Fits(area, e.Value.(*notification).height, m.spacing) {
			return true
		}
	}
	return false
}

// drainLocked admits queued toasts in order until one does not fit. Toasts
// taller than the work area are skipped and keep their place.
func (m *Manager) drainLocked(area layout.Rect) []event {
	var events []event
	for e := m.reg.queue.Front(); e != nil; {
		n := e.Value.(*notification)
		next := e.Next()
		if !layout.Fits(area, n.height, m.spacing) {
			e = next
			continue
		}

		m.reg.unqueue(n)

		admitted, err := m.admitLocked(n, area)
		if err != nil {
			m.logger.Warn("dropping queued toast", "id", n.id, "error", err)
			m.reg.drop(n)
			n.reason = model.CloseReasonClosed
			events = append(events, event{id: n.id, kind: n.cfg.Kind, closed: true, reason: n.reason})
			e = next
			continue
		}
		if !admitted {
			m.enqueueLocked(n, area, next)
			break
		}
		events = append(events, event{id: n.id, kind: n.cfg.Kind})
		e = next
	}
	return events
}

// consolidateLocked slides the active toasts down over the gaps left by
// removed ones.
func (m *Manager) consolidateLocked(area layout.Rect) {
	for _, mv := range m.reg.consolidate(area, m.spacing) {
		n := m.reg.get(model.ID(mv.ID))
		if n == nil || n.surface == nil {
			continue
		}
		m.anim.AddExclusive(mv.ID, animation.Reposition(n.surface, area.Y+mv.ToY, m.move))
	}
}

func (m *Manager) activate(id model.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.reg.get(id)
	if n == nil || n.state != model.StateEntering {
		return
	}
	n.state = model.StateActive
	n.entry = nil
	if n.cfg.ShouldAutoClose() {
		n.timer = m.exec.Schedule(n.cfg.AutoClose, func() {
			m.hide(id, model.CloseReasonExpired)
		})
	}
}

func (m *Manager) remove(id model.ID) []event {
	m.mu.Lock()
	n := m.reg.finalizeRemoval(id)
	if n == nil {
		m.mu.Unlock()
		return nil
	}

	s := n.surface
	n.surface = nil
	m.anim.Cancel(string(id))

	events := []event{{id: id, kind: n.cfg.Kind, closed: true, reason: n.reason}}
	if len(m.reg.removing) == 0 {
		area := m.backend.WorkArea()
		m.consolidateLocked(area)
		events = append(events, m.drainLocked(area)...)
	}
	queueSize := m.reg.queue.Len()
	m.mu.Unlock()

	if s != nil {
		s.Dispose()
	}
	m.logger.Debug("toast removed", "id", id, "reason", n.reason, "queue_size", queueSize)
	return events
}

// processPending applies every transition posted by animation hooks.
func (m *Manager) processPending() {
	for _, t := range m.mail.drain() {
		switch t.kind {
		case transitionActivate:
			m.activate(t.id)
		case transitionRemove:
			m.emit(m.remove(t.id))
		}
	}
}

func (m *Manager) transitionLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-m.mail.notify:
			m.processPending()
		}
	}
}

func (m *Manager) emit(events []event) {
	if len(events) == 0 {
		return
	}

	m.mu.Lock()
	onClosed, onShown := m.onClosed, m.onShown
	m.mu.Unlock()

	for _, ev := range events {
		switch {
		case ev.closed && onClosed != nil:
			onClosed(ev.id, ev.reason)
		case !ev.closed && onShown != nil:
			onShown(ev.id, ev.kind)
		}
	}
}

// colorsLocked resolves the colors for kind, falling back to the log colors.
func (m *Manager) colorsLocked(kind model.Kind) (theme.ColorPair, error) {
	if c, ok := m.theme.Lookup(kind); ok {
		return c, nil
	}
	if c, ok := m.theme.Lookup(model.KindLog); ok {
		return c, nil
	}
	return theme.ColorPair{}, &ConfigError{Kind: kind, Cause: ErrUnsupportedKind}
}

func (m *Manager) slide(area layout.Rect, n *notification, d time.Duration) animation.Slide {
	return animation.Slide{
		ScreenRight: area.Right(),
		Width:       n.width,
		Height:      n.height,
		Spacing:     m.spacing,
		Duration:    d,
	}
}
