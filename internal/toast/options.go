package toast

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/histoast/internal/theme"
	"github.com/jmylchreest/histoast/internal/timer"
)

// DefaultSpacing is the gap between stacked toasts and the screen edge.
const DefaultSpacing = 10

// Task is a scheduled auto-close.
type Task interface {
	// Cancel returns false if the task already ran or was cancelled.
	Cancel() bool
}

// DelayedExecutor runs functions after a delay.
type DelayedExecutor interface {
	Schedule(delay time.Duration, fn func()) Task
}

// queueExecutor adapts a timer.Queue to DelayedExecutor.
type queueExecutor struct {
	q *timer.Queue
}

func (e queueExecutor) Schedule(delay time.Duration, fn func()) Task {
	return e.q.Schedule(delay, fn)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTheme sets the initial theme. The default is the bundled theme.
func WithTheme(t *theme.Theme) Option {
	return func(m *Manager) {
		if t != nil {
			m.theme = t
		}
	}
}

// WithSpacing sets the gap in pixels between toasts.
func WithSpacing(spacing int) Option {
	return func(m *Manager) {
		if spacing >= 0 {
			m.spacing = spacing
		}
	}
}

// WithDurations sets the enter, exit and reposition animation durations.
// Non-positive values keep the defaults.
func WithDurations(enter, exit, move time.Duration) Option {
	return func(m *Manager) {
		if enter > 0 {
			m.enter = enter
		}
		if exit > 0 {
			m.exit = exit
		}
		if move > 0 {
			m.move = move
		}
	}
}

// WithTickInterval sets the animation tick interval.
func WithTickInterval(interval time.Duration) Option {
	return func(m *Manager) {
		m.tick = interval
	}
}

// WithExecutor replaces the auto-close executor. The manager does not start
// or stop a supplied executor.
func WithExecutor(exec DelayedExecutor) Option {
	return func(m *Manager) {
		if exec != nil {
			m.exec = exec
		}
	}
}
