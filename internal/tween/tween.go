package tween

import (
	"sync"
	"time"
)

// State is the lifecycle position of a tween.
type State int

const (
	StatePending State = iota
	StateRunning
	StateCompleted
	StateCancelled
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Done reports whether the state is terminal.
func (s State) Done() bool {
	return s == StateCompleted || s == StateCancelled
}

// Hooks are invoked by Advance, outside any lock held by the tween.
type Hooks struct {
	OnStart    func()
	OnStep     func(value float64)
	OnComplete func()
}

// Tween moves a value from From to To over Duration.
type Tween struct {
	from     float64
	to       float64
	duration time.Duration
	ease     Easing
	hooks    Hooks

	mu      sync.Mutex
	state   State
	elapsed time.Duration
}

// New creates a pending tween. A nil ease means Linear.
func New(from, to float64, duration time.Duration, ease Easing, hooks Hooks) *Tween {
	if ease == nil {
		ease = Linear
	}
	return &Tween{
		from:     from,
		to:       to,
		duration: duration,
		ease:     ease,
		hooks:    hooks,
	}
}

// State returns the current state.
func (t *Tween) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Cancel stops the tween. It returns false if the tween had already finished.
// No hook runs after a successful Cancel returns, except a step already in
// flight on the advancing goroutine.
func (t *Tween) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Done() {
		return false
	}
	t.state = StateCancelled
	return true
}

// Advance moves the tween forward by dt and runs its hooks. The first call
// starts the tween. It returns true once the tween is finished.
func (t *Tween) Advance(dt time.Duration) bool {
	t.mu.Lock()
	if t.state.Done() {
		t.mu.Unlock()
		return true
	}
	started := t.state == StatePending
	t.state = StateRunning
	if dt > 0 {
		t.elapsed += dt
	}
	progress := 1.0
	if t.duration > 0 && t.elapsed < t.duration {
		progress = float64(t.elapsed) / float64(t.duration)
	}
	finished := progress >= 1
	if finished {
		t.state = StateCompleted
	}
	t.mu.Unlock()

	if started && t.hooks.OnStart != nil {
		t.hooks.OnStart()
	}
	if t.hooks.OnStep != nil {
		t.hooks.OnStep(t.valueAt(progress))
	}
	if finished && t.hooks.OnComplete != nil {
		t.hooks.OnComplete()
	}
	return finished
}

func (t *Tween) valueAt(progress float64) float64 {
	if progress >= 1 {
		return t.to
	}
	return t.from + (t.to-t.from)*t.ease(progress)
}
