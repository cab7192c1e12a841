package animation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/histoast/internal/tween"
)

type fakeTarget struct {
	mu      sync.Mutex
	x, y    int
	w, h    int
	visible bool
	widths  []int
}

func (f *fakeTarget) Position() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.x, f.y
}

func (f *fakeTarget) SetPosition(x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.x, f.y = x, y
}

func (f *fakeTarget) SetSize(w, h int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.w, f.h = w, h
	f.widths = append(f.widths, w)
}

func (f *fakeTarget) SetVisible(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = v
}

// run ticks the scheduler every 10ms of virtual time until it is idle.
func run(s *Scheduler, start time.Time) time.Time {
	now := start
	for i := 0; i < 1000 && s.Len() > 0; i++ {
		s.Tick(now)
		now = now.Add(10 * time.Millisecond)
	}
	return now
}

func TestScheduler_AdvancesByElapsedTime(t *testing.T) {
	s := NewScheduler(0, nil)
	var values []float64
	s.Add(tween.New(0, 100, 100*time.Millisecond, tween.Linear, tween.Hooks{
		OnStep: func(v float64) { values = append(values, v) },
	}))

	base := time.Unix(1000, 0)
	s.Tick(base)                             // start, no elapsed time
	s.Tick(base.Add(30 * time.Millisecond))  // +30ms
	s.Tick(base.Add(100 * time.Millisecond)) // +70ms
	s.Tick(base.Add(200 * time.Millisecond)) // done, pruned

	require.Len(t, values, 3)
	assert.InDelta(t, 0, values[0], 1e-9)
	assert.InDelta(t, 30, values[1], 1e-9)
	assert.InDelta(t, 100, values[2], 1e-9)
	assert.Zero(t, s.Len())
}

func TestScheduler_FreshTweenIgnoresEarlierTime(t *testing.T) {
	s := NewScheduler(0, nil)
	base := time.Unix(1000, 0)
	s.Tick(base)

	var first float64 = -1
	s.Add(tween.New(0, 1, time.Second, tween.Linear, tween.Hooks{
		OnStep: func(v float64) {
			if first < 0 {
				first = v
			}
		},
	}))
	s.Tick(base.Add(500 * time.Millisecond))
	assert.Equal(t, 0.0, first)
}

func TestScheduler_AddExclusiveCancelsPrevious(t *testing.T) {
	s := NewScheduler(0, nil)
	first := s.AddExclusive("a", tween.New(0, 1, time.Second, nil, tween.Hooks{}))
	other := s.AddExclusive("b", tween.New(0, 1, time.Second, nil, tween.Hooks{}))
	second := s.AddExclusive("a", tween.New(0, 1, time.Second, nil, tween.Hooks{}))

	assert.Equal(t, tween.StateCancelled, first.State())
	assert.Equal(t, tween.StatePending, other.State())
	assert.Equal(t, tween.StatePending, second.State())
	assert.Equal(t, 2, s.Len())

	s.Tick(time.Unix(1, 0))
	assert.Equal(t, tween.StateRunning, second.State())
}

func TestScheduler_CancelByKey(t *testing.T) {
	s := NewScheduler(0, nil)
	tw := s.AddExclusive("a", tween.New(0, 1, time.Second, nil, tween.Hooks{}))

	assert.False(t, s.Cancel("missing"))
	assert.True(t, s.Cancel("a"))
	assert.Equal(t, tween.StateCancelled, tw.State())
	assert.False(t, s.Cancel("a"))
	assert.Zero(t, s.Len())
}

func TestScheduler_HooksMayRegisterTweens(t *testing.T) {
	s := NewScheduler(0, nil)
	chained := false
	s.Add(tween.New(0, 1, 10*time.Millisecond, nil, tween.Hooks{
		OnComplete: func() {
			s.Add(tween.New(0, 1, 10*time.Millisecond, nil, tween.Hooks{
				OnComplete: func() { chained = true },
			}))
		},
	}))

	run(s, time.Unix(1, 0))
	assert.True(t, chained)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(time.Millisecond, nil)
	var completed atomic.Bool
	s.Add(tween.New(0, 1, 20*time.Millisecond, nil, tween.Hooks{
		OnComplete: func() { completed.Store(true) },
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	s.Start(ctx) // no-op

	require.Eventually(t, completed.Load, 2*time.Second, 5*time.Millisecond)

	pending := s.Add(tween.New(0, 1, time.Hour, nil, tween.Hooks{}))
	s.Stop()
	s.Stop() // idempotent
	assert.Equal(t, tween.StateCancelled, pending.State())
	assert.Zero(t, s.Len())
}

func TestEntry(t *testing.T) {
	target := &fakeTarget{y: 400}
	s := NewScheduler(0, nil)
	done := false
	slide := Slide{ScreenRight: 1920, Width: 300, Height: 64, Spacing: 10, Duration: DefaultEnter}
	s.Add(Entry(target, slide, func() { done = true }))

	run(s, time.Unix(1, 0))

	require.True(t, done)
	assert.Equal(t, 1920-310, target.x)
	assert.Equal(t, 400, target.y, "entry never moves vertically")
	assert.Equal(t, 300, target.w)
	assert.Equal(t, 64, target.h)
	assert.True(t, target.visible)
	for _, w := range target.widths {
		assert.GreaterOrEqual(t, w, 1)
		assert.LessOrEqual(t, w, 300)
	}
	assert.Equal(t, 1, target.widths[0], "starts fully clipped")
}

func TestExit(t *testing.T) {
	target := &fakeTarget{x: 1610, y: 200, w: 300, h: 64, visible: true}
	s := NewScheduler(0, nil)
	done := false
	slide := Slide{ScreenRight: 1920, Width: 300, Height: 64, Spacing: 10, Duration: DefaultExit}
	s.Add(Exit(target, slide, func() { done = true }))

	base := time.Unix(1, 0)
	s.Tick(base)
	s.Tick(base.Add(100 * time.Millisecond))

	// Back-in pulls the toast left first; it still reaches the edge.
	require.Less(t, target.x, 1610)
	assert.Equal(t, 1920-target.x, target.w)
	assert.Greater(t, target.w, 310)
	assert.False(t, done)

	run(s, base.Add(110*time.Millisecond))

	require.True(t, done)
	assert.Equal(t, 1920, target.x)
	assert.Equal(t, 1, target.w)
	assert.False(t, target.visible)
}

func TestReposition(t *testing.T) {
	target := &fakeTarget{x: 1610, y: 100}
	s := NewScheduler(0, nil)
	s.AddExclusive("t", Reposition(target, 526, DefaultMove))

	run(s, time.Unix(1, 0))

	assert.Equal(t, 526, target.y)
	assert.Equal(t, 1610, target.x, "reposition never moves horizontally")
}

func TestReposition_SupersededKeepsLatestTarget(t *testing.T) {
	target := &fakeTarget{x: 5, y: 100}
	s := NewScheduler(0, nil)
	base := time.Unix(1, 0)

	s.AddExclusive("t", Reposition(target, 500, DefaultMove))
	s.Tick(base)
	s.Tick(base.Add(100 * time.Millisecond))
	s.AddExclusive("t", Reposition(target, 300, DefaultMove))

	run(s, base.Add(110*time.Millisecond))
	assert.Equal(t, 300, target.y)
}

func TestRevealWidth(t *testing.T) {
	assert.Equal(t, 1, revealWidth(-5, 300))
	assert.Equal(t, 150, revealWidth(150, 300))
	assert.Equal(t, 300, revealWidth(310, 300))
}
