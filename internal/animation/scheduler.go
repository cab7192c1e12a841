// Package animation drives tweens from a single fixed-interval tick loop.
package animation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/histoast/internal/tween"
)

// DefaultInterval is the tick interval used when none is configured.
const DefaultInterval = 10 * time.Millisecond

type entry struct {
	key   string
	tw    *tween.Tween
	fresh bool // registered since the previous tick
}

type step struct {
	tw *tween.Tween
	dt time.Duration
}

// Scheduler advances registered tweens by the real time elapsed between ticks.
// Hooks run on the ticking goroutine with no scheduler lock held, so they may
// register or cancel tweens.
type Scheduler struct {
	mu       sync.Mutex
	logger   *slog.Logger
	interval time.Duration
	entries  []*entry
	keyed    map[string]*entry
	lastTick time.Time

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewScheduler creates a scheduler ticking every interval.
func NewScheduler(interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		logger:   logger,
		interval: interval,
		keyed:    make(map[string]*entry),
	}
}

// Add registers a tween. It starts on the next tick.
func (s *Scheduler) Add(tw *tween.Tween) *tween.Tween {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &entry{tw: tw, fresh: true})
	return tw
}

// AddExclusive registers a tween under key, cancelling any unfinished tween
// previously registered under the same key.
func (s *Scheduler) AddExclusive(key string, tw *tween.Tween) *tween.Tween {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.keyed[key]; ok {
		prev.tw.Cancel()
	}
	e := &entry{key: key, tw: tw, fresh: true}
	s.keyed[key] = e
	s.entries = append(s.entries, e)
	return tw
}

// Cancel cancels the tween registered under key, if it is unfinished.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.keyed[key]
	if !ok {
		return false
	}
	delete(s.keyed, key)
	return e.tw.Cancel()
}

// Len returns the number of registered, unfinished tweens.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if !e.tw.State().Done() {
			n++
		}
	}
	return n
}

// Tick advances every registered tween by the time elapsed since the previous
// tick. Tweens registered since the previous tick start with no elapsed time.
func (s *Scheduler) Tick(now time.Time) {
	s.mu.Lock()
	var dt time.Duration
	if !s.lastTick.IsZero() && now.After(s.lastTick) {
		dt = now.Sub(s.lastTick)
	}
	s.lastTick = now

	steps := make([]step, 0, len(s.entries))
	for _, e := range s.entries {
		st := step{tw: e.tw, dt: dt}
		if e.fresh {
			st.dt = 0
			e.fresh = false
		}
		steps = append(steps, st)
	}
	s.mu.Unlock()

	for _, st := range steps {
		st.tw.Advance(st.dt)
	}

	s.prune()
}

func (s *Scheduler) prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.tw.State().Done() {
			if e.key != "" && s.keyed[e.key] == e {
				delete(s.keyed, e.key)
			}
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
}

// CancelAll cancels and drops every registered tween.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		e.tw.Cancel()
	}
	s.entries = nil
	s.keyed = make(map[string]*entry)
}

// Start begins the tick loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.lastTick = time.Time{}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.loop(ctx, stopCh, doneCh)
	s.logger.Debug("animation scheduler started", "interval", s.interval)
}

// Stop halts the tick loop, waits for the in-flight tick and cancels every
// remaining tween.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
	s.CancelAll()
	s.logger.Debug("animation scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}
