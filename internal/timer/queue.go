// Package timer runs delayed tasks on a single goroutine.
package timer

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"
	"time"
)

type taskState int

const (
	taskPending taskState = iota
	taskFired
	taskCancelled
)

// Task is a scheduled call. It fires at most once.
type Task struct {
	q        *Queue
	fn       func()
	deadline time.Time
	seq      uint64
	index    int // position in the heap, -1 once removed
	state    taskState
}

// Deadline returns when the task is due.
func (t *Task) Deadline() time.Time {
	return t.deadline
}

// Cancel prevents the task from firing. It returns false if the task has
// already fired or was cancelled before.
func (t *Task) Cancel() bool {
	q := t.q
	q.mu.Lock()
	defer q.mu.Unlock()

	if t.state != taskPending {
		return false
	}
	t.state = taskCancelled
	if t.index >= 0 {
		heap.Remove(&q.tasks, t.index)
	}
	q.signal()
	return true
}

// taskHeap orders tasks by deadline, then by scheduling order.
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Queue runs tasks once their delay has elapsed. Tasks run one at a time on
// the queue goroutine, so a slow task delays the ones after it.
type Queue struct {
	mu     sync.Mutex
	logger *slog.Logger
	tasks  taskHeap
	seq    uint64
	wake   chan struct{}

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewQueue creates a stopped queue. Tasks may be scheduled before Start.
func NewQueue(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

// Schedule arranges for fn to run after delay.
func (q *Queue) Schedule(delay time.Duration, fn func()) *Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	t := &Task{
		q:        q,
		fn:       fn,
		deadline: time.Now().Add(delay),
		seq:      q.seq,
	}
	heap.Push(&q.tasks, t)
	q.signal()
	return t
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// signal wakes the loop without blocking. Callers hold q.mu.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Start begins running due tasks.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.stopCh = make(chan struct{})
	q.doneCh = make(chan struct{})
	stopCh, doneCh := q.stopCh, q.doneCh
	q.mu.Unlock()

	go q.loop(ctx, stopCh, doneCh)
}

// Stop halts the loop and cancels every pending task.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.stopCh)
	done := q.doneCh
	q.mu.Unlock()

	<-done

	q.mu.Lock()
	for _, t := range q.tasks {
		t.state = taskCancelled
		t.index = -1
	}
	dropped := len(q.tasks)
	q.tasks = nil
	q.mu.Unlock()

	if dropped > 0 {
		q.logger.Debug("timer queue stopped", "dropped", dropped)
	}
}

func (q *Queue) loop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		due, wait := q.next()
		if due != nil {
			due.fn()
			continue
		}

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-q.wake:
		case <-timer.C:
		}
		timer.Stop()
	}
}

// next pops the earliest task if it is due, or returns how long to sleep.
func (q *Queue) next() (*Task, time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return nil, time.Hour
	}
	t := q.tasks[0]
	wait := time.Until(t.deadline)
	if wait > 0 {
		return nil, wait
	}
	heap.Pop(&q.tasks)
	t.state = taskFired
	return t, 0
}
