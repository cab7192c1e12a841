package timer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startQueue(t *testing.T) *Queue {
	t.Helper()
	q := NewQueue(nil)
	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)
	t.Cleanup(func() {
		q.Stop()
		cancel()
	})
	return q
}

func TestQueue_FiresAfterDelay(t *testing.T) {
	q := startQueue(t)

	var fired atomic.Bool
	start := time.Now()
	var firedAt atomic.Int64
	q.Schedule(30*time.Millisecond, func() {
		firedAt.Store(int64(time.Since(start)))
		fired.Store(true)
	})

	require.Eventually(t, fired.Load, 2*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Duration(firedAt.Load()), 30*time.Millisecond)
	assert.Zero(t, q.Len())
}

func TestQueue_FiresInDeadlineOrder(t *testing.T) {
	q := NewQueue(nil)

	var mu sync.Mutex
	var order []int
	record := func(n int) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, n)
		}
	}

	q.Schedule(40*time.Millisecond, record(3))
	q.Schedule(10*time.Millisecond, record(1))
	q.Schedule(20*time.Millisecond, record(2))
	assert.Equal(t, 3, q.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestTask_Cancel(t *testing.T) {
	q := startQueue(t)

	var fired atomic.Bool
	task := q.Schedule(50*time.Millisecond, func() { fired.Store(true) })

	assert.True(t, task.Cancel())
	assert.False(t, task.Cancel(), "second cancel is a no-op")
	assert.Zero(t, q.Len())

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestTask_CancelAfterFire(t *testing.T) {
	q := startQueue(t)

	var fired atomic.Bool
	task := q.Schedule(time.Millisecond, func() { fired.Store(true) })

	require.Eventually(t, fired.Load, 2*time.Second, time.Millisecond)
	assert.False(t, task.Cancel())
}

func TestTask_CancelFromInsideTask(t *testing.T) {
	q := startQueue(t)

	var result atomic.Value
	var self *Task
	var mu sync.Mutex
	mu.Lock()
	self = q.Schedule(time.Millisecond, func() {
		mu.Lock()
		defer mu.Unlock()
		result.Store(self.Cancel())
	})
	mu.Unlock()

	require.Eventually(t, func() bool { return result.Load() != nil }, 2*time.Second, time.Millisecond)
	assert.Equal(t, false, result.Load())
}

func TestQueue_EarlierTaskWakesLoop(t *testing.T) {
	q := startQueue(t)

	q.Schedule(time.Hour, func() {})
	var fired atomic.Bool
	q.Schedule(10*time.Millisecond, func() { fired.Store(true) })

	require.Eventually(t, fired.Load, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_StopCancelsPending(t *testing.T) {
	q := NewQueue(nil)
	q.Start(context.Background())

	task := q.Schedule(time.Hour, func() {})
	q.Stop()
	q.Stop()

	assert.Zero(t, q.Len())
	assert.False(t, task.Cancel())
}
