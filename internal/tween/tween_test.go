package tween

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEasingEndpoints(t *testing.T) {
	tests := []struct {
		name string
		ease Easing
	}{
		{"linear", Linear},
		{"back in", BackIn},
		{"back out", BackOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, 0, tt.ease(0), 1e-9)
			assert.InDelta(t, 1, tt.ease(1), 1e-9)
		})
	}
}

func TestBackCurvesOvershoot(t *testing.T) {
	assert.Less(t, BackIn(0.2), 0.0, "back in dips below the start")
	assert.Greater(t, BackOut(0.8), 1.0, "back out passes the end")
}

func TestTween_Lifecycle(t *testing.T) {
	var events []string
	var values []float64

	tw := New(0, 100, 100*time.Millisecond, Linear, Hooks{
		OnStart:    func() { events = append(events, "start") },
		OnStep:     func(v float64) { values = append(values, v) },
		OnComplete: func() { events = append(events, "complete") },
	})
	assert.Equal(t, StatePending, tw.State())

	assert.False(t, tw.Advance(50*time.Millisecond))
	assert.Equal(t, StateRunning, tw.State())
	assert.False(t, tw.Advance(25*time.Millisecond))
	assert.True(t, tw.Advance(50*time.Millisecond))
	assert.Equal(t, StateCompleted, tw.State())

	// Further advances are no-ops
	assert.True(t, tw.Advance(time.Second))

	assert.Equal(t, []string{"start", "complete"}, events)
	require.Len(t, values, 3)
	assert.InDelta(t, 50, values[0], 1e-9)
	assert.InDelta(t, 75, values[1], 1e-9)
	assert.Equal(t, 100.0, values[2], "final step lands exactly on the target")
}

func TestTween_ZeroDurationCompletesOnFirstAdvance(t *testing.T) {
	completed := false
	tw := New(10, 20, 0, nil, Hooks{OnComplete: func() { completed = true }})

	assert.True(t, tw.Advance(0))
	assert.True(t, completed)
}

func TestTween_Cancel(t *testing.T) {
	steps := 0
	completed := false
	tw := New(0, 1, time.Second, BackIn, Hooks{
		OnStep:     func(float64) { steps++ },
		OnComplete: func() { completed = true },
	})

	tw.Advance(100 * time.Millisecond)
	assert.True(t, tw.Cancel())
	assert.Equal(t, StateCancelled, tw.State())
	assert.False(t, tw.Cancel(), "second cancel reports nothing to do")

	assert.True(t, tw.Advance(2*time.Second))
	assert.Equal(t, 1, steps)
	assert.False(t, completed)
}

func TestTween_CancelAfterComplete(t *testing.T) {
	tw := New(0, 1, time.Millisecond, nil, Hooks{})
	tw.Advance(time.Millisecond)
	assert.False(t, tw.Cancel())
	assert.Equal(t, StateCompleted, tw.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
	assert.Equal(t, "unknown", State(9).String())
	assert.True(t, StateCancelled.Done())
	assert.False(t, StateRunning.Done())
}
