package animation

import (
	"math"
	"time"

	"github.com/jmylchreest/histoast/internal/tween"
)

// Default durations of the toast animations.
const (
	DefaultEnter = 500 * time.Millisecond
	DefaultExit  = 500 * time.Millisecond
	DefaultMove  = 500 * time.Millisecond
)

// Target is the geometry a toast animation drives. Each animation touches a
// single axis so entry or exit can overlap a reposition.
type Target interface {
	Position() (x, y int)
	SetPosition(x, y int)
	SetSize(w, h int)
	SetVisible(visible bool)
}

// Slide describes the horizontal geometry of an entry or exit.
type Slide struct {
	ScreenRight int // Right edge of the work area
	Width       int // Full toast width
	Height      int
	Spacing     int
	Duration    time.Duration
}

// Entry slides a toast in from the right edge until it rests spacing pixels
// from it. The width is clipped while the toast is still partially off
// screen.
func Entry(target Target, s Slide, onComplete func()) *tween.Tween {
	restX := s.ScreenRight - (s.Width + s.Spacing)
	return tween.New(float64(s.ScreenRight), float64(restX), s.Duration, tween.BackOut, tween.Hooks{
		OnStart: func() {
			_, y := target.Position()
			target.SetPosition(s.ScreenRight, y)
			target.SetSize(1, s.Height)
			target.SetVisible(true)
		},
		OnStep: func(v float64) {
			x := round(v)
			_, y := target.Position()
			target.SetPosition(x, y)
			target.SetSize(revealWidth(s.ScreenRight-s.Spacing-x, s.Width), s.Height)
		},
		OnComplete: func() {
			_, y := target.Position()
			target.SetPosition(restX, y)
			target.SetSize(s.Width, s.Height)
			if onComplete != nil {
				onComplete()
			}
		},
	})
}

// Exit slides a toast from its current X back past the right edge and hides
// it. The width always spans from X to the edge, so the box stretches while
// the back-in curve pulls it left.
func Exit(target Target, s Slide, onComplete func()) *tween.Tween {
	fromX, _ := target.Position()
	return tween.New(float64(fromX), float64(s.ScreenRight), s.Duration, tween.BackIn, tween.Hooks{
		OnStep: func(v float64) {
			x := round(v)
			_, y := target.Position()
			target.SetPosition(x, y)
			target.SetSize(max(s.ScreenRight-x, 1), s.Height)
		},
		OnComplete: func() {
			target.SetVisible(false)
			if onComplete != nil {
				onComplete()
			}
		},
	})
}

// Reposition moves a toast vertically to toY.
func Reposition(target Target, toY int, d time.Duration) *tween.Tween {
	_, fromY := target.Position()
	return tween.New(float64(fromY), float64(toY), d, tween.BackIn, tween.Hooks{
		OnStep: func(v float64) {
			x, _ := target.Position()
			target.SetPosition(x, round(v))
		},
	})
}

// revealWidth clamps the on-screen width to [1, full].
func revealWidth(visible, full int) int {
	if visible > full {
		return full
	}
	if visible < 1 {
		return 1
	}
	return visible
}

func round(v float64) int {
	return int(math.Round(v))
}
