// Package tween interpolates a single value over time with an easing curve.
package tween

// Easing maps linear progress in [0, 1] to eased progress. Eased values may
// leave [0, 1] for curves that overshoot.
type Easing func(t float64) float64

// Overshoot constant of the back curves (about 10% overshoot).
const backOvershoot = 1.70158

// Linear is the identity curve.
func Linear(t float64) float64 {
	return t
}

// BackIn pulls back slightly before accelerating towards the end.
func BackIn(t float64) float64 {
	return t * t * ((backOvershoot+1)*t - backOvershoot)
}

// BackOut overshoots the end and settles back onto it.
func BackOut(t float64) float64 {
	t--
	return t*t*((backOvershoot+1)*t+backOvershoot) + 1
}
