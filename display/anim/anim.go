// Package anim holds the small interpolation helpers the overlay animates
// with: a damped spring for the gauge needle and a linear fade for toasts.
package anim

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	// FPS is the frame rate the overlay advances animations at.
	FPS = 30

	// settleEpsilon is the distance and speed below which a spring is at rest.
	settleEpsilon = 0.01
)

// FrameInterval is the wall time between animation frames.
var FrameInterval = time.Second / FPS

// Spring moves a value towards a target with damped harmonic motion.
type Spring struct {
	spring   harmonica.Spring
	pos      float64
	velocity float64
	target   float64
}

// NewSpring returns a spring at rest at pos. frequency controls speed and
// damping the oscillation (1 is critically damped).
func NewSpring(pos, frequency, damping float64) *Spring {
	return &Spring{
		spring: harmonica.NewSpring(harmonica.FPS(FPS), frequency, damping),
		pos:    pos,
		target: pos,
	}
}

// NewNeedle returns the spring used for the gauge needle: quick and slightly
// underdamped so a jump overshoots a little before settling.
func NewNeedle(pos float64) *Spring {
	return NewSpring(pos, 6.0, 0.7)
}

// SetTarget changes where the spring is heading.
func (s *Spring) SetTarget(target float64) {
	s.target = target
}

// Target returns the current target.
func (s *Spring) Target() float64 {
	return s.target
}

// Jump moves the spring to target immediately and stops it.
func (s *Spring) Jump(target float64) {
	s.pos, s.velocity, s.target = target, 0, target
}

// Step advances one frame and returns the new position. A spring that has
// settled snaps to its target.
func (s *Spring) Step() float64 {
	s.pos, s.velocity = s.spring.Update(s.pos, s.velocity, s.target)
	if s.Settled() {
		s.pos, s.velocity = s.target, 0
	}
	return s.pos
}

// Position returns the current position.
func (s *Spring) Position() float64 {
	return s.pos
}

// Settled reports whether the spring is at rest at its target.
func (s *Spring) Settled() bool {
	return math.Abs(s.pos-s.target) < settleEpsilon && math.Abs(s.velocity) < settleEpsilon
}

// Fade interpolates opacity from From to To over Duration, after an
// optional Delay.
type Fade struct {
	From     float64
	To       float64
	Delay    time.Duration
	Duration time.Duration
	Ease     func(float64) float64
}

// ToastFade is the fade applied to transient messages: fully visible for
// two seconds, then gone over half a second.
var ToastFade = Fade{From: 1, To: 0, Delay: 2 * time.Second, Duration: 500 * time.Millisecond, Ease: EaseOutCubic}

// At returns the opacity after elapsed time.
func (f Fade) At(elapsed time.Duration) float64 {
	if elapsed <= f.Delay {
		return f.From
	}
	if f.Duration <= 0 || elapsed >= f.Delay+f.Duration {
		return f.To
	}
	t := float64(elapsed-f.Delay) / float64(f.Duration)
	if f.Ease != nil {
		t = f.Ease(t)
	}
	return f.From + (f.To-f.From)*t
}

// Done reports whether the fade has finished at elapsed.
func (f Fade) Done(elapsed time.Duration) bool {
	return elapsed >= f.Delay+f.Duration
}

// EaseOutCubic decelerates towards the end: 1 - (1-t)^3, with t clamped to [0, 1].
func EaseOutCubic(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	u := 1 - t
	return 1 - u*u*u
}

// Linear is the identity easing.
func Linear(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
