package main

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/lumen/pkg/render"
)

const (
	minDistance = 0.5
	maxDistance = 500
)

// springAxis eases a value toward its target with a critically damped spring.
type springAxis struct {
	Position float64
	Target   float64
	velocity float64
	spring   harmonica.Spring
}

func newSpringAxis(fps int, v float64) springAxis {
	return springAxis{
		Position: v,
		Target:   v,
		// Frequency 6.0 = snappy, damping 1.0 = critically damped (no overshoot)
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

func (a *springAxis) Update() {
	a.Position, a.velocity = a.spring.Update(a.Position, a.velocity, a.Target)
}

// Orbit drives a camera around a fixed center with eased yaw, pitch and zoom.
type Orbit struct {
	Yaw, Pitch, Distance springAxis

	fps     int
	initial [3]float64
}

// NewOrbit starts at the given yaw and pitch (radians) and distance.
func NewOrbit(fps int, yaw, pitch, distance float64) *Orbit {
	o := &Orbit{fps: fps, initial: [3]float64{yaw, pitch, distance}}
	o.Reset()
	return o
}

// Reset returns to the starting view.
func (o *Orbit) Reset() {
	o.Yaw = newSpringAxis(o.fps, o.initial[0])
	o.Pitch = newSpringAxis(o.fps, o.initial[1])
	o.Distance = newSpringAxis(o.fps, o.initial[2])
}

// Rotate moves the yaw and pitch targets. Pitch stays short of the poles.
func (o *Orbit) Rotate(dyaw, dpitch float64) {
	const limit = math.Pi/2 - 0.05
	o.Yaw.Target += dyaw
	o.Pitch.Target = math.Max(-limit, math.Min(limit, o.Pitch.Target+dpitch))
}

// Zoom scales the distance target by factor.
func (o *Orbit) Zoom(factor float64) {
	o.Distance.Target = math.Max(minDistance, math.Min(maxDistance, o.Distance.Target*factor))
}

// Update steps the springs one frame.
func (o *Orbit) Update() {
	o.Yaw.Update()
	o.Pitch.Update()
	o.Distance.Update()
}

// Apply places cam on the orbit.
func (o *Orbit) Apply(cam *render.Camera) {
	cam.Orbit(o.Yaw.Position, o.Pitch.Position, o.Distance.Position)
}
