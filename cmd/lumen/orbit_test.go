package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/render"
)

func settle(o *Orbit) {
	for range 300 {
		o.Update()
	}
}

func TestOrbitSettlesOnTarget(t *testing.T) {
	o := NewOrbit(30, 0, 0, 10)
	o.Rotate(1, 0.5)
	o.Zoom(0.5)
	settle(o)

	assert.InDelta(t, 1, o.Yaw.Position, 1e-3)
	assert.InDelta(t, 0.5, o.Pitch.Position, 1e-3)
	assert.InDelta(t, 5, o.Distance.Position, 1e-3)
}

func TestOrbitClamps(t *testing.T) {
	o := NewOrbit(30, 0, 0, 10)

	o.Rotate(0, 10)
	assert.Less(t, o.Pitch.Target, math.Pi/2)
	o.Rotate(0, -20)
	assert.Greater(t, o.Pitch.Target, -math.Pi/2)

	o.Zoom(1e-6)
	assert.Equal(t, minDistance, o.Distance.Target)
	o.Zoom(1e9)
	assert.Equal(t, float64(maxDistance), o.Distance.Target)
}

func TestOrbitReset(t *testing.T) {
	o := NewOrbit(30, 0.3, 0.2, 8)
	o.Rotate(2, -0.4)
	o.Zoom(3)
	o.Update()
	o.Reset()

	for _, a := range []springAxis{o.Yaw, o.Pitch, o.Distance} {
		assert.Equal(t, a.Target, a.Position)
	}
	assert.Equal(t, 0.3, o.Yaw.Position)
	assert.Equal(t, 0.2, o.Pitch.Position)
	assert.Equal(t, 8.0, o.Distance.Position)
}

func TestOrbitApply(t *testing.T) {
	cam := render.NewCamera()
	cam.Center = math3d.V3(1, 0, 0)
	NewOrbit(30, 0, 0, 10).Apply(cam)

	assert.InDelta(t, 0, cam.Eye.Distance(math3d.V3(1, 0, 10)), 1e-9)
}
