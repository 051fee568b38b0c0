package render

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
)

// Projection selects how a Camera maps view space to clip space.
type Projection int

const (
	PerspectiveProjection Projection = iota
	OrthographicProjection
)

// Camera is a look-at camera with a perspective or orthographic lens.
type Camera struct {
	// View
	Eye    math3d.Vec3
	Center math3d.Vec3
	Up     math3d.Vec3

	Projection Projection

	// Perspective parameters
	FOV    float64 // Vertical field of view in radians
	Aspect float64 // Width / Height

	// Orthographic parameters
	Left, Right, Bottom, Top float64

	Near float64
	Far  float64
}

// NewCamera creates a perspective camera at (0,0,10) looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Eye:        math3d.V3(0, 0, 10),
		Up:         math3d.Up(),
		Projection: PerspectiveProjection,
		FOV:        math.Pi / 3, // 60 degrees
		Aspect:     16.0 / 9.0,
		Near:       0.1,
		Far:        1000,
	}
}

// LookAt places the camera at eye looking towards center.
func (c *Camera) LookAt(eye, center, up math3d.Vec3) {
	c.Eye, c.Center, c.Up = eye, center, up
}

// SetPerspective switches to a perspective lens. fov is in radians.
func (c *Camera) SetPerspective(fov, aspect, near, far float64) {
	c.Projection = PerspectiveProjection
	c.FOV, c.Aspect = fov, aspect
	c.Near, c.Far = near, far
}

// SetOrthographic switches to an orthographic lens.
func (c *Camera) SetOrthographic(left, right, bottom, top, near, far float64) {
	c.Projection = OrthographicProjection
	c.Left, c.Right, c.Bottom, c.Top = left, right, bottom, top
	c.Near, c.Far = near, far
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Center.Sub(c.Eye).Normalize()
}

// RightVector returns the unit right direction.
func (c *Camera) RightVector() math3d.Vec3 {
	return c.Forward().Cross(c.Up).Normalize()
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.Eye, c.Center, c.Up)
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.Projection == OrthographicProjection {
		return math3d.Orthographic(c.Left, c.Right, c.Bottom, c.Top, c.Near, c.Far)
	}
	return math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Frustum returns the current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// TestBoxInFrustum reports whether the world-space box given by center and
// halfSize may be visible.
func (c *Camera) TestBoxInFrustum(center, halfSize math3d.Vec3) bool {
	f := c.Frustum()
	return f.BoxInFrustum(center, halfSize)
}

// Orbit places the eye on a sphere around Center. yaw and pitch are in
// radians, pitch is clamped short of the poles.
func (c *Camera) Orbit(yaw, pitch, distance float64) {
	const maxPitch = math.Pi/2 - 0.01
	pitch = math.Max(-maxPitch, math.Min(maxPitch, pitch))
	offset := math3d.V3(
		math.Sin(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		math.Cos(yaw)*math.Cos(pitch),
	)
	c.Eye = c.Center.Add(offset.Scale(distance))
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))

	// Check if behind camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	depth = ndc.Z*0.5 + 0.5

	return x, y, depth, true
}
