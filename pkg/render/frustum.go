package render

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize normalizes the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum represents the 6 planes of a view frustum.
// Planes are ordered: Left, Right, Bottom, Top, Near, Far.
// Each plane's normal points inward (toward the center of the frustum).
type Frustum struct {
	Planes [6]Plane
}

// FrustumPlane indices for clarity.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// Uses the Gribb/Hartmann method for extracting planes from the combined matrix.
// The resulting planes have normals pointing inward.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	var f Frustum

	// For column-major m, row i element j is at m[i + j*4].
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	w, ww := row(3)
	for i := range 3 {
		n, d := row(i)
		f.Planes[2*i] = Plane{Normal: w.Add(n), D: ww + d}
		f.Planes[2*i+1] = Plane{Normal: w.Sub(n), D: ww - d}
	}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// BoxInFrustum reports whether an axis-aligned box given by center and
// half extents is not entirely outside any plane. Boxes straddling a plane
// are kept.
func (f Frustum) BoxInFrustum(center, halfSize math3d.Vec3) bool {
	for i := range f.Planes {
		p := f.Planes[i]
		// projected radius of the box onto the plane normal
		r := math.Abs(p.Normal.X)*halfSize.X + math.Abs(p.Normal.Y)*halfSize.Y + math.Abs(p.Normal.Z)*halfSize.Z
		if p.DistanceToPoint(center) < -r {
			return false
		}
	}
	return true
}

// IntersectBox is BoxInFrustum for a math3d.Box.
func (f Frustum) IntersectBox(b math3d.Box) bool {
	return f.BoxInFrustum(b.Center, b.HalfSize)
}

// ContainsPoint tests if a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere tests if a sphere intersects the frustum.
// center is the sphere center, radius is the sphere radius.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}
