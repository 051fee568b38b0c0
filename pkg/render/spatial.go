package render

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
)

// TransformBoundingBox returns the axis-aligned box enclosing b after m.
// The center is transformed as a point and the half extents through the
// absolute value of the linear part, which is exact for the 8 corners.
func TransformBoundingBox(m math3d.Mat4, b math3d.Box) math3d.Box {
	h := b.HalfSize
	return math3d.Box{
		Center: m.MulVec3(b.Center),
		HalfSize: math3d.V3(
			math.Abs(m[0])*h.X+math.Abs(m[4])*h.Y+math.Abs(m[8])*h.Z,
			math.Abs(m[1])*h.X+math.Abs(m[5])*h.Y+math.Abs(m[9])*h.Z,
			math.Abs(m[2])*h.X+math.Abs(m[6])*h.Y+math.Abs(m[10])*h.Z,
		),
	}
}

// BoxSphereOverlap reports whether the sphere touches the box, using the
// distance from the center to the box's closest point.
func BoxSphereOverlap(b math3d.Box, center math3d.Vec3, radius float64) bool {
	d := b.ClosestPoint(center).Sub(center)
	return d.LenSq() <= radius*radius
}
