package math3d

// Box is an axis-aligned bounding box stored as center and half extents.
type Box struct {
	Center   Vec3
	HalfSize Vec3
}

// BoxFromMinMax builds a Box from its min and max corners.
func BoxFromMinMax(min, max Vec3) Box {
	return Box{
		Center:   min.Add(max).Scale(0.5),
		HalfSize: max.Sub(min).Scale(0.5),
	}
}

// Min returns the minimum corner.
func (b Box) Min() Vec3 {
	return b.Center.Sub(b.HalfSize)
}

// Max returns the maximum corner.
func (b Box) Max() Vec3 {
	return b.Center.Add(b.HalfSize)
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p Vec3) bool {
	d := p.Sub(b.Center).Abs()
	return d.X <= b.HalfSize.X && d.Y <= b.HalfSize.Y && d.Z <= b.HalfSize.Z
}

// ClosestPoint returns the point of the box nearest to p.
func (b Box) ClosestPoint(p Vec3) Vec3 {
	return p.Max(b.Min()).Min(b.Max())
}
