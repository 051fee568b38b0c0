package gfx

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
)

// Vertex holds all vertex attributes.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// MeshData is CPU-side indexed triangle geometry, counter-clockwise front faces.
type MeshData struct {
	Name     string
	Vertices []Vertex
	Indices  []int // three per triangle
}

// TriangleCount returns the number of triangles.
func (m *MeshData) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds computes the axis-aligned bounding box of all vertices.
func (m *MeshData) Bounds() math3d.Box {
	if len(m.Vertices) == 0 {
		return math3d.Box{}
	}
	lo := m.Vertices[0].Position
	hi := lo
	for _, v := range m.Vertices[1:] {
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	return math3d.BoxFromMinMax(lo, hi)
}

// HasNormals reports whether any vertex carries a usable normal.
func (m *MeshData) HasNormals() bool {
	for _, v := range m.Vertices {
		if v.Normal.Len() > 0.001 {
			return true
		}
	}
	return false
}

// CalculateSmoothNormals computes averaged normals for smooth shading.
func (m *MeshData) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	// Unnormalized face normals weight the average by triangle area.
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		p0 := m.Vertices[a].Position
		n := m.Vertices[b].Position.Sub(p0).Cross(m.Vertices[c].Position.Sub(p0))

		m.Vertices[a].Normal = m.Vertices[a].Normal.Add(n)
		m.Vertices[b].Normal = m.Vertices[b].Normal.Add(n)
		m.Vertices[c].Normal = m.Vertices[c].Normal.Add(n)
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// CubeData returns an axis-aligned cube of the given edge length centred on the origin.
func CubeData(size float64) *MeshData {
	h := size / 2
	faces := []struct{ n, u, v math3d.Vec3 }{
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
		{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
	}

	d := &MeshData{Name: "cube"}
	for _, f := range faces {
		addQuad(d, f.n.Scale(h), f.u.Scale(h), f.v.Scale(h), f.n)
	}
	return d
}

// PlaneData returns a square in the XZ plane facing +Y.
func PlaneData(size float64) *MeshData {
	h := size / 2
	d := &MeshData{Name: "plane"}
	addQuad(d, math3d.Zero3(), math3d.V3(h, 0, 0), math3d.V3(0, 0, -h), math3d.Up())
	return d
}

// addQuad appends the quad center ± u ± v, wound counter-clockwise around n.
func addQuad(d *MeshData, center, u, v, n math3d.Vec3) {
	base := len(d.Vertices)
	corners := [4]struct {
		p  math3d.Vec3
		uv math3d.Vec2
	}{
		{center.Sub(u).Sub(v), math3d.V2(0, 0)},
		{center.Add(u).Sub(v), math3d.V2(1, 0)},
		{center.Add(u).Add(v), math3d.V2(1, 1)},
		{center.Sub(u).Add(v), math3d.V2(0, 1)},
	}
	for _, c := range corners {
		d.Vertices = append(d.Vertices, Vertex{Position: c.p, Normal: n, UV: c.uv})
	}
	d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)
}

// SphereData returns a latitude/longitude sphere.
func SphereData(radius float64, rings, sectors int) *MeshData {
	rings = max(rings, 2)
	sectors = max(sectors, 3)

	d := &MeshData{Name: "sphere"}
	for i := 0; i <= rings; i++ {
		theta := math.Pi * float64(i) / float64(rings)
		for j := 0; j <= sectors; j++ {
			phi := 2 * math.Pi * float64(j) / float64(sectors)
			n := math3d.V3(math.Sin(theta)*math.Cos(phi), math.Cos(theta), math.Sin(theta)*math.Sin(phi))
			d.Vertices = append(d.Vertices, Vertex{
				Position: n.Scale(radius),
				Normal:   n,
				UV:       math3d.V2(float64(j)/float64(sectors), 1-float64(i)/float64(rings)),
			})
		}
	}

	stride := sectors + 1
	for i := range rings {
		for j := range sectors {
			a := i*stride + j
			b := (i+1)*stride + j
			c := b + 1
			dd := a + 1
			d.Indices = append(d.Indices, a, c, b, a, dd, c)
		}
	}
	return d
}
