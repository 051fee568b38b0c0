package soft

import (
	"math"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
)

// clipVertex is a vertex after the vertex stage.
type clipVertex struct {
	clip   math3d.Vec4
	world  math3d.Vec3
	normal math3d.Vec3
	uv     math3d.Vec2
}

func lerpVertex(a, b clipVertex, t float64) clipVertex {
	return clipVertex{
		clip:   lerp4(a.clip, b.clip, t),
		world:  a.world.Add(b.world.Sub(a.world).Scale(t)),
		normal: a.normal.Add(b.normal.Sub(a.normal).Scale(t)),
		uv:     math3d.V2(a.uv.X+(b.uv.X-a.uv.X)*t, a.uv.Y+(b.uv.Y-a.uv.Y)*t),
	}
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // Screen coordinates, Y down
	Z    float64 // Window depth in [0,1]
	InvW float64 // 1/w for perspective-correct interpolation
	v    clipVertex
}

// nearDist is the signed distance to the near clip plane (z = -w).
func nearDist(v clipVertex) float64 {
	return v.clip.Z + v.clip.W
}

// clipNear clips a triangle against the near plane, returning 0, 3 or 4 vertices.
func clipNear(tri [3]clipVertex, out []clipVertex) []clipVertex {
	out = out[:0]
	for i := range 3 {
		a, b := tri[i], tri[(i+1)%3]
		da, db := nearDist(a), nearDist(b)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpVertex(a, b, da/(da-db)))
		}
	}
	return out
}

// vertexStage runs the shared transform for every vertex of m.
func vertexStage(u *Uniforms, data *gfx.MeshData, out []clipVertex) []clipVertex {
	model := u.Mat4("u_model")
	viewProj := u.Mat4("u_viewprojection")

	out = out[:0]
	for _, v := range data.Vertices {
		world := model.MulVec3(v.Position)
		out = append(out, clipVertex{
			clip:   viewProj.MulVec4(math3d.V4FromV3(world, 1)),
			world:  world,
			normal: model.RotateVector(v.Normal),
			uv:     v.UV,
		})
	}
	return out
}

// toScreen performs the perspective divide and viewport transform.
func (d *Device) toScreen(v clipVertex) screenVertex {
	invW := 1.0 / v.clip.W
	fb := d.target
	return screenVertex{
		X:    (v.clip.X*invW + 1) * 0.5 * float64(fb.Width),
		Y:    (1 - v.clip.Y*invW) * 0.5 * float64(fb.Height), // Y flipped
		Z:    v.clip.Z*invW*0.5 + 0.5,
		InvW: invW,
		v:    v,
	}
}

// drawMesh rasterizes m with the current program.
func (d *Device) drawMesh(m *mesh, prim gfx.Primitive) {
	p := d.current
	if p == nil || d.target == nil {
		return
	}
	d.verts = vertexStage(p.uniforms, m.data, d.verts)
	idx := m.data.Indices

	switch prim {
	case gfx.Lines:
		for i := 0; i+1 < len(idx); i += 2 {
			d.drawLine(p, d.verts[idx[i]], d.verts[idx[i+1]])
		}
	default:
		for i := 0; i+2 < len(idx); i += 3 {
			tri := [3]clipVertex{d.verts[idx[i]], d.verts[idx[i+1]], d.verts[idx[i+2]]}
			d.poly = clipNear(tri, d.poly)
			for k := 1; k+1 < len(d.poly); k++ {
				d.drawTriangle(p, [3]clipVertex{d.poly[0], d.poly[k], d.poly[k+1]})
			}
		}
	}
}

// edgeCoeffs returns A, B, C for edge(x,y) = A*x + B*y + C.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1
	B = x1 - x0
	C = x0*y1 - x1*y0
	return
}

// drawTriangle rasterizes a near-clipped triangle using edge functions.
func (d *Device) drawTriangle(p *Program, tri [3]clipVertex) {
	var sv [3]screenVertex
	for i := range 3 {
		sv[i] = d.toScreen(tri[i])
	}

	// Counter-clockwise in NDC is clockwise on the Y-down screen.
	area2 := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if area2 == 0 {
		return
	}
	front := area2 < 0
	if d.state.CullFace && !front {
		return
	}

	if d.state.Fill == gfx.FillLine {
		for i := range 3 {
			d.drawLine(p, tri[i], tri[(i+1)%3])
		}
		return
	}

	fb := d.target
	minX := int(math.Max(0, math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(fb.Width-1), math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(fb.Height-1), math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	invArea := 1.0 / area2

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5

			bc0 := (A0*px + B0*py + C0) * invArea
			bc1 := (A1*px + B1*py + C1) * invArea
			bc2 := (A2*px + B2*py + C2) * invArea
			if bc0 < 0 || bc1 < 0 || bc2 < 0 {
				continue
			}

			z := bc0*sv[0].Z + bc1*sv[1].Z + bc2*sv[2].Z
			if z < 0 || z > 1 || !d.depthPass(x, y, z) {
				continue
			}

			// Perspective-correct weights
			w0, w1, w2 := bc0*sv[0].InvW, bc1*sv[1].InvW, bc2*sv[2].InvW
			sum := w0 + w1 + w2
			if sum == 0 {
				continue
			}
			w0, w1, w2 = w0/sum, w1/sum, w2/sum

			d.frag = Fragment{
				World:       blend3(sv[0].v.world, sv[1].v.world, sv[2].v.world, w0, w1, w2),
				Normal:      blend3(sv[0].v.normal, sv[1].v.normal, sv[2].v.normal, w0, w1, w2),
				UV:          math3d.V2(w0*sv[0].v.uv.X+w1*sv[1].v.uv.X+w2*sv[2].v.uv.X, w0*sv[0].v.uv.Y+w1*sv[1].v.uv.Y+w2*sv[2].v.uv.Y),
				FrontFacing: front,
			}
			d.writeFragment(p, x, y, z)
		}
	}
}

func blend3(a, b, c math3d.Vec3, w0, w1, w2 float64) math3d.Vec3 {
	return a.Scale(w0).Add(b.Scale(w1)).Add(c.Scale(w2))
}

// drawLine rasterizes a depth-tested line segment.
func (d *Device) drawLine(p *Program, a, b clipVertex) {
	da, db := nearDist(a), nearDist(b)
	switch {
	case da < 0 && db < 0:
		return
	case da < 0:
		a = lerpVertex(a, b, da/(da-db))
	case db < 0:
		b = lerpVertex(b, a, db/(db-da))
	}

	sa, sb := d.toScreen(a), d.toScreen(b)
	lineFunc(int(sa.X), int(sa.Y), int(sb.X), int(sb.Y), func(x, y int, t float64) {
		if x < 0 || x >= d.target.Width || y < 0 || y >= d.target.Height {
			return
		}
		z := sa.Z + (sb.Z-sa.Z)*t
		if z < 0 || z > 1 || !d.depthPass(x, y, z) {
			return
		}
		v := lerpVertex(a, b, t)
		d.frag = Fragment{World: v.world, Normal: v.normal, UV: v.uv, FrontFacing: true}
		d.writeFragment(p, x, y, z)
	})
}

// depthPass applies the depth function at (x, y).
func (d *Device) depthPass(x, y int, z float64) bool {
	if !d.state.DepthTest {
		return true
	}
	stored := d.target.Depth[y*d.target.Width+x]
	switch d.state.DepthFunc {
	case gfx.DepthLessEqual:
		return z <= stored
	case gfx.DepthAlways:
		return true
	default:
		return z < stored
	}
}

// writeFragment shades d.frag and writes colour and depth.
func (d *Device) writeFragment(p *Program, x, y int, z float64) {
	fb := d.target
	i := y*fb.Width + x

	// Depth-only targets skip shading.
	if fb.Color == nil {
		if d.state.DepthTest {
			fb.Depth[i] = z
		}
		return
	}

	src, keep := p.kernel(p.uniforms, &d.frag)
	if !keep {
		return
	}
	if d.state.Blend {
		dst := fb.Color[i]
		fs := blendFactor(d.state.BlendSrc, src)
		fd := blendFactor(d.state.BlendDst, src)
		src = src.Scale(fs).Add(dst.Scale(fd))
	}
	fb.Color[i] = src
	if d.state.DepthTest {
		fb.Depth[i] = z
	}
}

func blendFactor(f gfx.BlendFactor, src math3d.Vec4) float64 {
	switch f {
	case gfx.BlendZero:
		return 0
	case gfx.BlendSrcAlpha:
		return src.W
	case gfx.BlendOneMinusSrcAlpha:
		return 1 - src.W
	default:
		return 1
	}
}
