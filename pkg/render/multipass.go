package render

import (
	"math"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

// MultiPassStrategy draws a request once per affecting light. The first
// pass carries ambient and emissive with the material's own blending,
// later passes add only their light's contribution.
type MultiPassStrategy struct {
	lights []*scene.Light
}

func (m *MultiPassStrategy) Draw(f *Frame, req *DrawRequest) {
	d, ok := begin(f, req, ProgramLight)
	if !ok {
		return
	}
	defer d.end()

	sh, mat := d.shader, req.Material
	uploadMaterial(f, sh, mat, "u_albedo_texture")
	// additive passes land on the depth the first pass wrote
	d.guard.Update(func(s *gfx.State) { s.DepthFunc = gfx.DepthLessEqual })

	m.lights = FilterLights(m.lights[:0], f.Lights, req.Bounds)
	if len(m.lights) == 0 {
		uploadEmissive(f, sh, mat, true)
		uploadNoLight(sh)
		req.Mesh.Render(gfx.Triangles)
		return
	}

	for i, l := range m.lights {
		if i == 1 {
			d.guard.Update(func(s *gfx.State) { *s = s.Additive() })
		}
		uploadEmissive(f, sh, mat, i == 0)
		lightToShader(f.Device, sh, l)
		req.Mesh.Render(gfx.Triangles)
	}
}

// packedLight is a light in the layout the lit programs read.
type packedLight struct {
	position math3d.Vec3
	front    math3d.Vec3
	color    math3d.Vec3
	info     math3d.Vec4 // type, near, max, unused
	cone     math3d.Vec2 // cos inner, cos outer
}

func packLight(l *scene.Light) packedLight {
	p := packedLight{
		position: l.Position(),
		front:    l.Forward(),
		color:    l.Color.Scale(l.Intensity),
		info:     math3d.V4(float64(l.Type), l.NearDistance, l.MaxDistance, 0),
	}
	if l.Type == scene.LightSpot {
		p.cone = math3d.V2(
			math.Cos(math3d.Radians(l.ConeAngles.X)),
			math.Cos(math3d.Radians(l.ConeAngles.Y)),
		)
	}
	return p
}

// hasShadowMap reports whether l carries a shadow map the lit pass can sample.
func hasShadowMap(l *scene.Light) bool {
	return l.CastShadows && l.Type != scene.LightPoint && l.Type != scene.LightNone && l.ShadowMap != nil
}

func lightToShader(dev gfx.Device, sh gfx.Shader, l *scene.Light) {
	p := packLight(l)
	sh.SetVec3("u_light_position", p.position)
	sh.SetVec3("u_light_front", p.front)
	sh.SetVec3("u_light_color", p.color)
	sh.SetVec4("u_light_info", p.info)
	sh.SetVec2("u_light_cone", p.cone)

	if hasShadowMap(l) {
		sh.SetVec2("u_light_shadow", math3d.V2(1, l.ShadowBias))
		sh.SetTexture("u_shadowmap", l.ShadowMap, 8)
		sh.SetMat4("u_shadow_viewproj", l.ShadowViewProjection)
	} else {
		sh.SetVec2("u_light_shadow", math3d.V2(0, l.ShadowBias))
		sh.SetTexture("u_shadowmap", nil, 8)
	}
}

func uploadNoLight(sh gfx.Shader) {
	sh.SetVec4("u_light_info", math3d.V4(float64(scene.LightNone), 0, 0, 0))
	sh.SetVec2("u_light_shadow", math3d.Vec2{})
	sh.SetTexture("u_shadowmap", nil, 8)
}
