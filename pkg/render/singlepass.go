package render

import (
	"go.uber.org/zap"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

// MaxLights is the light array capacity of the single-pass program.
const MaxLights = 4

// SinglePassStrategy draws a request once with every affecting light packed
// into fixed-size arrays. Lights beyond MaxLights are dropped in scene order.
// Shadows are not sampled.
type SinglePassStrategy struct {
	MaxLights int

	lights []*scene.Light
	pos    []math3d.Vec3
	front  []math3d.Vec3
	color  []math3d.Vec3
	info   []math3d.Vec4
	cone   []math3d.Vec2
}

func (s *SinglePassStrategy) Draw(f *Frame, req *DrawRequest) {
	d, ok := begin(f, req, ProgramSinglePass)
	if !ok {
		return
	}
	defer d.end()

	sh, mat := d.shader, req.Material
	uploadMaterial(f, sh, mat, "u_albedo_texture")
	uploadEmissive(f, sh, mat, true)

	capacity := s.MaxLights
	if capacity <= 0 || capacity > MaxLights {
		capacity = MaxLights
	}
	s.lights = FilterLights(s.lights[:0], f.Lights, req.Bounds)
	if n := len(s.lights); n > capacity {
		Logger().Debug("single-pass light list truncated",
			zap.Int("lights", n),
			zap.Int("dropped", n-capacity))
		s.lights = s.lights[:capacity]
	}
	s.pack(capacity)

	sh.SetVec3Array("u_light_pos", s.pos)
	sh.SetVec3Array("u_light_color", s.color)
	sh.SetVec3Array("u_light_front", s.front)
	sh.SetVec4Array("u_light_info", s.info)
	sh.SetVec2Array("u_light_cone", s.cone)
	sh.SetInt("u_num_lights", len(s.lights))
	req.Mesh.Render(gfx.Triangles)
}

// pack fills the uniform arrays, zero padded to capacity.
func (s *SinglePassStrategy) pack(capacity int) {
	s.pos = resize(s.pos, capacity)
	s.front = resize(s.front, capacity)
	s.color = resize(s.color, capacity)
	s.info = resize(s.info, capacity)
	s.cone = resize(s.cone, capacity)
	for i, l := range s.lights {
		p := packLight(l)
		s.pos[i], s.front[i], s.color[i] = p.position, p.front, p.color
		s.info[i], s.cone[i] = p.info, p.cone
	}
}

// resize returns a zeroed slice of length n, reusing s's storage.
func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	s = s[:n]
	clear(s)
	return s
}
