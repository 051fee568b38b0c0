package soft

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
)

// Fragment carries interpolated attributes into a kernel.
type Fragment struct {
	World       math3d.Vec3
	Normal      math3d.Vec3
	UV          math3d.Vec2
	FrontFacing bool
}

// Kernel shades one fragment. Returning false discards it.
type Kernel func(u *Uniforms, f *Fragment) (math3d.Vec4, bool)

// Built-in kernels by atlas name.
var kernels = map[string]Kernel{
	"flat":       shadeFlat,
	"texture":    shadeTexture,
	"light":      shadeLight,
	"singlepass": shadeSinglePass,
	"skybox":     shadeSkybox,
}

// Light type codes carried in u_light_info.x.
const (
	lightNone = iota
	lightPoint
	lightSpot
	lightDirectional
)

const shininess = 32

func shadeFlat(_ *Uniforms, _ *Fragment) (math3d.Vec4, bool) {
	return math3d.V4(1, 1, 1, 1), true
}

// sampleOr samples the named texture, white when unbound.
func sampleOr(u *Uniforms, name string, uv math3d.Vec2) math3d.Vec4 {
	t := u.Texture(name)
	if t == nil {
		return math3d.V4(1, 1, 1, 1)
	}
	return t.Sample(uv.X, uv.Y)
}

func shadeTexture(u *Uniforms, f *Fragment) (math3d.Vec4, bool) {
	c := u.Vec4("u_color").Mul(sampleOr(u, "u_texture", f.UV))
	if c.W < u.Float("u_alpha_cutoff") {
		return c, false
	}
	return c, true
}

// surface is the per-fragment material input shared by the lit kernels.
type surface struct {
	base   math3d.Vec4
	normal math3d.Vec3
	view   math3d.Vec3
}

func litSurface(u *Uniforms, f *Fragment) (surface, bool) {
	base := u.Vec4("u_color").Mul(sampleOr(u, "u_albedo_texture", f.UV))
	if base.W < u.Float("u_alpha_cutoff") {
		return surface{}, false
	}
	n := f.Normal.Normalize()
	if !f.FrontFacing {
		n = n.Negate()
	}
	return surface{
		base:   base,
		normal: n,
		view:   u.Vec3("u_camera_position").Sub(f.World).Normalize(),
	}, true
}

// ambientEmissive is the non-light term of a lit fragment.
func ambientEmissive(u *Uniforms, s surface, f *Fragment) math3d.Vec3 {
	ambient := u.Vec3("u_ambient_light").Mul(s.base.Vec3())
	emissive := u.Vec3("u_emissive_factor").Mul(sampleOr(u, "u_emissive_texture", f.UV).Vec3())
	return ambient.Add(emissive)
}

// lightInput is one light as seen by a fragment.
type lightInput struct {
	kind     int
	position math3d.Vec3
	front    math3d.Vec3
	color    math3d.Vec3
	near     float64
	maxDist  float64
	cosInner float64
	cosOuter float64
}

func decodeLight(pos, front, color math3d.Vec3, info math3d.Vec4, cone math3d.Vec2) lightInput {
	return lightInput{
		kind:     int(info.X),
		position: pos,
		front:    front.Normalize(),
		color:    color,
		near:     info.Y,
		maxDist:  info.Z,
		cosInner: cone.X,
		cosOuter: cone.Y,
	}
}

// direction returns the unit vector towards the light and its attenuation.
func (l lightInput) direction(world math3d.Vec3) (math3d.Vec3, float64) {
	switch l.kind {
	case lightDirectional:
		return l.front.Negate(), 1
	case lightPoint, lightSpot:
		toLight := l.position.Sub(world)
		dist := toLight.Len()
		if dist == 0 || l.maxDist <= 0 || dist > l.maxDist {
			return math3d.Vec3{}, 0
		}
		dir := toLight.Scale(1 / dist)
		att := 1 - dist/l.maxDist
		att *= att
		if l.kind == lightSpot {
			att *= smoothstep(l.cosOuter, l.cosInner, dir.Negate().Dot(l.front))
		}
		return dir, att
	}
	return math3d.Vec3{}, 0
}

// contribution is the diffuse (and optionally specular) light reflected by s.
func (l lightInput) contribution(s surface, world math3d.Vec3, shadow float64, specularOnly bool) math3d.Vec3 {
	dir, att := l.direction(world)
	if att == 0 || shadow == 0 {
		return math3d.Vec3{}
	}
	ndotl := math.Max(0, s.normal.Dot(dir))
	half := dir.Add(s.view).Normalize()
	spec := math.Pow(math.Max(0, s.normal.Dot(half)), shininess)
	if ndotl == 0 {
		spec = 0
	}

	k := att * shadow
	if specularOnly {
		return l.color.Scale(spec * k)
	}
	diffuse := s.base.Vec3().Mul(l.color).Scale(ndotl * k)
	return diffuse.Add(l.color.Scale(0.25 * spec * k))
}

// shadowFactor returns 0 when world is occluded in the light's depth map.
func shadowFactor(u *Uniforms, world math3d.Vec3) float64 {
	params := u.Vec2("u_light_shadow")
	shadowMap := u.Texture("u_shadowmap")
	if params.X == 0 || shadowMap == nil {
		return 1
	}
	clip := u.Mat4("u_shadow_viewproj").MulVec4(math3d.V4FromV3(world, 1))
	if clip.W <= 0 {
		return 1
	}
	ndc := clip.PerspectiveDivide()
	depth := ndc.Z*0.5 + 0.5
	if depth > 1 {
		return 1
	}
	stored := shadowMap.SampleDepth(ndc.X*0.5+0.5, ndc.Y*0.5+0.5)
	if depth-params.Y > stored {
		return 0
	}
	return 1
}

func shadeLight(u *Uniforms, f *Fragment) (math3d.Vec4, bool) {
	s, ok := litSurface(u, f)
	if !ok {
		return math3d.Vec4{}, false
	}
	l := decodeLight(
		u.Vec3("u_light_position"),
		u.Vec3("u_light_front"),
		u.Vec3("u_light_color"),
		u.Vec4("u_light_info"),
		u.Vec2("u_light_cone"),
	)
	specOnly := u.Int("u_show_specular") != 0

	var c math3d.Vec3
	if !specOnly {
		c = ambientEmissive(u, s, f)
	}
	c = c.Add(l.contribution(s, f.World, shadowFactor(u, f.World), specOnly))
	return math3d.V4FromV3(c, s.base.W), true
}

// lightArray returns element i of an array uniform or the zero value.
func lightArray[T any](arr []T, i int) T {
	var zero T
	if i < len(arr) {
		return arr[i]
	}
	return zero
}

func shadeSinglePass(u *Uniforms, f *Fragment) (math3d.Vec4, bool) {
	s, ok := litSurface(u, f)
	if !ok {
		return math3d.Vec4{}, false
	}
	specOnly := u.Int("u_show_specular") != 0

	var c math3d.Vec3
	if !specOnly {
		c = ambientEmissive(u, s, f)
	}
	pos, color, front := u.Vec3Array("u_light_pos"), u.Vec3Array("u_light_color"), u.Vec3Array("u_light_front")
	info, cone := u.Vec4Array("u_light_info"), u.Vec2Array("u_light_cone")
	for i := range u.Int("u_num_lights") {
		l := decodeLight(lightArray(pos, i), lightArray(front, i), lightArray(color, i), lightArray(info, i), lightArray(cone, i))
		c = c.Add(l.contribution(s, f.World, 1, specOnly))
	}
	return math3d.V4FromV3(c, s.base.W), true
}

// shadeSkybox maps the view direction into an equirectangular texture.
func shadeSkybox(u *Uniforms, f *Fragment) (math3d.Vec4, bool) {
	dir := f.World.Sub(u.Vec3("u_camera_position")).Normalize()
	uu := math.Atan2(dir.Z, dir.X)/(2*math.Pi) + 0.5
	vv := math.Asin(math.Max(-1, math.Min(1, dir.Y)))/math.Pi + 0.5
	c := u.Vec4("u_color").Mul(sampleOr(u, "u_texture", math3d.V2(uu, vv)))
	c.W = 1
	return c, true
}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := math.Max(0, math.Min(1, (x-edge0)/(edge1-edge0)))
	return t * t * (3 - 2*t)
}
