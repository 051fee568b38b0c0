package soft

import (
	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
)

// Uniforms is the uniform table of a program. Unset names read as zero.
type Uniforms struct {
	ints     map[string]int
	floats   map[string]float64
	vec2s    map[string]math3d.Vec2
	vec3s    map[string]math3d.Vec3
	vec4s    map[string]math3d.Vec4
	mats     map[string]math3d.Mat4
	textures map[string]*Texture
	vec2Arr  map[string][]math3d.Vec2
	vec3Arr  map[string][]math3d.Vec3
	vec4Arr  map[string][]math3d.Vec4
}

func newUniforms() *Uniforms {
	return &Uniforms{
		ints:     map[string]int{},
		floats:   map[string]float64{},
		vec2s:    map[string]math3d.Vec2{},
		vec3s:    map[string]math3d.Vec3{},
		vec4s:    map[string]math3d.Vec4{},
		mats:     map[string]math3d.Mat4{},
		textures: map[string]*Texture{},
		vec2Arr:  map[string][]math3d.Vec2{},
		vec3Arr:  map[string][]math3d.Vec3{},
		vec4Arr:  map[string][]math3d.Vec4{},
	}
}

func (u *Uniforms) Int(name string) int                 { return u.ints[name] }
func (u *Uniforms) Float(name string) float64           { return u.floats[name] }
func (u *Uniforms) Vec2(name string) math3d.Vec2        { return u.vec2s[name] }
func (u *Uniforms) Vec3(name string) math3d.Vec3        { return u.vec3s[name] }
func (u *Uniforms) Vec4(name string) math3d.Vec4        { return u.vec4s[name] }
func (u *Uniforms) Texture(name string) *Texture        { return u.textures[name] }
func (u *Uniforms) Vec2Array(name string) []math3d.Vec2 { return u.vec2Arr[name] }
func (u *Uniforms) Vec3Array(name string) []math3d.Vec3 { return u.vec3Arr[name] }
func (u *Uniforms) Vec4Array(name string) []math3d.Vec4 { return u.vec4Arr[name] }

// Mat4 returns the named matrix, or identity when unset.
func (u *Uniforms) Mat4(name string) math3d.Mat4 {
	if m, ok := u.mats[name]; ok {
		return m
	}
	return math3d.Identity()
}

// Program is a named shading program backed by a Go kernel.
type Program struct {
	name     string
	kernel   Kernel
	dev      *Device
	uniforms *Uniforms
}

var _ gfx.Shader = (*Program)(nil)

// Name implements gfx.Shader.
func (p *Program) Name() string { return p.name }

// Uniforms exposes the current uniform table.
func (p *Program) Uniforms() *Uniforms { return p.uniforms }

// Enable makes p the program used by subsequent mesh submissions.
func (p *Program) Enable() { p.dev.current = p }

// Disable unbinds p if it is current.
func (p *Program) Disable() {
	if p.dev.current == p {
		p.dev.current = nil
	}
}

func (p *Program) SetInt(name string, v int)          { p.uniforms.ints[name] = v }
func (p *Program) SetFloat(name string, v float64)    { p.uniforms.floats[name] = v }
func (p *Program) SetVec2(name string, v math3d.Vec2) { p.uniforms.vec2s[name] = v }
func (p *Program) SetVec3(name string, v math3d.Vec3) { p.uniforms.vec3s[name] = v }
func (p *Program) SetVec4(name string, v math3d.Vec4) { p.uniforms.vec4s[name] = v }
func (p *Program) SetMat4(name string, v math3d.Mat4) { p.uniforms.mats[name] = v }

func (p *Program) SetVec2Array(name string, v []math3d.Vec2) {
	p.uniforms.vec2Arr[name] = append([]math3d.Vec2(nil), v...)
}

func (p *Program) SetVec3Array(name string, v []math3d.Vec3) {
	p.uniforms.vec3Arr[name] = append([]math3d.Vec3(nil), v...)
}

func (p *Program) SetVec4Array(name string, v []math3d.Vec4) {
	p.uniforms.vec4Arr[name] = append([]math3d.Vec4(nil), v...)
}

// SetTexture binds tex to name. The slot is ignored; the software device
// samples textures by name. Foreign or nil textures unbind the name.
func (p *Program) SetTexture(name string, tex gfx.Texture, _ int) {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		delete(p.uniforms.textures, name)
		return
	}
	p.uniforms.textures[name] = t
}
