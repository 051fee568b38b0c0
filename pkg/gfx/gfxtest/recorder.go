// Package gfxtest provides a gfx.Device that records submissions instead of
// drawing them.
package gfxtest

import (
	"image"
	"maps"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
)

// Draw is one recorded mesh submission.
type Draw struct {
	Shader    string
	Primitive gfx.Primitive
	Mesh      *Mesh
	State     gfx.State
	Target    *RenderTarget // nil for the default target
	Uniforms  map[string]any
}

// Float returns a float uniform, or 0.
func (d Draw) Float(name string) float64 {
	v, _ := d.Uniforms[name].(float64)
	return v
}

// Int returns an int uniform, or 0.
func (d Draw) Int(name string) int {
	v, _ := d.Uniforms[name].(int)
	return v
}

// Vec2 returns a Vec2 uniform, or zero.
func (d Draw) Vec2(name string) math3d.Vec2 {
	v, _ := d.Uniforms[name].(math3d.Vec2)
	return v
}

// Vec3 returns a Vec3 uniform, or zero.
func (d Draw) Vec3(name string) math3d.Vec3 {
	v, _ := d.Uniforms[name].(math3d.Vec3)
	return v
}

// Vec4 returns a Vec4 uniform, or zero.
func (d Draw) Vec4(name string) math3d.Vec4 {
	v, _ := d.Uniforms[name].(math3d.Vec4)
	return v
}

// Mat4 returns a Mat4 uniform, or zero.
func (d Draw) Mat4(name string) math3d.Mat4 {
	v, _ := d.Uniforms[name].(math3d.Mat4)
	return v
}

// Texture returns a texture uniform, or nil.
func (d Draw) Texture(name string) gfx.Texture {
	v, _ := d.Uniforms[name].(gfx.Texture)
	return v
}

// Blit is one recorded BlitTexture call.
type Blit struct {
	Texture gfx.Texture
	Rect    image.Rectangle
}

// Recorder is a gfx.Device that keeps every submission in memory.
type Recorder struct {
	Draws  []Draw
	Blits  []Blit
	Clears []math3d.Vec3

	width, height int
	state         gfx.State
	shaders       map[string]*Shader
	missing       map[string]bool
	current       *Shader
	bound         *RenderTarget
	white         *Texture
}

var _ gfx.Device = (*Recorder)(nil)

// NewRecorder returns a recorder with a width x height default target.
// Every shader name resolves unless removed with Without.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{
		width:   width,
		height:  height,
		state:   gfx.DefaultState(),
		shaders: map[string]*Shader{},
		missing: map[string]bool{},
		white:   &Texture{Width: 1, Height: 1, Name: "white"},
	}
}

// Without makes Shader return nil for the given names.
func (r *Recorder) Without(names ...string) *Recorder {
	for _, n := range names {
		r.missing[n] = true
	}
	return r
}

// Reset forgets recorded submissions.
func (r *Recorder) Reset() {
	r.Draws, r.Blits, r.Clears = nil, nil, nil
}

// DrawsTo returns the draws submitted while target was bound.
func (r *Recorder) DrawsTo(target *RenderTarget) []Draw {
	var out []Draw
	for _, d := range r.Draws {
		if d.Target == target {
			out = append(out, d)
		}
	}
	return out
}

func (r *Recorder) Shader(name string) gfx.Shader {
	if r.missing[name] {
		return nil
	}
	s, ok := r.shaders[name]
	if !ok {
		s = &Shader{name: name, rec: r, uniforms: map[string]any{}}
		r.shaders[name] = s
	}
	return s
}

func (r *Recorder) NewMesh(data *gfx.MeshData) (gfx.Mesh, error) {
	return &Mesh{Data: data, rec: r}, nil
}

func (r *Recorder) NewTexture(img image.Image) gfx.Texture {
	b := img.Bounds()
	return &Texture{Width: b.Dx(), Height: b.Dy()}
}

func (r *Recorder) NewRenderTarget() gfx.RenderTarget {
	return &RenderTarget{rec: r}
}

func (r *Recorder) WhiteTexture() gfx.Texture { return r.white }
func (r *Recorder) State() gfx.State          { return r.state }
func (r *Recorder) SetState(s gfx.State)      { r.state = s }

func (r *Recorder) Viewport() (int, int) {
	if r.bound != nil {
		return r.bound.Width, r.bound.Height
	}
	return r.width, r.height
}

func (r *Recorder) Clear(c math3d.Vec3) {
	r.Clears = append(r.Clears, c)
}

func (r *Recorder) BlitTexture(tex gfx.Texture, dst image.Rectangle) {
	r.Blits = append(r.Blits, Blit{Texture: tex, Rect: dst})
}

// Shader records uniform uploads.
type Shader struct {
	name     string
	rec      *Recorder
	uniforms map[string]any
}

func (s *Shader) Name() string { return s.name }
func (s *Shader) Enable()      { s.rec.current = s }

func (s *Shader) Disable() {
	if s.rec.current == s {
		s.rec.current = nil
	}
}

func (s *Shader) SetInt(name string, v int)          { s.uniforms[name] = v }
func (s *Shader) SetFloat(name string, v float64)    { s.uniforms[name] = v }
func (s *Shader) SetVec2(name string, v math3d.Vec2) { s.uniforms[name] = v }
func (s *Shader) SetVec3(name string, v math3d.Vec3) { s.uniforms[name] = v }
func (s *Shader) SetVec4(name string, v math3d.Vec4) { s.uniforms[name] = v }
func (s *Shader) SetMat4(name string, v math3d.Mat4) { s.uniforms[name] = v }

func (s *Shader) SetTexture(name string, tex gfx.Texture, _ int) {
	s.uniforms[name] = tex
}

func (s *Shader) SetVec2Array(name string, v []math3d.Vec2) {
	s.uniforms[name] = append([]math3d.Vec2(nil), v...)
}

func (s *Shader) SetVec3Array(name string, v []math3d.Vec3) {
	s.uniforms[name] = append([]math3d.Vec3(nil), v...)
}

func (s *Shader) SetVec4Array(name string, v []math3d.Vec4) {
	s.uniforms[name] = append([]math3d.Vec4(nil), v...)
}

// Mesh records Render calls against the enabled shader.
type Mesh struct {
	Data *gfx.MeshData
	rec  *Recorder
}

func (m *Mesh) VertexCount() int {
	if m.Data == nil {
		return 0
	}
	return len(m.Data.Vertices)
}

func (m *Mesh) Bounds() math3d.Box {
	if m.Data == nil {
		return math3d.Box{}
	}
	return m.Data.Bounds()
}

// Render records a draw. Without an enabled shader nothing is recorded.
func (m *Mesh) Render(p gfx.Primitive) {
	s := m.rec.current
	if s == nil {
		return
	}
	m.rec.Draws = append(m.rec.Draws, Draw{
		Shader:    s.name,
		Primitive: p,
		Mesh:      m,
		State:     m.rec.state,
		Target:    m.rec.bound,
		Uniforms:  maps.Clone(s.uniforms),
	})
}

// Texture is an opaque recorded texture.
type Texture struct {
	Width, Height int
	Depth         bool
	Name          string
}

func (t *Texture) Size() (int, int) { return t.Width, t.Height }
func (t *Texture) IsDepth() bool    { return t.Depth }

// RenderTarget records binds and its depth allocation.
type RenderTarget struct {
	Width, Height int
	Allocs        int
	depth         *Texture
	rec           *Recorder
}

func (rt *RenderTarget) SetDepthOnly(width, height int) {
	rt.Width, rt.Height = width, height
	rt.Allocs++
	rt.depth = &Texture{Width: width, Height: height, Depth: true}
}

func (rt *RenderTarget) Bind() { rt.rec.bound = rt }

func (rt *RenderTarget) Unbind() {
	if rt.rec.bound == rt {
		rt.rec.bound = nil
	}
}

func (rt *RenderTarget) DepthTexture() gfx.Texture {
	if rt.depth == nil {
		return nil
	}
	return rt.depth
}
