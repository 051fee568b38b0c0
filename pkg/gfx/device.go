// Package gfx defines the graphics-device abstraction the renderer draws through.
//
// A Device hands out named shading programs, meshes, textures and render
// targets. Implementations live in sub-packages: soft is a deterministic
// software rasterizer, gfxtest records submissions for tests.
package gfx

import (
	"image"

	"github.com/taigrr/lumen/pkg/math3d"
)

// Primitive is the topology used by a mesh submission.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
)

// Device is the capability set the renderer needs from a graphics backend.
type Device interface {
	// Shader returns the named shading program, or nil if the atlas has none.
	Shader(name string) Shader

	// NewMesh uploads geometry and returns a drawable mesh.
	NewMesh(data *MeshData) (Mesh, error)

	// NewTexture uploads an image as a colour texture.
	NewTexture(img image.Image) Texture

	// NewRenderTarget allocates an unsized render target.
	NewRenderTarget() RenderTarget

	// WhiteTexture returns the shared 1x1 opaque white texture.
	WhiteTexture() Texture

	// State returns the current fixed-function state.
	State() State

	// SetState replaces the fixed-function state.
	SetState(s State)

	// Viewport returns the size of the currently bound target.
	Viewport() (width, height int)

	// Clear clears colour and depth of the bound target.
	Clear(color math3d.Vec3)

	// BlitTexture draws tex scaled into dst on the default target.
	// Depth textures are shown as grayscale.
	BlitTexture(tex Texture, dst image.Rectangle)
}

// Shader is a linked shading program with a uniform table.
type Shader interface {
	Name() string
	Enable()
	Disable()

	SetInt(name string, v int)
	SetFloat(name string, v float64)
	SetVec2(name string, v math3d.Vec2)
	SetVec3(name string, v math3d.Vec3)
	SetVec4(name string, v math3d.Vec4)
	SetMat4(name string, v math3d.Mat4)
	SetTexture(name string, tex Texture, slot int)

	SetVec2Array(name string, v []math3d.Vec2)
	SetVec3Array(name string, v []math3d.Vec3)
	SetVec4Array(name string, v []math3d.Vec4)
}

// Mesh is GPU-resident geometry.
type Mesh interface {
	VertexCount() int
	// Bounds is the local-space bounding box.
	Bounds() math3d.Box
	// Render submits the mesh with the currently enabled shader.
	Render(p Primitive)
}

// Texture is a sampled image. Depth textures come from render targets.
type Texture interface {
	Size() (width, height int)
	IsDepth() bool
}

// RenderTarget is an offscreen framebuffer.
type RenderTarget interface {
	// SetDepthOnly (re)allocates the target as a depth-only buffer of the given size.
	SetDepthOnly(width, height int)
	Bind()
	Unbind()
	// DepthTexture returns the depth attachment, or nil before allocation.
	DepthTexture() Texture
}
