// Package soft is a deterministic software implementation of gfx.Device.
//
// It rasterizes with edge functions into float colour and [0,1] depth
// planes. Shading programs are Go kernels selected by name through an atlas.
// Identical submissions produce bit-identical buffers.
package soft

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
)

// Device renders into an in-memory framebuffer.
type Device struct {
	screen   *Framebuffer
	target   *Framebuffer
	state    gfx.State
	programs map[string]*Program
	current  *Program
	white    *Texture

	// scratch reused across submissions
	verts []clipVertex
	poly  []clipVertex
	frag  Fragment
}

var _ gfx.Device = (*Device)(nil)

// New creates a device with a width x height default target and the
// programs named by atlas.
func New(width, height int, atlas Atlas) (*Device, error) {
	d := &Device{
		screen:   NewFramebuffer(width, height),
		state:    gfx.DefaultState(),
		programs: make(map[string]*Program, len(atlas)),
		white:    NewTexture(1, 1),
	}
	d.target = d.screen
	d.white.SetPixel(0, 0, math3d.V4(1, 1, 1, 1))

	for name, kernelName := range atlas {
		k, ok := kernels[kernelName]
		if !ok {
			return nil, fmt.Errorf("program %q: %w: %q", name, ErrUnknownKernel, kernelName)
		}
		d.programs[name] = &Program{name: name, kernel: k, dev: d, uniforms: newUniforms()}
	}
	return d, nil
}

// Screen returns the default colour+depth target.
func (d *Device) Screen() *Framebuffer {
	return d.screen
}

// Resize reallocates the default target.
func (d *Device) Resize(width, height int) {
	if d.screen.Width == width && d.screen.Height == height {
		return
	}
	rebind := d.target == d.screen
	d.screen = NewFramebuffer(width, height)
	if rebind {
		d.target = d.screen
	}
}

// Shader implements gfx.Device. Unknown names return nil.
func (d *Device) Shader(name string) gfx.Shader {
	p, ok := d.programs[name]
	if !ok {
		return nil
	}
	return p
}

// NewMesh implements gfx.Device.
func (d *Device) NewMesh(data *gfx.MeshData) (gfx.Mesh, error) {
	if data == nil {
		return nil, fmt.Errorf("new mesh: nil data")
	}
	for i, idx := range data.Indices {
		if idx < 0 || idx >= len(data.Vertices) {
			return nil, fmt.Errorf("mesh %q: index %d out of range at %d", data.Name, idx, i)
		}
	}
	return &mesh{dev: d, data: data, bounds: data.Bounds()}, nil
}

// NewTexture implements gfx.Device.
func (d *Device) NewTexture(img image.Image) gfx.Texture {
	return TextureFromImage(img)
}

// NewRenderTarget implements gfx.Device.
func (d *Device) NewRenderTarget() gfx.RenderTarget {
	return &renderTarget{dev: d}
}

// WhiteTexture implements gfx.Device.
func (d *Device) WhiteTexture() gfx.Texture {
	return d.white
}

// State implements gfx.Device.
func (d *Device) State() gfx.State {
	return d.state
}

// SetState implements gfx.Device.
func (d *Device) SetState(s gfx.State) {
	d.state = s
}

// Viewport implements gfx.Device.
func (d *Device) Viewport() (int, int) {
	return d.target.Width, d.target.Height
}

// Clear implements gfx.Device.
func (d *Device) Clear(c math3d.Vec3) {
	d.target.Clear(c)
}

// BlitTexture implements gfx.Device. The texture is scaled with nearest
// neighbour filtering to keep output deterministic.
func (d *Device) BlitTexture(tex gfx.Texture, dst image.Rectangle) {
	t, ok := tex.(*Texture)
	if !ok || t == nil || t.Width == 0 || t.Height == 0 {
		return
	}
	dst = dst.Intersect(image.Rect(0, 0, d.screen.Width, d.screen.Height))
	if dst.Empty() {
		return
	}

	src := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := range t.Height {
		for x := range t.Width {
			src.SetRGBA(x, y, toRGBA(t.GetPixel(x, y)))
		}
	}
	scaled := image.NewRGBA(dst)
	draw.NearestNeighbor.Scale(scaled, dst, src, src.Bounds(), draw.Src, nil)

	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		for x := dst.Min.X; x < dst.Max.X; x++ {
			c := scaled.RGBAAt(x, y)
			d.screen.SetPixel(x, y, math3d.V4(float64(c.R), float64(c.G), float64(c.B), float64(c.A)).Scale(1.0/255))
		}
	}
}

// mesh is CPU geometry submitted through the rasterizer.
type mesh struct {
	dev    *Device
	data   *gfx.MeshData
	bounds math3d.Box
}

func (m *mesh) VertexCount() int          { return len(m.data.Vertices) }
func (m *mesh) Bounds() math3d.Box        { return m.bounds }
func (m *mesh) Render(prim gfx.Primitive) { m.dev.drawMesh(m, prim) }

// renderTarget is an offscreen depth-only buffer.
type renderTarget struct {
	dev   *Device
	fb    *Framebuffer
	depth *Texture
}

// SetDepthOnly reallocates the buffer unless it already has the requested size.
func (rt *renderTarget) SetDepthOnly(width, height int) {
	if rt.fb != nil && rt.fb.Width == width && rt.fb.Height == height {
		return
	}
	rt.fb = NewDepthBuffer(width, height)
	rt.depth = &Texture{Width: width, Height: height, Depth: rt.fb.Depth, WrapU: WrapClamp, WrapV: WrapClamp}
}

func (rt *renderTarget) Bind() {
	if rt.fb != nil {
		rt.dev.target = rt.fb
	}
}

func (rt *renderTarget) Unbind() {
	if rt.dev.target == rt.fb {
		rt.dev.target = rt.dev.screen
	}
}

func (rt *renderTarget) DepthTexture() gfx.Texture {
	if rt.depth == nil {
		return nil
	}
	return rt.depth
}
