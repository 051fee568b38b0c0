// Package render is a forward scene renderer. Each frame it collects and
// culls draw requests, sorts them for blending, regenerates shadow maps
// and shades the requests with one of four interchangeable strategies.
package render

import (
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

// ErrNoDevice is returned by New when no device is given.
var ErrNoDevice = errors.New("render: no graphics device")

// requiredPrograms must resolve in the device atlas at construction.
var requiredPrograms = []string{ProgramFlat, ProgramTexture, ProgramLight, ProgramSinglePass}

const (
	skyboxScale     = 10
	shadowTileGap   = 4
	shadowTileInset = 4
)

// Renderer draws scenes through a gfx.Device.
type Renderer struct {
	dev        gfx.Device
	cfg        Config
	collector  Collector
	shadows    *ShadowGenerator
	strategies [numModes]Strategy

	skybox   gfx.Mesh
	boundary gfx.Mesh

	start time.Time
	now   func() time.Time
}

// New creates a renderer. It fails if dev lacks any of the flat, texture,
// light or singlepass programs.
func New(dev gfx.Device, cfg Config) (*Renderer, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, name := range requiredPrograms {
		if dev.Shader(name) == nil {
			Logger().Error("shader atlas is missing a program", zap.String("program", name))
			return nil, fmt.Errorf("render: shader atlas has no %q program", name)
		}
	}

	r := &Renderer{
		dev:     dev,
		cfg:     cfg,
		shadows: NewShadowGenerator(cfg.ShadowMapSize),
		now:     time.Now,
	}
	for m := range numModes {
		r.strategies[m] = NewStrategy(m)
	}

	var err error
	if r.skybox, err = dev.NewMesh(gfx.SphereData(1, 16, 24)); err != nil {
		return nil, fmt.Errorf("skybox mesh: %w", err)
	}
	if r.boundary, err = dev.NewMesh(boundaryData()); err != nil {
		return nil, fmt.Errorf("boundary mesh: %w", err)
	}
	r.start = r.now()
	return r, nil
}

// boundaryData is the 12 edges of the [-1,1] cube as line pairs.
func boundaryData() *gfx.MeshData {
	d := &gfx.MeshData{Name: "boundary"}
	for i := range 8 {
		d.Vertices = append(d.Vertices, gfx.Vertex{Position: math3d.V3(
			float64(i&1*2-1),
			float64(i>>1&1*2-1),
			float64(i>>2&1*2-1),
		)})
	}
	for i := range 8 {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				d.Indices = append(d.Indices, i, i|bit)
			}
		}
	}
	return d
}

// Config returns the current settings.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Mode returns the main-pass shading mode.
func (r *Renderer) Mode() ShadingMode {
	return r.cfg.Mode
}

// SetMode selects the main-pass shading mode.
func (r *Renderer) SetMode(m ShadingMode) {
	if m >= 0 && m < numModes {
		r.cfg.Mode = m
	}
}

// CycleMode advances to the next shading mode and returns it.
func (r *Renderer) CycleMode() ShadingMode {
	r.cfg.Mode = r.cfg.Mode.Next()
	return r.cfg.Mode
}

func (r *Renderer) ToggleWireframe()  { r.cfg.Wireframe = !r.cfg.Wireframe }
func (r *Renderer) ToggleBoundaries() { r.cfg.Boundaries = !r.cfg.Boundaries }
func (r *Renderer) ToggleShadowMaps() { r.cfg.ShowShadowMaps = !r.cfg.ShowShadowMaps }
func (r *Renderer) ToggleSpecular()   { r.cfg.ShowSpecular = !r.cfg.ShowSpecular }

// Requests returns the sorted draw requests of the last frame.
func (r *Renderer) Requests() []DrawRequest {
	return r.collector.Requests()
}

// Lights returns the lights of the last frame.
func (r *Renderer) Lights() []*scene.Light {
	return r.collector.Lights()
}

// RenderScene draws one frame of s from cam into the default target,
// regenerating shadow maps first.
func (r *Renderer) RenderScene(s *scene.Scene, cam *Camera) {
	r.collector.SkipHiddenSubtrees = r.cfg.SkipHiddenSubtrees
	r.collector.Collect(s, cam)
	reqs := r.collector.Requests()
	SortRequests(reqs)

	r.shadows.SkipHiddenSubtrees = r.cfg.SkipHiddenSubtrees
	r.shadows.Generate(r.dev, s, r.collector.Lights())

	guard := gfx.SaveState(r.dev)
	defer guard.Restore()
	guard.Set(gfx.DefaultState())
	r.dev.Clear(s.Background)

	frame := &Frame{
		Device:       r.dev,
		Camera:       cam,
		Lights:       r.collector.Lights(),
		Ambient:      s.Ambient,
		Time:         r.now().Sub(r.start).Seconds(),
		Wireframe:    r.cfg.Wireframe,
		ShowSpecular: r.cfg.ShowSpecular,
	}

	if s.Skybox != nil {
		r.renderSkybox(s.Skybox, cam)
	}

	strategy := r.strategies[r.cfg.Mode]
	for i := range reqs {
		strategy.Draw(frame, &reqs[i])
	}

	if r.cfg.Boundaries {
		r.renderBoundaries(cam, reqs)
	}
	if r.cfg.ShowShadowMaps {
		r.DebugShadowMaps()
	}
}

// renderSkybox draws a large sphere around the eye with depth, culling and
// blending off, so scene geometry always covers it.
func (r *Renderer) renderSkybox(tex gfx.Texture, cam *Camera) {
	sh := r.dev.Shader(ProgramSkybox)
	if sh == nil {
		Logger().Debug("missing shading program", zap.String("program", ProgramSkybox))
		return
	}
	guard := gfx.SaveState(r.dev)
	defer guard.Restore()
	guard.Update(func(s *gfx.State) {
		s.Blend = false
		s.DepthTest = false
		s.CullFace = false
		s.Fill = gfx.FillSolid
	})

	sh.Enable()
	defer sh.Disable()
	sh.SetMat4("u_model", math3d.Translate(cam.Eye).Mul(math3d.Scale(math3d.Splat3(skyboxScale))))
	cameraToShader(sh, cam)
	sh.SetVec4("u_color", math3d.V4(1, 1, 1, 1))
	sh.SetTexture("u_texture", tex, 0)
	r.skybox.Render(gfx.Triangles)
}

// renderBoundaries outlines the world box of every request.
func (r *Renderer) renderBoundaries(cam *Camera, reqs []DrawRequest) {
	sh := r.dev.Shader(ProgramFlat)
	if sh == nil {
		return
	}
	guard := gfx.SaveState(r.dev)
	defer guard.Restore()
	guard.Update(func(s *gfx.State) {
		s.Blend = false
		s.CullFace = false
		s.DepthTest = true
		s.DepthFunc = gfx.DepthLessEqual
	})

	sh.Enable()
	defer sh.Disable()
	cameraToShader(sh, cam)
	for _, req := range reqs {
		b := req.Bounds
		sh.SetMat4("u_model", math3d.Translate(b.Center).Mul(math3d.Scale(b.HalfSize)))
		r.boundary.Render(gfx.Lines)
	}
}

// DebugShadowMaps blits the depth map of every shadowed light of the last
// frame as a tile along the bottom of the screen.
func (r *Renderer) DebugShadowMaps() {
	size := r.cfg.ShadowTileSize
	_, height := r.dev.Viewport()
	x := shadowTileInset
	for _, l := range r.collector.Lights() {
		if !ShadowCaster(l) || l.ShadowMap == nil {
			continue
		}
		y := height - size - shadowTileInset
		r.dev.BlitTexture(l.ShadowMap, image.Rect(x, y, x+size, y+size))
		x += size + shadowTileGap
	}
}
