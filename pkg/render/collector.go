package render

import (
	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

// DrawRequest is one frame's instruction to draw a mesh with a material at
// a world transform. Requests are rebuilt every frame.
type DrawRequest struct {
	Mesh     gfx.Mesh
	Material *scene.Material
	Model    math3d.Mat4
	Bounds   math3d.Box // world space
	Distance float64    // camera eye to Model origin
}

// Collector walks a scene and gathers the draw requests and lights of a frame.
type Collector struct {
	// SkipHiddenSubtrees prunes traversal at invisible nodes.
	SkipHiddenSubtrees bool

	requests []DrawRequest
	lights   []*scene.Light

	frustum Frustum
	eye     math3d.Vec3
}

// Collect replaces the request and light lists with those of s as seen by cam.
func (c *Collector) Collect(s *scene.Scene, cam *Camera) {
	c.requests = c.requests[:0]
	c.lights = c.lights[:0]
	c.frustum = cam.Frustum()
	c.eye = cam.Eye

	for _, e := range s.Entities {
		if !e.Visible() {
			continue
		}
		e.Accept(c)
	}
}

func (c *Collector) VisitPrefab(p *scene.PrefabEntity) {
	if p.Root != nil {
		c.visitNode(p.Root, math3d.Identity())
	}
}

func (c *Collector) VisitLight(l *scene.LightEntity) {
	if l.Light != nil {
		c.lights = append(c.lights, l.Light)
	}
}

func (c *Collector) visitNode(n *scene.Node, parent math3d.Mat4) {
	model := parent.Mul(n.Local)
	if n.Visible {
		c.add(n, model)
	} else if c.SkipHiddenSubtrees {
		return
	}
	for _, child := range n.Children() {
		c.visitNode(child, model)
	}
}

func (c *Collector) add(n *scene.Node, model math3d.Mat4) {
	if !n.Drawable() {
		return
	}
	box := TransformBoundingBox(model, n.Mesh.Bounds())
	if !c.frustum.IntersectBox(box) {
		return
	}
	c.requests = append(c.requests, DrawRequest{
		Mesh:     n.Mesh,
		Material: n.Material,
		Model:    model,
		Bounds:   box,
		Distance: c.eye.Distance(model.Translation()),
	})
}

// Requests returns the collected requests. The slice is reused by the next Collect.
func (c *Collector) Requests() []DrawRequest {
	return c.requests
}

// Lights returns the lights of visible light entities in scene order.
func (c *Collector) Lights() []*scene.Light {
	return c.lights
}
