package render

import (
	"math"

	"go.uber.org/zap"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

// DefaultShadowMapSize is the edge length of a light's depth map.
const DefaultShadowMapSize = 1024

const (
	directionalShadowNear = 0.1
	minShadowNear         = 0.01
	minSpotFOV            = 1.0   // degrees
	maxSpotFOV            = 179.0 // degrees
)

// ShadowCaster reports whether l gets a shadow map.
func ShadowCaster(l *scene.Light) bool {
	return l.CastShadows && (l.Type == scene.LightSpot || l.Type == scene.LightDirectional)
}

// ShadowCamera builds the light-space camera of a spot or directional light.
// It looks along the light's forward axis with a (0,1,0) up vector, or
// (1,0,0) when forward is nearly vertical.
func ShadowCamera(l *scene.Light) (*Camera, bool) {
	if l.Type != scene.LightSpot && l.Type != scene.LightDirectional {
		return nil, false
	}
	eye, fwd := l.Position(), l.Forward()
	up := math3d.Up()
	if math.Abs(fwd.Dot(up)) > 0.999 {
		up = math3d.Right()
	}

	cam := &Camera{}
	cam.LookAt(eye, eye.Add(fwd), up)
	if l.Type == scene.LightSpot {
		fov := math.Max(minSpotFOV, math.Min(maxSpotFOV, 2*l.ConeAngles.Y))
		cam.SetPerspective(math3d.Radians(fov), 1, math.Max(l.NearDistance, minShadowNear), l.MaxDistance)
	} else {
		h := l.Area / 2
		cam.SetOrthographic(-h, h, -h, h, directionalShadowNear, l.MaxDistance)
	}
	return cam, true
}

// ShadowGenerator renders depth maps for shadow-casting lights.
type ShadowGenerator struct {
	Size               int
	SkipHiddenSubtrees bool

	collector Collector
}

// NewShadowGenerator returns a generator allocating size x size depth maps.
func NewShadowGenerator(size int) *ShadowGenerator {
	if size <= 0 {
		size = DefaultShadowMapSize
	}
	return &ShadowGenerator{Size: size}
}

// Generate renders s depth-only from every shadow-casting light in lights
// and stores the depth texture and view-projection on the light. A light's
// render target is allocated on first use and reused afterwards.
func (g *ShadowGenerator) Generate(dev gfx.Device, s *scene.Scene, lights []*scene.Light) {
	for _, l := range lights {
		if !ShadowCaster(l) {
			continue
		}
		cam, _ := ShadowCamera(l)
		if l.ShadowTarget == nil {
			l.ShadowTarget = dev.NewRenderTarget()
			l.ShadowTarget.SetDepthOnly(g.Size, g.Size)
			Logger().Info("allocated shadow map",
				zap.Stringer("type", l.Type),
				zap.Int("size", g.Size))
		}
		g.render(dev, s, cam, l.ShadowTarget)
		l.ShadowMap = l.ShadowTarget.DepthTexture()
		l.ShadowViewProjection = cam.ViewProjectionMatrix()
	}
}

func (g *ShadowGenerator) render(dev gfx.Device, s *scene.Scene, cam *Camera, target gfx.RenderTarget) {
	guard := gfx.SaveState(dev)
	defer guard.Restore()

	target.Bind()
	defer target.Unbind()
	guard.Set(gfx.DefaultState())
	dev.Clear(math3d.Vec3{})

	g.collector.SkipHiddenSubtrees = g.SkipHiddenSubtrees
	g.collector.Collect(s, cam)
	// a throwaway flat strategy, the main pass mode is untouched
	var flat FlatStrategy
	frame := &Frame{Device: dev, Camera: cam}
	reqs := g.collector.Requests()
	for i := range reqs {
		flat.Draw(frame, &reqs[i])
	}
}
