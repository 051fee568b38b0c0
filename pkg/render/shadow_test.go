package render

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/gfx/gfxtest"
	"github.com/taigrr/lumen/pkg/gfx/soft"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

// sunAt returns a shadow-casting directional light at pos looking down.
func sunAt(pos math3d.Vec3) *scene.Light {
	l := scene.NewLight(scene.LightDirectional)
	l.CastShadows = true
	l.Model = math3d.Translate(pos).Mul(math3d.EulerDegrees(math3d.V3(90, 0, 0)))
	return l
}

func TestShadowCaster(t *testing.T) {
	tests := []struct {
		typ    scene.LightType
		casts  bool
		expect bool
	}{
		{scene.LightDirectional, true, true},
		{scene.LightSpot, true, true},
		{scene.LightPoint, true, false},
		{scene.LightNone, true, false},
		{scene.LightDirectional, false, false},
	}
	for _, tc := range tests {
		l := scene.NewLight(tc.typ)
		l.CastShadows = tc.casts
		assert.Equal(t, tc.expect, ShadowCaster(l), "%v casts=%v", tc.typ, tc.casts)
	}
}

func TestShadowCameraDirectional(t *testing.T) {
	l := sunAt(math3d.V3(0, 20, 0))
	l.Area = 10
	l.MaxDistance = 60

	cam, ok := ShadowCamera(l)
	require.True(t, ok)
	assert.Equal(t, OrthographicProjection, cam.Projection)
	assert.InDelta(t, -5, cam.Left, 1e-12)
	assert.InDelta(t, 5, cam.Right, 1e-12)
	assert.InDelta(t, -5, cam.Bottom, 1e-12)
	assert.InDelta(t, 5, cam.Top, 1e-12)
	assert.InDelta(t, 0.1, cam.Near, 1e-12)
	assert.InDelta(t, 60, cam.Far, 1e-12)
	assertVecNear(t, math3d.V3(0, 20, 0), cam.Eye, 1e-12)
	assertVecNear(t, math3d.V3(0, -1, 0), cam.Forward(), 1e-12)
}

func TestShadowCameraSpot(t *testing.T) {
	l := scene.NewLight(scene.LightSpot)
	l.ConeAngles = math3d.V2(30, 45)
	l.NearDistance = 0.5
	l.MaxDistance = 40

	cam, ok := ShadowCamera(l)
	require.True(t, ok)
	assert.Equal(t, PerspectiveProjection, cam.Projection)
	assert.InDelta(t, math.Pi/2, cam.FOV, 1e-12)
	assert.InDelta(t, 1, cam.Aspect, 0)
	assert.InDelta(t, 0.5, cam.Near, 1e-12)
	assert.InDelta(t, 40, cam.Far, 1e-12)

	t.Run("clamped", func(t *testing.T) {
		l.ConeAngles = math3d.V2(90, 120)
		l.NearDistance = 0
		cam, _ := ShadowCamera(l)
		assert.InDelta(t, math3d.Radians(179), cam.FOV, 1e-12)
		assert.Greater(t, cam.Near, 0.0)
	})
}

func TestShadowCameraPointUnsupported(t *testing.T) {
	_, ok := ShadowCamera(scene.NewLight(scene.LightPoint))
	assert.False(t, ok)
}

func TestShadowCameraVerticalForward(t *testing.T) {
	for _, pitch := range []float64{90, -90} {
		l := scene.NewLight(scene.LightDirectional)
		l.Model = math3d.EulerDegrees(math3d.V3(pitch, 0, 0))
		require.InDelta(t, 1, math.Abs(l.Forward().Y), 1e-12)

		cam, ok := ShadowCamera(l)
		require.True(t, ok)
		assert.True(t, cam.ViewProjectionMatrix().IsFinite(), "pitch %v", pitch)
		assert.Equal(t, math3d.Right(), cam.Up)
	}
}

func TestShadowGeneratorAllocatesOnce(t *testing.T) {
	dev := gfxtest.NewRecorder(64, 48)
	s := scene.New()
	s.Add(scene.NewPrefab("ground", cubeNode(t, dev, "ground", math3d.Zero3(), scene.NewMaterial("m"))))
	sun := sunAt(math3d.V3(0, 10, 0))
	lamp := pointLight(math3d.V3(0, 3, 0))
	lamp.CastShadows = true
	idle := sunAt(math3d.V3(0, 10, 0))
	idle.CastShadows = false

	g := NewShadowGenerator(64)
	for range 2 {
		g.Generate(dev, s, []*scene.Light{sun, lamp, idle})
	}

	require.NotNil(t, sun.ShadowTarget)
	rt := sun.ShadowTarget.(*gfxtest.RenderTarget)
	assert.Equal(t, 1, rt.Allocs)
	assert.Equal(t, 64, rt.Width)
	assert.Same(t, rt.DepthTexture(), sun.ShadowMap)

	cam, _ := ShadowCamera(sun)
	assert.Equal(t, cam.ViewProjectionMatrix(), sun.ShadowViewProjection)

	draws := dev.DrawsTo(rt)
	require.Len(t, draws, 2)
	for _, d := range draws {
		assert.Equal(t, ProgramFlat, d.Shader)
	}

	assert.Nil(t, lamp.ShadowTarget)
	assert.Nil(t, idle.ShadowTarget)
	assert.Equal(t, gfx.DefaultState(), dev.State())
	assert.Empty(t, dev.DrawsTo(nil))
}

func TestShadowGeneratorDefaultSize(t *testing.T) {
	assert.Equal(t, DefaultShadowMapSize, NewShadowGenerator(0).Size)
}

func TestShadowMapIsDeterministic(t *testing.T) {
	dev, err := soft.New(32, 32, soft.DefaultAtlas())
	require.NoError(t, err)

	ground, err := dev.NewMesh(gfx.PlaneData(10))
	require.NoError(t, err)
	floor := scene.NewNode("floor")
	floor.Mesh, floor.Material = ground, scene.NewMaterial("floor")
	floor.AddChild(cubeNode(t, dev, "box", math3d.V3(0, 1, 0), scene.NewMaterial("box")))

	s := scene.New()
	s.Add(scene.NewPrefab("set", floor))
	sun := sunAt(math3d.V3(0, 10, 0))
	sun.Area = 20

	g := NewShadowGenerator(32)
	g.Generate(dev, s, []*scene.Light{sun})
	first := slices.Clone(sun.ShadowMap.(*soft.Texture).Depth)
	g.Generate(dev, s, []*scene.Light{sun})
	second := sun.ShadowMap.(*soft.Texture).Depth

	require.Len(t, first, 32*32)
	assert.Equal(t, first, second)
	assert.Less(t, slices.Min(first), 1.0, "geometry reached the depth map")
}
