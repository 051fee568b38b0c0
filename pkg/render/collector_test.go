package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/gfx/gfxtest"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

// cubeNode returns a node holding a 2-unit cube at pos.
func cubeNode(t testing.TB, dev gfx.Device, name string, pos math3d.Vec3, mat *scene.Material) *scene.Node {
	t.Helper()
	mesh, err := dev.NewMesh(gfx.CubeData(2))
	require.NoError(t, err)
	n := scene.NewNode(name)
	n.Mesh, n.Material = mesh, mat
	n.Local = math3d.Translate(pos)
	return n
}

func TestCollectCullsOutsideFrustum(t *testing.T) {
	dev := gfxtest.NewRecorder(64, 48)
	mat := scene.NewMaterial("m")
	s := scene.New()
	s.Add(
		scene.NewPrefab("front", cubeNode(t, dev, "front", math3d.V3(0, 0, 0), mat)),
		scene.NewPrefab("behind", cubeNode(t, dev, "behind", math3d.V3(0, 0, 50), mat)),
		scene.NewPrefab("aside", cubeNode(t, dev, "aside", math3d.V3(500, 0, 0), mat)),
	)

	var c Collector
	c.Collect(s, NewCamera())

	reqs := c.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, math3d.V3(0, 0, 0), reqs[0].Bounds.Center)
	assert.Equal(t, math3d.Splat3(1), reqs[0].Bounds.HalfSize)
	assert.InDelta(t, 10, reqs[0].Distance, 1e-12)
	assert.Same(t, mat, reqs[0].Material)
}

func TestCollectComposesTransforms(t *testing.T) {
	dev := gfxtest.NewRecorder(64, 48)
	mat := scene.NewMaterial("m")
	root := cubeNode(t, dev, "root", math3d.V3(1, 0, 0), mat)
	child := cubeNode(t, dev, "child", math3d.V3(0, 2, 0), mat)
	root.AddChild(child)

	s := scene.New()
	s.Add(scene.NewPrefab("p", root))

	var c Collector
	c.Collect(s, NewCamera())

	reqs := c.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, math3d.V3(1, 0, 0), reqs[0].Model.Translation())
	assert.Equal(t, math3d.V3(1, 2, 0), reqs[1].Model.Translation())
	assert.Equal(t, child.GlobalMatrix(), reqs[1].Model)

	// requests hold a copy of the transform
	child.Local = math3d.Translate(math3d.V3(0, -3, 0))
	assert.Equal(t, math3d.V3(1, 2, 0), reqs[1].Model.Translation())
}

func TestCollectVisibility(t *testing.T) {
	dev := gfxtest.NewRecorder(64, 48)
	mat := scene.NewMaterial("m")

	build := func() (*scene.Scene, *scene.Node) {
		root := cubeNode(t, dev, "root", math3d.Zero3(), mat)
		root.AddChild(cubeNode(t, dev, "child", math3d.V3(0, 1, 0), mat))
		s := scene.New()
		s.Add(scene.NewPrefab("p", root))
		return s, root
	}

	t.Run("hidden entity", func(t *testing.T) {
		s, _ := build()
		s.Entities[0].SetVisible(false)
		l := scene.NewLightEntity("sun", scene.NewLight(scene.LightDirectional))
		l.SetVisible(false)
		s.Add(l)

		var c Collector
		c.Collect(s, NewCamera())
		assert.Empty(t, c.Requests())
		assert.Empty(t, c.Lights())
	})

	t.Run("hidden node keeps children", func(t *testing.T) {
		s, root := build()
		root.Visible = false

		var c Collector
		c.Collect(s, NewCamera())
		require.Len(t, c.Requests(), 1)
		assert.Equal(t, math3d.V3(0, 1, 0), c.Requests()[0].Model.Translation())
	})

	t.Run("hidden node pruned", func(t *testing.T) {
		s, root := build()
		root.Visible = false

		c := Collector{SkipHiddenSubtrees: true}
		c.Collect(s, NewCamera())
		assert.Empty(t, c.Requests())
	})
}

func TestCollectSkipsIncompleteNodes(t *testing.T) {
	dev := gfxtest.NewRecorder(64, 48)
	noMat := cubeNode(t, dev, "no material", math3d.Zero3(), nil)
	noMesh := scene.NewNode("no mesh")
	noMesh.Material = scene.NewMaterial("m")
	noMat.AddChild(noMesh)

	s := scene.New()
	s.Add(scene.NewPrefab("p", noMat), scene.NewPrefab("empty", nil))

	var c Collector
	c.Collect(s, NewCamera())
	assert.Empty(t, c.Requests())
}

func TestCollectReplacesListsEachFrame(t *testing.T) {
	dev := gfxtest.NewRecorder(64, 48)
	mat := scene.NewMaterial("m")
	s := scene.New()
	cube := scene.NewPrefab("cube", cubeNode(t, dev, "cube", math3d.Zero3(), mat))
	sun := scene.NewLightEntity("sun", scene.NewLight(scene.LightDirectional))
	lamp := scene.NewLightEntity("lamp", scene.NewLight(scene.LightPoint))
	s.Add(cube, sun, lamp)

	var c Collector
	cam := NewCamera()
	c.Collect(s, cam)
	require.Len(t, c.Requests(), 1)
	require.Equal(t, []*scene.Light{sun.Light, lamp.Light}, c.Lights())

	require.True(t, s.Remove(sun.ID()))
	cube.SetVisible(false)
	c.Collect(s, cam)
	assert.Empty(t, c.Requests())
	assert.Equal(t, []*scene.Light{lamp.Light}, c.Lights())
}
