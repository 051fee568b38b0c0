package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/lumen/pkg/gfx/soft"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/render"
	"github.com/taigrr/lumen/pkg/scene"
)

func writeScene(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func testDevice(t *testing.T) *soft.Device {
	t.Helper()
	dev, err := soft.New(16, 16, soft.DefaultAtlas())
	require.NoError(t, err)
	return dev
}

func TestLoadSceneFormats(t *testing.T) {
	dev := testDevice(t)

	path := writeScene(t, "entities:\n  - {name: box, type: prefab, primitive: cube, size: 2}\n")
	s, err := loadScene(dev, path)
	require.NoError(t, err)
	assert.NotNil(t, s.Find("box"))

	_, err = loadScene(dev, "model.obj")
	assert.ErrorContains(t, err, "unsupported scene format")

	_, err = loadScene(dev, filepath.Join(t.TempDir(), "missing.glb"))
	assert.Error(t, err)
}

func TestSceneBounds(t *testing.T) {
	dev := testDevice(t)

	_, ok := sceneBounds(scene.New())
	assert.False(t, ok)

	s, err := loadScene(dev, writeScene(t, `entities:
  - {name: a, type: prefab, primitive: cube, size: 2, position: [4, 0, 0]}
  - {name: b, type: prefab, primitive: cube, size: 2, position: [0, 0, -2]}
`))
	require.NoError(t, err)
	box, ok := sceneBounds(s)
	require.True(t, ok)
	assert.InDelta(t, 0, box.Min().Distance(math3d.V3(-1, -1, -3)), 1e-9)
	assert.InDelta(t, 0, box.Max().Distance(math3d.V3(5, 1, 1)), 1e-9)
}

func TestFrameFitsScene(t *testing.T) {
	dev := testDevice(t)
	s, err := loadScene(dev, writeScene(t, "entities:\n  - {name: box, type: prefab, primitive: cube, size: 2, position: [0, 3, 0]}\n"))
	require.NoError(t, err)

	cam := render.NewCamera()
	dist := frame(s, cam)
	r := math.Sqrt(3)
	assert.InDelta(t, 0, cam.Center.Distance(math3d.V3(0, 3, 0)), 1e-9)
	assert.InDelta(t, r/math.Sin(cam.FOV/2)*1.1, dist, 1e-9)
	assert.Less(t, cam.Near, r)
	assert.Greater(t, cam.Far, dist+r)

	empty := render.NewCamera()
	assert.Equal(t, 10.0, frame(scene.New(), empty))
}

func TestAddSunAboveScene(t *testing.T) {
	dev := testDevice(t)
	s, err := loadScene(dev, writeScene(t, "entities:\n  - {name: box, type: prefab, primitive: cube, size: 2}\n"))
	require.NoError(t, err)
	require.Empty(t, s.Lights())

	addSun(s)
	lights := s.Lights()
	require.Len(t, lights, 1)
	sun := lights[0]
	r := math.Sqrt(3)
	assert.Equal(t, scene.LightDirectional, sun.Type)
	assert.True(t, sun.CastShadows)
	assert.InDelta(t, 0, sun.Forward().Distance(math3d.V3(0, -1, 0)), 1e-9)
	assert.InDelta(t, 0, sun.Position().Distance(math3d.V3(0, 2*r+0.5, 0)), 1e-9)
	assert.Greater(t, sun.MaxDistance, 2*r+0.5+r)
}

func TestAspect(t *testing.T) {
	assert.InDelta(t, 80.0/48.0, aspect(80, 24), 1e-12)
	assert.Equal(t, 1.0, aspect(80, 0))
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger(false, "")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))

	path := filepath.Join(t.TempDir(), "lumen.log")
	l, err = newLogger(true, path)
	require.NoError(t, err)
	l.Debug("hello")
	_ = l.Sync()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestSnapshotWritesPNG(t *testing.T) {
	path := writeScene(t, "entities:\n  - {name: box, type: prefab, primitive: cube, size: 2}\n")
	out := filepath.Join(t.TempDir(), "out.png")

	err := snapshot(&options{}, snapshotOptions{output: out, width: 32, height: 24, yaw: 30, pitch: 20}, path)
	require.NoError(t, err)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	err = snapshot(&options{}, snapshotOptions{output: out, width: 0, height: 24}, path)
	assert.ErrorContains(t, err, "invalid image size")

	err = snapshot(&options{mode: "bogus"}, snapshotOptions{output: out, width: 8, height: 8}, path)
	assert.Error(t, err)
}
