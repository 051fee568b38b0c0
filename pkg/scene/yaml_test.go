package scene

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/lumen/pkg/gfx/gfxtest"
	"github.com/taigrr/lumen/pkg/math3d"
)

const testScene = `
background: [0.2, 0.3, 0.4]
ambient: [0.1, 0.1, 0.1]
entities:
  - name: floor
    type: prefab
    primitive: plane
    size: 10
    material: {color: [0.5, 0.5, 0.5], two_sided: true}
  - name: glass
    type: prefab
    primitive: cube
    position: [0, 1, 0]
    rotation: [0, 90, 0]
    scale: [2, 2, 2]
    material: {color: [1, 1, 1, 0.5], alpha_mode: blend}
  - name: lamp
    type: light
    light_type: spot
    visible: false
    position: [0, 5, 0]
    rotation: [90, 0, 0]
    color: [1, 0.9, 0.8]
    intensity: 2
    max_dist: 20
    cast_shadows: true
    cone_angles: [15, 25]
`

func TestParseScene(t *testing.T) {
	rec := gfxtest.NewRecorder(64, 64)
	s, err := Parse(rec, []byte(testScene), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if s.Background != math3d.V3(0.2, 0.3, 0.4) {
		t.Errorf("background = %v", s.Background)
	}
	if len(s.Entities) != 3 {
		t.Fatalf("entities = %d, want 3", len(s.Entities))
	}

	floor, ok := s.Find("floor").(*PrefabEntity)
	if !ok {
		t.Fatal("floor is not a prefab")
	}
	if !floor.Root.Drawable() || !floor.Root.Material.TwoSided {
		t.Error("floor should be a drawable two-sided node")
	}
	if floor.Root.Material.Color != math3d.V4(0.5, 0.5, 0.5, 1) {
		t.Errorf("floor color = %v, want alpha filled to 1", floor.Root.Material.Color)
	}

	glass := s.Find("glass").(*PrefabEntity)
	if glass.Root.Material.AlphaMode != AlphaBlend {
		t.Errorf("glass alpha mode = %v", glass.Root.Material.AlphaMode)
	}
	if p := glass.Root.GlobalMatrix().Translation(); p != math3d.V3(0, 1, 0) {
		t.Errorf("glass position = %v", p)
	}
	// 90 degrees about Y maps +X to -Z, scaled by 2
	if x := glass.Root.Local.RotateVector(math3d.V3(1, 0, 0)); x.Distance(math3d.V3(0, 0, -2)) > 1e-9 {
		t.Errorf("glass +X axis = %v", x)
	}

	lamp := s.Find("lamp").(*LightEntity)
	if lamp.Visible() {
		t.Error("lamp should be hidden")
	}
	l := lamp.Light
	if l.Type != LightSpot || l.Intensity != 2 || l.MaxDistance != 20 || !l.CastShadows {
		t.Errorf("lamp = %+v", l)
	}
	if l.ConeAngles != math3d.V2(15, 25) {
		t.Errorf("cone = %v", l.ConeAngles)
	}
	// unset keys keep their defaults
	if l.NearDistance != 0.1 || l.ShadowBias != 0.001 {
		t.Errorf("near=%v bias=%v, want defaults", l.NearDistance, l.ShadowBias)
	}
	if f := l.Forward(); f.Distance(math3d.V3(0, -1, 0)) > 1e-9 {
		t.Errorf("lamp forward = %v", f)
	}
}

func TestParseSceneErrors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		target error
		substr string
	}{
		{
			name:   "unknown entity type",
			yaml:   "entities:\n  - {name: x, type: camera}\n",
			target: ErrUnknownEntityType,
		},
		{
			name:   "unknown light type",
			yaml:   "entities:\n  - {name: x, type: light, light_type: area}\n",
			target: ErrUnknownLightType,
		},
		{
			name:   "prefab without geometry",
			yaml:   "entities:\n  - {name: x, type: prefab}\n",
			substr: "filename or primitive",
		},
		{
			name:   "unknown primitive",
			yaml:   "entities:\n  - {name: x, type: prefab, primitive: torus}\n",
			substr: "torus",
		},
		{
			name:   "bad vector",
			yaml:   "background: [1, 2]\n",
			substr: "3 components",
		},
		{
			name:   "bad light range",
			yaml:   "entities:\n  - {name: x, type: light, light_type: point, near_dist: 5, max_dist: 1}\n",
			substr: "range",
		},
		{
			name:   "missing skybox",
			yaml:   "skybox: nope.png\n",
			substr: "skybox",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(gfxtest.NewRecorder(8, 8), []byte(tt.yaml), t.TempDir())
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
			if tt.substr != "" && !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("err = %q, want it to mention %q", err, tt.substr)
			}
		})
	}
}

func TestLoadSceneResolvesAssets(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	f, err := os.Create(filepath.Join(dir, "sky.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	doc := "skybox: sky.png\nentities:\n  - {name: ball, type: prefab, primitive: sphere, material: {texture: sky.png}}\n"
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(gfxtest.NewRecorder(8, 8), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Skybox == nil {
		t.Fatal("skybox not loaded")
	}
	if w, h := s.Skybox.Size(); w != 4 || h != 2 {
		t.Errorf("skybox size = %dx%d", w, h)
	}
	ball := s.Find("ball").(*PrefabEntity)
	if ball.Root.Material.Texture(ChannelAlbedo) == nil {
		t.Error("albedo texture not loaded")
	}
}

func TestLoadSceneMissingFile(t *testing.T) {
	if _, err := Load(gfxtest.NewRecorder(8, 8), "/nonexistent/scene.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
