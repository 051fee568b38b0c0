package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/taigrr/lumen/pkg/gfx/soft"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/render"
	"github.com/taigrr/lumen/pkg/scene"
)

// newLogger builds the command logger. Without --verbose or --log-file
// nothing is logged, since the viewer owns the terminal.
func newLogger(verbose bool, path string) (*zap.Logger, error) {
	if !verbose && path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	if path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}
	return cfg.Build()
}

// setup loads the config and scene and builds a software device and
// renderer of the given framebuffer size.
func setup(opts *options, scenePath string, width, height int) (*soft.Device, *render.Renderer, *scene.Scene, error) {
	cfg, err := render.LoadConfig(opts.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if opts.mode != "" {
		if err := cfg.Mode.UnmarshalText([]byte(opts.mode)); err != nil {
			return nil, nil, nil, err
		}
	}

	atlas, err := soft.LoadAtlas(cfg.ShaderAtlas)
	if err != nil {
		return nil, nil, nil, err
	}
	dev, err := soft.New(width, height, atlas)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create device: %w", err)
	}
	r, err := render.New(dev, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	s, err := loadScene(dev, scenePath)
	if err != nil {
		return nil, nil, nil, err
	}
	return dev, r, s, nil
}

// loadScene reads a YAML scene description, or wraps a glTF model in a
// scene lit by a shadow-casting sun.
func loadScene(dev *soft.Device, path string) (*scene.Scene, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return scene.Load(dev, path)
	case ".glb", ".gltf":
		prefab, err := scene.LoadGLTF(dev, path)
		if err != nil {
			return nil, err
		}
		s := scene.New()
		s.Add(prefab)
		addSun(s)
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported scene format %q (use .yaml, .gltf or .glb)", ext)
	}
}

// addSun places a directional light straight above the scene bounds.
func addSun(s *scene.Scene) {
	box, ok := sceneBounds(s)
	if !ok {
		box = math3d.Box{HalfSize: math3d.Splat3(1)}
	}
	r := box.HalfSize.Len()

	sun := scene.NewLight(scene.LightDirectional)
	sun.CastShadows = true
	sun.Area = 4 * r
	sun.MaxDistance = 4*r + 1
	sun.Model = math3d.Translate(box.Center.Add(math3d.V3(0, 2*r+0.5, 0))).
		Mul(math3d.EulerDegrees(math3d.V3(90, 0, 0)))
	s.Add(scene.NewLightEntity("sun", sun))
}

// sceneBounds returns the world box enclosing every mesh in s.
func sceneBounds(s *scene.Scene) (math3d.Box, bool) {
	lo, hi := math3d.Splat3(math.Inf(1)), math3d.Splat3(math.Inf(-1))
	found := false
	s.Visit(scene.VisitorFuncs{Prefab: func(p *scene.PrefabEntity) {
		if p.Root == nil {
			return
		}
		p.Root.Walk(func(n *scene.Node) {
			if n.Mesh == nil {
				return
			}
			b := render.TransformBoundingBox(n.GlobalMatrix(), n.Mesh.Bounds())
			lo, hi = lo.Min(b.Min()), hi.Max(b.Max())
			found = true
		})
	}})
	if !found {
		return math3d.Box{}, false
	}
	return math3d.BoxFromMinMax(lo, hi), true
}

// frame points cam at the scene and returns a distance that fits it in view.
func frame(s *scene.Scene, cam *render.Camera) float64 {
	box, ok := sceneBounds(s)
	if !ok {
		cam.Center = math3d.Zero3()
		return 10
	}
	cam.Center = box.Center
	r := math.Max(box.HalfSize.Len(), 0.1)
	cam.Near = r * 0.01
	cam.Far = r * 100
	return r / math.Sin(cam.FOV/2) * 1.1
}
