package scene

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
)

type vec3 math3d.Vec3

func (v *vec3) UnmarshalYAML(n *yaml.Node) error {
	var f []float64
	if err := n.Decode(&f); err != nil {
		return err
	}
	if len(f) != 3 {
		return fmt.Errorf("line %d: expected 3 components, got %d", n.Line, len(f))
	}
	*v = vec3{f[0], f[1], f[2]}
	return nil
}

type vec4 math3d.Vec4

func (v *vec4) UnmarshalYAML(n *yaml.Node) error {
	var f []float64
	if err := n.Decode(&f); err != nil {
		return err
	}
	switch len(f) {
	case 3:
		f = append(f, 1)
	case 4:
	default:
		return fmt.Errorf("line %d: expected 3 or 4 components, got %d", n.Line, len(f))
	}
	*v = vec4{f[0], f[1], f[2], f[3]}
	return nil
}

type sceneFile struct {
	Background *vec3         `yaml:"background"`
	Ambient    *vec3         `yaml:"ambient"`
	Skybox     string        `yaml:"skybox"`
	Entities   []entityEntry `yaml:"entities"`
}

type materialEntry struct {
	Color       vec4    `yaml:"color"`
	Emissive    vec3    `yaml:"emissive"`
	AlphaMode   string  `yaml:"alpha_mode"`
	AlphaCutoff float64 `yaml:"alpha_cutoff"`
	TwoSided    bool    `yaml:"two_sided"`
	Texture     string  `yaml:"texture"`
}

type entityEntry struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Visible  bool   `yaml:"visible"`
	Position vec3   `yaml:"position"`
	Rotation vec3   `yaml:"rotation"`
	Scale    vec3   `yaml:"scale"`

	// prefab
	Filename  string         `yaml:"filename"`
	Primitive string         `yaml:"primitive"`
	Size      float64        `yaml:"size"`
	Material  *materialEntry `yaml:"material"`

	// light
	LightType   string    `yaml:"light_type"`
	Color       vec3      `yaml:"color"`
	Intensity   float64   `yaml:"intensity"`
	NearDist    float64   `yaml:"near_dist"`
	MaxDist     float64   `yaml:"max_dist"`
	CastShadows bool      `yaml:"cast_shadows"`
	ShadowBias  float64   `yaml:"shadow_bias"`
	ConeAngles  []float64 `yaml:"cone_angles"`
	Area        float64   `yaml:"area"`
}

// UnmarshalYAML decodes on top of the defaults, so omitted keys keep them.
func (e *entityEntry) UnmarshalYAML(n *yaml.Node) error {
	type plain entityEntry
	def := NewLight(LightPoint)
	p := plain{
		Visible:    true,
		Scale:      vec3{1, 1, 1},
		Size:       1,
		Color:      vec3(def.Color),
		Intensity:  def.Intensity,
		NearDist:   def.NearDistance,
		MaxDist:    def.MaxDistance,
		ShadowBias: def.ShadowBias,
		ConeAngles: []float64{def.ConeAngles.X, def.ConeAngles.Y},
		Area:       def.Area,
	}
	if err := n.Decode(&p); err != nil {
		return err
	}
	*e = entityEntry(p)
	return nil
}

func (m *materialEntry) UnmarshalYAML(n *yaml.Node) error {
	type plain materialEntry
	p := plain{Color: vec4{1, 1, 1, 1}, AlphaCutoff: 0.5}
	if err := n.Decode(&p); err != nil {
		return err
	}
	*m = materialEntry(p)
	return nil
}

// Load reads a YAML scene description. Relative asset paths resolve
// against the file's directory.
func Load(dev gfx.Device, path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return Parse(dev, data, filepath.Dir(path))
}

// Parse builds a scene from YAML data, uploading meshes and textures to dev.
func Parse(dev gfx.Device, data []byte, dir string) (*Scene, error) {
	var f sceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	s := New()
	if f.Background != nil {
		s.Background = math3d.Vec3(*f.Background)
	}
	if f.Ambient != nil {
		s.Ambient = math3d.Vec3(*f.Ambient)
	}
	if f.Skybox != "" {
		img, err := decodeImage(resolve(dir, f.Skybox))
		if err != nil {
			return nil, fmt.Errorf("skybox: %w", err)
		}
		s.Skybox = dev.NewTexture(img)
	}
	for i, ent := range f.Entities {
		e, err := ent.build(dev, dir)
		if err != nil {
			return nil, fmt.Errorf("entity %d (%s): %w", i, ent.Name, err)
		}
		e.SetVisible(ent.Visible)
		s.Add(e)
	}
	return s, nil
}

func (e *entityEntry) transform() math3d.Mat4 {
	return math3d.TRS(math3d.Vec3(e.Position), math3d.EulerDegrees(math3d.Vec3(e.Rotation)), math3d.Vec3(e.Scale))
}

func (e *entityEntry) build(dev gfx.Device, dir string) (Entity, error) {
	switch e.Type {
	case "prefab":
		return e.buildPrefab(dev, dir)
	case "light":
		return e.buildLight()
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, e.Type)
}

func (e *entityEntry) buildPrefab(dev gfx.Device, dir string) (Entity, error) {
	var root *Node
	switch {
	case e.Filename != "":
		loaded, err := NewGLTFLoader(dev).Load(resolve(dir, e.Filename))
		if err != nil {
			return nil, err
		}
		root = loaded
		if e.Material != nil {
			mat, err := e.Material.build(dev, dir, e.Name)
			if err != nil {
				return nil, err
			}
			root.Walk(func(n *Node) {
				if n.Mesh != nil {
					n.Material = mat
				}
			})
		}
	case e.Primitive != "":
		data, err := primitiveData(e.Primitive, e.Size)
		if err != nil {
			return nil, err
		}
		mesh, err := dev.NewMesh(data)
		if err != nil {
			return nil, err
		}
		mat := NewMaterial(e.Name)
		if e.Material != nil {
			if mat, err = e.Material.build(dev, dir, e.Name); err != nil {
				return nil, err
			}
		}
		root = NewNode(e.Name)
		root.Mesh = mesh
		root.Material = mat
	default:
		return nil, fmt.Errorf("prefab needs filename or primitive")
	}
	root.Local = e.transform()
	p := NewPrefab(e.Name, root)
	p.Filename = e.Filename
	return p, nil
}

func (m *materialEntry) build(dev gfx.Device, dir, name string) (*Material, error) {
	mode, err := ParseAlphaMode(m.AlphaMode)
	if err != nil {
		return nil, err
	}
	mat := NewMaterial(name)
	mat.AlphaMode = mode
	mat.AlphaCutoff = m.AlphaCutoff
	mat.TwoSided = m.TwoSided
	mat.Color = math3d.Vec4(m.Color)
	mat.Emissive = math3d.Vec3(m.Emissive)
	if m.Texture != "" {
		img, err := decodeImage(resolve(dir, m.Texture))
		if err != nil {
			return nil, fmt.Errorf("material texture: %w", err)
		}
		mat.Textures[ChannelAlbedo] = dev.NewTexture(img)
	}
	return mat, nil
}

func primitiveData(kind string, size float64) (*gfx.MeshData, error) {
	switch kind {
	case "cube":
		return gfx.CubeData(size), nil
	case "plane":
		return gfx.PlaneData(size), nil
	case "sphere":
		return gfx.SphereData(size/2, 16, 24), nil
	}
	return nil, fmt.Errorf("unknown primitive %q", kind)
}

func (e *entityEntry) buildLight() (Entity, error) {
	t, err := ParseLightType(e.LightType)
	if err != nil {
		return nil, err
	}
	if len(e.ConeAngles) != 2 {
		return nil, fmt.Errorf("cone_angles needs 2 values, got %d", len(e.ConeAngles))
	}
	l := NewLight(t)
	l.Color = math3d.Vec3(e.Color)
	l.Intensity = e.Intensity
	l.NearDistance = e.NearDist
	l.MaxDistance = e.MaxDist
	l.CastShadows = e.CastShadows
	l.ShadowBias = e.ShadowBias
	l.ConeAngles = math3d.V2(e.ConeAngles[0], e.ConeAngles[1])
	l.Area = e.Area
	l.Model = math3d.TRS(math3d.Vec3(e.Position), math3d.EulerDegrees(math3d.Vec3(e.Rotation)), math3d.Splat3(1))
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return NewLightEntity(e.Name, l), nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
