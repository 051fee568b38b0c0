package render

import (
	"go.uber.org/zap"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

// Program names looked up in the device's shader atlas.
const (
	ProgramFlat       = "flat"
	ProgramTexture    = "texture"
	ProgramLight      = "light"
	ProgramSinglePass = "singlepass"
	ProgramSkybox     = "skybox"
)

// alphaTestOff is the alpha cutoff uploaded for non-masked materials.
const alphaTestOff = 0.001

// Frame is the per-frame input shared by every draw.
type Frame struct {
	Device  gfx.Device
	Camera  *Camera
	Lights  []*scene.Light
	Ambient math3d.Vec3
	Time    float64

	Wireframe    bool
	ShowSpecular bool
}

// Strategy turns a draw request into device submissions.
type Strategy interface {
	Draw(f *Frame, req *DrawRequest)
}

// drawScope is the state shared by every strategy for the duration of one
// request: the enabled program and the guard restoring device state.
type drawScope struct {
	shader gfx.Shader
	guard  *gfx.StateGuard
}

// begin performs the common setup: skip empty requests and missing programs,
// pick blending, culling and fill from the material, enable depth testing
// and upload the transform and camera uniforms. The returned scope must be
// ended.
func begin(f *Frame, req *DrawRequest, program string) (drawScope, bool) {
	if req.Mesh == nil || req.Mesh.VertexCount() == 0 || req.Material == nil {
		Logger().Debug("skipping draw without geometry or material")
		return drawScope{}, false
	}
	sh := f.Device.Shader(program)
	if sh == nil {
		Logger().Debug("missing shading program", zap.String("program", program))
		return drawScope{}, false
	}

	guard := gfx.SaveState(f.Device)
	mat := req.Material
	guard.Update(func(s *gfx.State) {
		if mat.AlphaMode == scene.AlphaBlend {
			*s = s.AlphaBlend()
		} else {
			s.Blend = false
		}
		s.CullFace = !mat.TwoSided
		s.DepthTest = true
		if f.Wireframe {
			s.Fill = gfx.FillLine
		}
	})

	sh.Enable()
	sh.SetMat4("u_model", req.Model)
	cameraToShader(sh, f.Camera)
	return drawScope{shader: sh, guard: guard}, true
}

func (d drawScope) end() {
	d.shader.Disable()
	d.guard.Restore()
}

func cameraToShader(sh gfx.Shader, cam *Camera) {
	sh.SetMat4("u_viewprojection", cam.ViewProjectionMatrix())
	sh.SetVec3("u_camera_position", cam.Eye)
}

// uploadMaterial sets the surface uniforms shared by the textured and lit programs.
func uploadMaterial(f *Frame, sh gfx.Shader, mat *scene.Material, textureName string) {
	sh.SetFloat("u_time", f.Time)
	sh.SetVec4("u_color", mat.Color)
	sh.SetTexture(textureName, textureOr(f.Device, mat.Texture(scene.ChannelAlbedo)), 0)

	cutoff := alphaTestOff
	if mat.AlphaMode == scene.AlphaMask {
		cutoff = mat.AlphaCutoff
	}
	sh.SetFloat("u_alpha_cutoff", cutoff)
}

// uploadEmissive sets the ambient and emissive terms, zeroed when on is false.
func uploadEmissive(f *Frame, sh gfx.Shader, mat *scene.Material, on bool) {
	ambient, emissive := f.Ambient, mat.Emissive
	if !on {
		ambient, emissive = math3d.Vec3{}, math3d.Vec3{}
	}
	sh.SetVec3("u_ambient_light", ambient)
	sh.SetVec3("u_emissive_factor", emissive)
	sh.SetTexture("u_emissive_texture", textureOr(f.Device, mat.Texture(scene.ChannelEmissive)), 1)
	sh.SetInt("u_show_specular", boolInt(f.ShowSpecular))
}

func textureOr(dev gfx.Device, t gfx.Texture) gfx.Texture {
	if t == nil {
		return dev.WhiteTexture()
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// NewStrategy returns the strategy for mode.
func NewStrategy(mode ShadingMode) Strategy {
	switch mode {
	case ModeTextured:
		return TexturedStrategy{}
	case ModeMultiPass:
		return &MultiPassStrategy{}
	case ModeSinglePass:
		return &SinglePassStrategy{MaxLights: MaxLights}
	default:
		return FlatStrategy{}
	}
}
