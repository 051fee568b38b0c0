package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
)

// ErrUnknownLightType is returned for light type names that do not exist.
var ErrUnknownLightType = errors.New("unknown light type")

// LightType enumerates light kinds. The numeric values are shader-visible.
type LightType int

const (
	LightNone LightType = iota
	LightPoint
	LightSpot
	LightDirectional
)

func (t LightType) String() string {
	switch t {
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	case LightDirectional:
		return "directional"
	default:
		return "none"
	}
}

// ParseLightType parses none, point, spot or directional.
func ParseLightType(s string) (LightType, error) {
	switch strings.ToLower(s) {
	case "none":
		return LightNone, nil
	case "point":
		return LightPoint, nil
	case "spot":
		return LightSpot, nil
	case "directional":
		return LightDirectional, nil
	}
	return LightNone, fmt.Errorf("%w: %q", ErrUnknownLightType, s)
}

// Light is a scene light. The renderer reads the parameters and writes only
// the shadow fields.
type Light struct {
	Type         LightType
	Intensity    float64
	Color        math3d.Vec3
	NearDistance float64
	MaxDistance  float64
	CastShadows  bool
	ShadowBias   float64
	ConeAngles   math3d.Vec2 // inner, outer in degrees
	Area         float64     // orthographic shadow extent for directional lights

	// Model is the light's world transform.
	Model math3d.Mat4

	// Shadow state, owned by the shadow-map generator.
	ShadowTarget         gfx.RenderTarget
	ShadowMap            gfx.Texture
	ShadowViewProjection math3d.Mat4
}

// NewLight returns a light of type t with unit white intensity.
func NewLight(t LightType) *Light {
	return &Light{
		Type:         t,
		Intensity:    1,
		Color:        math3d.V3(1, 1, 1),
		NearDistance: 0.1,
		MaxDistance:  100,
		ShadowBias:   0.001,
		ConeAngles:   math3d.V2(20, 30),
		Area:         50,
		Model:        math3d.Identity(),
	}
}

// Position is the world-space origin of the light.
func (l *Light) Position() math3d.Vec3 {
	return l.Model.Translation()
}

// Forward is the light's local +Z axis in world space.
func (l *Light) Forward() math3d.Vec3 {
	return l.Model.RotateVector(math3d.V3(0, 0, 1)).Normalize()
}

// Validate checks the parameter ranges.
func (l *Light) Validate() error {
	if l.Intensity < 0 {
		return fmt.Errorf("light intensity %v < 0", l.Intensity)
	}
	if l.NearDistance < 0 || l.MaxDistance <= l.NearDistance {
		return fmt.Errorf("light range [%v, %v] invalid", l.NearDistance, l.MaxDistance)
	}
	if l.Type == LightSpot {
		in, out := l.ConeAngles.X, l.ConeAngles.Y
		if in < 0 || in > out || out > 180 {
			return fmt.Errorf("spot cone (%v, %v) invalid", in, out)
		}
	}
	return nil
}
