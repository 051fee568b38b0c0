package scene

import (
	"fmt"
	"strings"

	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
)

// AlphaMode controls how material alpha is interpreted.
type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

func (a AlphaMode) String() string {
	switch a {
	case AlphaMask:
		return "mask"
	case AlphaBlend:
		return "blend"
	default:
		return "opaque"
	}
}

// ParseAlphaMode accepts opaque, mask or blend (case-insensitive).
func ParseAlphaMode(s string) (AlphaMode, error) {
	switch strings.ToLower(s) {
	case "", "opaque":
		return AlphaOpaque, nil
	case "mask":
		return AlphaMask, nil
	case "blend":
		return AlphaBlend, nil
	}
	return AlphaOpaque, fmt.Errorf("unknown alpha mode %q", s)
}

// TextureChannel indexes Material.Textures.
type TextureChannel int

const (
	ChannelAlbedo TextureChannel = iota
	ChannelEmissive
	ChannelMetallicRoughness
	ChannelNormal

	NumChannels
)

// Material describes the surface of a drawable node.
type Material struct {
	Name        string
	AlphaMode   AlphaMode
	AlphaCutoff float64
	TwoSided    bool
	Color       math3d.Vec4
	Emissive    math3d.Vec3
	Textures    [NumChannels]gfx.Texture
}

// NewMaterial returns an opaque white material with the glTF default cutoff.
func NewMaterial(name string) *Material {
	return &Material{
		Name:        name,
		AlphaCutoff: 0.5,
		Color:       math3d.V4(1, 1, 1, 1),
	}
}

// Texture returns the texture bound to ch, or nil.
func (m *Material) Texture(ch TextureChannel) gfx.Texture {
	if ch < 0 || ch >= NumChannels {
		return nil
	}
	return m.Textures[ch]
}
