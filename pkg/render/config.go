package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ShadingMode selects the strategy used for the main pass.
type ShadingMode int

const (
	ModeFlat ShadingMode = iota
	ModeTextured
	ModeMultiPass
	ModeSinglePass

	numModes
)

var modeNames = [numModes]string{"flat", "textured", "multipass", "singlepass"}

func (m ShadingMode) String() string {
	if m < 0 || m >= numModes {
		return fmt.Sprintf("ShadingMode(%d)", int(m))
	}
	return modeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m ShadingMode) MarshalText() ([]byte, error) {
	if m < 0 || m >= numModes {
		return nil, fmt.Errorf("invalid shading mode %d", int(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ShadingMode) UnmarshalText(b []byte) error {
	s := strings.ToLower(string(b))
	for i, n := range modeNames {
		if n == s {
			*m = ShadingMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown shading mode %q", s)
}

// Next returns the following mode, wrapping around.
func (m ShadingMode) Next() ShadingMode {
	return (m + 1) % numModes
}

// Config holds renderer settings.
type Config struct {
	Mode           ShadingMode `toml:"mode"`
	Wireframe      bool        `toml:"wireframe"`
	Boundaries     bool        `toml:"boundaries"`
	ShowShadowMaps bool        `toml:"show_shadowmaps"`
	ShowSpecular   bool        `toml:"show_specular"`
	ShadowMapSize  int         `toml:"shadow_map_size"`
	ShadowTileSize int         `toml:"shadow_tile_size"`

	// SkipHiddenSubtrees prunes the children of invisible nodes during
	// collection. Off by default: an invisible node hides only itself.
	SkipHiddenSubtrees bool `toml:"skip_hidden_subtrees"`

	// ShaderAtlas is the path of the program atlas. Empty uses the built-in one.
	ShaderAtlas string `toml:"shader_atlas"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeMultiPass,
		ShadowMapSize:  DefaultShadowMapSize,
		ShadowTileSize: 128,
	}
}

// ParseConfig decodes TOML on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a TOML config file. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.ShadowMapSize <= 0 {
		return fmt.Errorf("shadow_map_size must be positive, got %d", c.ShadowMapSize)
	}
	if c.ShadowTileSize <= 0 {
		return fmt.Errorf("shadow_tile_size must be positive, got %d", c.ShadowTileSize)
	}
	return nil
}
