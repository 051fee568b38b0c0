package soft

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// ErrUnknownKernel is returned when an atlas names a kernel the device does not have.
var ErrUnknownKernel = errors.New("unknown shading kernel")

// Atlas maps program names to kernel names.
type Atlas map[string]string

// DefaultAtlas returns the built-in program set.
func DefaultAtlas() Atlas {
	return Atlas{
		"flat":       "flat",
		"texture":    "texture",
		"light":      "light",
		"singlepass": "singlepass",
		"skybox":     "skybox",
	}
}

type atlasFile struct {
	Programs map[string]string `toml:"programs"`
}

// ParseAtlas decodes a TOML atlas:
//
//	[programs]
//	flat = "flat"
//	light = "light"
func ParseAtlas(data []byte) (Atlas, error) {
	var f atlasFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse shader atlas: %w", err)
	}
	if len(f.Programs) == 0 {
		return nil, errors.New("parse shader atlas: no programs")
	}
	for _, name := range slices.Sorted(maps.Keys(f.Programs)) {
		if _, ok := kernels[f.Programs[name]]; !ok {
			return nil, fmt.Errorf("program %q: %w: %q", name, ErrUnknownKernel, f.Programs[name])
		}
	}
	return Atlas(f.Programs), nil
}

// LoadAtlas reads a TOML atlas from path. An empty path returns DefaultAtlas.
func LoadAtlas(path string) (Atlas, error) {
	if path == "" {
		return DefaultAtlas(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shader atlas: %w", err)
	}
	return ParseAtlas(data)
}

// Kernels returns the names of the built-in kernels, sorted.
func Kernels() []string {
	return slices.Sorted(maps.Keys(kernels))
}
