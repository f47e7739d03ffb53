// Package config holds the engine's global render settings: light clustering capacity,
// light probe resolutions and immediate-camera limits.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned by Load for files that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported settings format")

// Cluster configures the light clustering grid and its storage buffer capacities.
type Cluster struct {
	// GridSize is the number of cluster tiles along X, Y and Z (depth slices).
	GridSize [3]uint32 `toml:"grid_size" yaml:"grid_size"`
	// CullNumGroups is the compute dispatch size of the cluster cull pass.
	// Each component must divide the matching GridSize component.
	CullNumGroups [3]uint32 `toml:"cull_num_groups" yaml:"cull_num_groups"`
	// MaxLights is the capacity of the scene lights storage buffer.
	MaxLights uint32 `toml:"max_lights" yaml:"max_lights"`
	// MaxLightsPerTile bounds the light index list of a single tile.
	MaxLightsPerTile uint32 `toml:"max_lights_per_tile" yaml:"max_lights_per_tile"`
	// MaxProbes is the capacity of the scene light probe buffer, including the global probe.
	MaxProbes uint32 `toml:"max_probes" yaml:"max_probes"`
	// MaxProbesPerTile bounds the probe index list of a single tile.
	MaxProbesPerTile uint32 `toml:"max_probes_per_tile" yaml:"max_probes_per_tile"`
}

// NumTiles returns the total number of cluster tiles.
func (c Cluster) NumTiles() uint32 {
	return c.GridSize[0] * c.GridSize[1] * c.GridSize[2]
}

// LightProbe configures light probe texture resolutions.
type LightProbe struct {
	IrradianceResolution uint32 `toml:"irradiance_resolution" yaml:"irradiance_resolution"`
	SpecularResolution   uint32 `toml:"specular_resolution" yaml:"specular_resolution"`
	SpecularMipLevels    uint32 `toml:"specular_mip_levels" yaml:"specular_mip_levels"`
}

// Settings is the complete set of render settings.
type Settings struct {
	Cluster    Cluster    `toml:"cluster" yaml:"cluster"`
	LightProbe LightProbe `toml:"light_probe" yaml:"light_probe"`
	// MaxImmCameras is the number of immediate cameras besides the default one.
	MaxImmCameras uint32 `toml:"max_imm_cameras" yaml:"max_imm_cameras"`
	// Prepass is the default depth/normal pre-pass flag for new cameras.
	Prepass bool `toml:"prepass" yaml:"prepass"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Cluster: Cluster{
			GridSize:         [3]uint32{16, 8, 24},
			CullNumGroups:    [3]uint32{4, 4, 4},
			MaxLights:        1024,
			MaxLightsPerTile: 64,
			MaxProbes:        64,
			MaxProbesPerTile: 8,
		},
		LightProbe: LightProbe{
			IrradianceResolution: 32,
			SpecularResolution:   128,
			SpecularMipLevels:    5,
		},
		MaxImmCameras: 8,
	}
}

// Load reads settings from a TOML (.toml) or YAML (.yaml, .yml) file.
// Keys missing from the file keep their Default values.
//
// Parameters:
//   - path: the settings file path
//
// Returns:
//   - Settings: the merged, validated settings
//   - error: read, decode or validation failure
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	s, err := Decode(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings %s: %w", path, err)
	}
	return s, nil
}

// Decode parses settings from raw bytes in the given format ("toml", "yaml" or "yml").
//
// Parameters:
//   - data: the encoded settings
//   - format: the encoding name
//
// Returns:
//   - Settings: the merged, validated settings
//   - error: decode or validation failure
func Decode(data []byte, format string) (Settings, error) {
	s := Default()
	switch format {
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return Settings{}, fmt.Errorf("toml: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return Settings{}, fmt.Errorf("yaml: %w", err)
		}
	default:
		return Settings{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks that the settings describe a usable cluster grid.
func (s Settings) Validate() error {
	var errs []error
	c := s.Cluster
	for i, n := range c.GridSize {
		g := c.CullNumGroups[i]
		switch {
		case n == 0:
			errs = append(errs, fmt.Errorf("cluster grid size[%d] must be positive", i))
		case g == 0:
			errs = append(errs, fmt.Errorf("cluster cull groups[%d] must be positive", i))
		case n%g != 0:
			errs = append(errs, fmt.Errorf("cluster grid size[%d]=%d is not divisible by cull groups %d", i, n, g))
		}
	}
	if c.MaxLights == 0 || c.MaxLightsPerTile == 0 {
		errs = append(errs, errors.New("cluster light capacity must be positive"))
	}
	// probe 0 is the global probe
	if c.MaxProbes < 1 {
		errs = append(errs, errors.New("cluster probe capacity must be at least 1"))
	}
	return errors.Join(errs...)
}
