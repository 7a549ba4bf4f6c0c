// Package config loads the arcroad command's settings.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/multierr"

	"honnef.co/go/arcroad"
)

// ErrInvalid is wrapped by every error returned by Validate.
var ErrInvalid = errors.New("config: invalid setting")

// Config represents the complete command configuration.
type Config struct {
	Fit    FitConfig    `yaml:"fit"`
	Mesh   MeshConfig   `yaml:"mesh"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// FitConfig mirrors arcroad.FitOptions.
type FitConfig struct {
	CullProximity     float64 `yaml:"cull_proximity"`
	RemoveRedundant   bool    `yaml:"remove_redundant"`
	MinRadiusFactor   float64 `yaml:"min_radius_factor"`
	RedundantAngle    float64 `yaml:"redundant_angle"`
	RedundantDistance float64 `yaml:"redundant_distance"`
}

// MeshConfig holds ribbon settings.
type MeshConfig struct {
	Resolution     float64   `yaml:"resolution"`
	Offsets        []float64 `yaml:"offsets"`
	Material       string    `yaml:"material"`
	ReverseTexture bool      `yaml:"reverse_texture"`
}

// OutputConfig holds settings for the output formats.
type OutputConfig struct {
	Name         string    `yaml:"name"`
	SVGPrecision int       `yaml:"svg_precision"`
	PNGWidth     int       `yaml:"png_width"`
	PNGHeight    int       `yaml:"png_height"`
	Edges        []float64 `yaml:"edges"`
	// Origin is the longitude and latitude of the local origin for
	// geographic output.
	Origin []float64 `yaml:"origin"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Development bool `yaml:"development"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"fit.cull_proximity":     0.0,
		"fit.remove_redundant":   true,
		"fit.min_radius_factor":  1e-3,
		"fit.redundant_angle":    1e-3,
		"fit.redundant_distance": 1e-3,
		"mesh.resolution":        0.05,
		"mesh.offsets":           []float64{-3.5, 3.5},
		"mesh.material":          "asphalt",
		"mesh.reverse_texture":   false,
		"output.name":            "road",
		"output.svg_precision":   6,
		"output.png_width":       800,
		"output.png_height":      600,
		"output.edges":           []float64{},
		"output.origin":          []float64{0, 0},
		"log.development":        false,
	}
}

// DefaultConfig returns the configuration used when no file or overrides
// are given.
func DefaultConfig() *Config {
	cfg, err := Load("", nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the defaults, then the YAML file at path if path is not empty,
// then overrides, which are keyed like "mesh.resolution". Later sources
// win. The result is validated.
func Load(path string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, err
		}
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}

// Validate reports every setting that is out of range.
func (c *Config) Validate() error {
	var err error
	if c.Fit.CullProximity < 0 {
		err = multierr.Append(err, invalid("fit.cull_proximity %g is negative", c.Fit.CullProximity))
	}
	if c.Fit.MinRadiusFactor < 0 {
		err = multierr.Append(err, invalid("fit.min_radius_factor %g is negative", c.Fit.MinRadiusFactor))
	}
	if c.Fit.RedundantAngle < 0 || c.Fit.RedundantDistance < 0 {
		err = multierr.Append(err, invalid("redundancy tolerances must not be negative"))
	}
	if !positive(c.Mesh.Resolution) {
		err = multierr.Append(err, invalid("mesh.resolution %g is not positive", c.Mesh.Resolution))
	}
	if len(c.Mesh.Offsets) != 2 {
		err = multierr.Append(err, invalid("mesh.offsets has %d values, want 2", len(c.Mesh.Offsets)))
	}
	if c.Output.SVGPrecision < 0 {
		err = multierr.Append(err, invalid("output.svg_precision %d is negative", c.Output.SVGPrecision))
	}
	if c.Output.PNGWidth <= 0 || c.Output.PNGHeight <= 0 {
		err = multierr.Append(err, invalid("output png size %dx%d", c.Output.PNGWidth, c.Output.PNGHeight))
	}
	if len(c.Output.Origin) != 2 {
		err = multierr.Append(err, invalid("output.origin has %d values, want longitude and latitude", len(c.Output.Origin)))
	}
	return err
}

// FitOptions returns the fitting options described by c.
func (c *Config) FitOptions() arcroad.FitOptions {
	opts := arcroad.DefaultFitOptions()
	opts.CullProximity = c.Fit.CullProximity
	opts.RemoveRedundant = c.Fit.RemoveRedundant
	opts.MinRadiusFactor = c.Fit.MinRadiusFactor
	opts.Redundancy = arcroad.RedundancyOptions{
		Angle:    c.Fit.RedundantAngle,
		Distance: c.Fit.RedundantDistance,
	}
	return opts
}

// MeshOffsets returns the two ribbon offsets.
func (c *Config) MeshOffsets() [2]float64 {
	return [2]float64{c.Mesh.Offsets[0], c.Mesh.Offsets[1]}
}
