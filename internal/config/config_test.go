package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"honnef.co/go/arcroad"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.Fit.RemoveRedundant)
	assert.Equal(t, 0.05, cfg.Mesh.Resolution)
	assert.Equal(t, []float64{-3.5, 3.5}, cfg.Mesh.Offsets)
	assert.Equal(t, "asphalt", cfg.Mesh.Material)
	assert.Equal(t, 6, cfg.Output.SVGPrecision)
	assert.False(t, cfg.Log.Development)

	assert.Equal(t, arcroad.DefaultFitOptions(), cfg.FitOptions())
	assert.Equal(t, [2]float64{-3.5, 3.5}, cfg.MeshOffsets())
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arcroad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
fit:
  cull_proximity: 0.5
  remove_redundant: false
mesh:
  resolution: 0.01
  offsets: [-2, 6]
output:
  origin: [13.4, 52.5]
  edges: [-1.75, 1.75]
log:
  development: true
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Fit.CullProximity)
	assert.False(t, cfg.Fit.RemoveRedundant)
	assert.Equal(t, 1e-3, cfg.Fit.MinRadiusFactor)
	assert.Equal(t, 0.01, cfg.Mesh.Resolution)
	assert.Equal(t, [2]float64{-2, 6}, cfg.MeshOffsets())
	assert.Equal(t, []float64{13.4, 52.5}, cfg.Output.Origin)
	assert.Equal(t, []float64{-1.75, 1.75}, cfg.Output.Edges)
	assert.Equal(t, "asphalt", cfg.Mesh.Material)
	assert.True(t, cfg.Log.Development)

	opts := cfg.FitOptions()
	assert.Equal(t, 0.5, opts.CullProximity)
	assert.False(t, opts.RemoveRedundant)
}

func TestLoadOverrides(t *testing.T) {
	path := writeFile(t, "mesh:\n  resolution: 0.01\n  material: gravel\n")
	cfg, err := Load(path, map[string]interface{}{
		"mesh.resolution":     0.2,
		"fit.redundant_angle": 0.01,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.Mesh.Resolution)
	assert.Equal(t, "gravel", cfg.Mesh.Material)
	assert.Equal(t, 0.01, cfg.FitOptions().Redundancy.Angle)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	_, err = Load(writeFile(t, "mesh: [\n"), nil)
	assert.Error(t, err)

	_, err = Load("", map[string]interface{}{
		"mesh.resolution": 0.0,
		"mesh.offsets":    []float64{1},
		"output.origin":   []float64{},
	})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Len(t, multierr.Errors(err), 3)
}
