package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, uint32(16*8*24), s.Cluster.NumTiles())
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_imm_cameras = 2
prepass = true

[cluster]
grid_size = [8, 8, 8]
cull_num_groups = [2, 2, 2]
max_lights = 16
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{8, 8, 8}, s.Cluster.GridSize)
	assert.Equal(t, uint32(16), s.Cluster.MaxLights)
	assert.Equal(t, Default().Cluster.MaxProbes, s.Cluster.MaxProbes)
	assert.Equal(t, uint32(2), s.MaxImmCameras)
	assert.True(t, s.Prepass)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
cluster:
  max_probes: 4
light_probe:
  specular_mip_levels: 3
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), s.Cluster.MaxProbes)
	assert.Equal(t, uint32(3), s.LightProbe.SpecularMipLevels)
	assert.Equal(t, Default().Cluster.GridSize, s.Cluster.GridSize)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`{}`), "json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Decode([]byte("[cluster]\ngrid_size = [16, 8, 24]\ncull_num_groups = [5, 4, 4]\n"), "toml")
	assert.ErrorContains(t, err, "not divisible")

	_, err = Decode([]byte("bogus: 1\n"), "yaml")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
