package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1600, cfg.WorldWidth)
	assert.Equal(t, 4, cfg.Physics.SubStepCount)
	assert.Equal(t, 32, cfg.Spatial.MaxNeighbors)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrideMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("worldWidth: 3200\nphysics:\n  subStepCount: 8\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3200, cfg.WorldWidth)
	assert.Equal(t, 8, cfg.Physics.SubStepCount)
	// Fields absent from the override keep the embedded default.
	assert.Equal(t, 900, cfg.WorldHeight)
	assert.Equal(t, 64, cfg.Spatial.CellSize)
}

func TestValidateRejectsOutOfRangeFields(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Physics.BoundaryElasticity = 1.5
	assert.Error(t, cfg.Validate())

	cfg.Physics.BoundaryElasticity = 0.8
	cfg.Spatial.CellSize = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadRejectsMalformedOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("worldWidth: [not, a, number]\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
