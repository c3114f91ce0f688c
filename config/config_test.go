package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoad_SourceBias(t *testing.T) {
	path := writeConfig(t, `
sources:
  primary_source: noaa
  station_bias_f: 1.5
  station_bias_c: 0.8
  source_bias:
    gfs_seamless: 0.5
    noaa: -0.3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 1.5, cfg.Sources.StationBiasF, 0.001)
	assert.InDelta(t, 0.8, cfg.Sources.StationBiasC, 0.001)
	assert.InDelta(t, 0.5, cfg.Sources.SourceBias["gfs_seamless"], 0.001)
	assert.InDelta(t, -0.3, cfg.Sources.SourceBias["noaa"], 0.001)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "strategy:\n  bankroll: 200\n"))
	require.NoError(t, err)

	// lo declarado se respeta, el resto cae a los defaults
	assert.InDelta(t, 200, cfg.Strategy.Bankroll, 0.001)
	assert.InDelta(t, 0.15, cfg.Strategy.MinEdge, 0.001)
	assert.InDelta(t, 1.0, cfg.Sources.StationBiasF, 0.001)
	assert.InDelta(t, 0.5, cfg.Sources.StationBiasC, 0.001)
	assert.Equal(t, "noaa", cfg.Sources.PrimarySource)
	assert.Equal(t, 30*time.Minute, cfg.ScanInterval())
	assert.Equal(t, 48*time.Hour, cfg.LedgerLookback())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
