package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.InDelta(t, 0.9, cfg.Dedup.SimilarityThreshold, 1e-9)
	assert.Equal(t, "most-restrictive", cfg.Dedup.ConflictPolicy)
	assert.Equal(t, 4, cfg.Matchers.Workers)
	assert.Equal(t, 5*time.Second, cfg.Matchers.Timeout)
	assert.Equal(t, "explicit", cfg.Matchers.Mode)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "normscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dedup:
  similarity_threshold: 0.75
  conflict_policy: first-seen
matchers:
  mode: comprehensive
  workers: 2
variables:
  MAX_RETRIES: "3"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, cfg.Dedup.SimilarityThreshold, 1e-9)
	assert.Equal(t, "first-seen", cfg.Dedup.ConflictPolicy)
	assert.Equal(t, "comprehensive", cfg.Matchers.Mode)
	assert.Equal(t, 2, cfg.Matchers.Workers)
	assert.Equal(t, "3", cfg.Variables["MAX_RETRIES"])
	// Unset knobs keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.Matchers.Timeout)
}

func TestLoad_InvalidValuesClamped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "normscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dedup:
  similarity_threshold: 7.5
matchers:
  workers: -1
  mode: guesswork
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, cfg.Dedup.SimilarityThreshold, 1e-9)
	assert.Equal(t, 4, cfg.Matchers.Workers)
	assert.Equal(t, "explicit", cfg.Matchers.Mode)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "normscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(": not yaml ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NORMSCAN_MODE", "comprehensive")
	t.Setenv("NORMSCAN_WORKERS", "8")
	t.Setenv("NORMSCAN_SIMILARITY_THRESHOLD", "0.8")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "comprehensive", cfg.Matchers.Mode)
	assert.Equal(t, 8, cfg.Matchers.Workers)
	assert.InDelta(t, 0.8, cfg.Dedup.SimilarityThreshold, 1e-9)
}
