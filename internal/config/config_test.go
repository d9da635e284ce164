package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, int64(1024), cfg.Anthropic.MaxTokens)
	assert.Equal(t, 8, cfg.Anthropic.ChunkSize)
	assert.Equal(t, 3, cfg.Anthropic.SmallBatchThreshold)
	assert.Equal(t, 60, cfg.Pipeline.TypeConfidenceThreshold)
	assert.Equal(t, 0.6, cfg.Pipeline.MappingCoverageThreshold)
	assert.Equal(t, 5, cfg.Pipeline.SampleRows)
	assert.Equal(t, ";", cfg.Output.Delimiter)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, cfg.Anthropic.Key, "no credential by default")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CONVERTER_ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929")
	t.Setenv("CONVERTER_OUTPUT_DELIMITER", ",")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, ",", cfg.Output.Delimiter)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "loud", Format: "json"}))
}
