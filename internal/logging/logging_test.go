package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Rrens/vibe-app-store/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Level(t *testing.T) {
	closer, err := Setup("production", config.LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestSetup_InvalidLevelFallsBackToInfo(t *testing.T) {
	closer, err := Setup("production", config.LoggingConfig{Level: "chatty"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSetup_RotatingFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logs", "vibe.log")

	closer, err := Setup("production", config.LoggingConfig{Level: "info", File: file})
	require.NoError(t, err)

	log.Info().Str("component", "test").Msg("rotating hello")
	require.NoError(t, closer.Close())

	matches, err := filepath.Glob(file + ".*")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "rotating hello")
}
