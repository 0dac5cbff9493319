package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", "ink2deck", &buf)

	log.Warn().Str("strategy", "vision").Msg("extraction failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "ink2deck", line["service"])
	assert.Equal(t, "vision", line["strategy"])
	assert.Equal(t, "extraction failed", line["message"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "json", "ink2deck", &buf)

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Error().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud"))
	assert.Equal(t, zerolog.DebugLevel, parseLevel(" DEBUG "))
}
