package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapLogger_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	l := bootstrapLogger(&buf)
	l.Error().Err(errors.New("dsn missing")).Msg("bootstrap failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "bootstrap failed", line["message"])
	assert.Equal(t, "dsn missing", line["error"])
	assert.Equal(t, "ink2deck", line["service"])
	assert.Contains(t, line, "time")
}
