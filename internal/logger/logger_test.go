package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter("production", &buf)

	l.Debug().Msg("hidden")
	l.Info().Str("asset_id", "a1").Msg("thumbnail stored")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "a1", line["asset_id"])
	assert.Equal(t, "thumbnail stored", line["message"])
}

func TestNewDevelopmentEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter("development", &buf)

	l.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
