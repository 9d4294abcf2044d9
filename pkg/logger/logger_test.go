package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("desconocido"))
}

func TestNew_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Service: "lotes-api", Out: &buf})

	comp := l.Component("inventory")
	comp.Info().Str("item_id", "it-1").Msg("hola")
	l.Debug().Msg("no debe salir")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "debug queda por debajo del nivel info")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "lotes-api", entry["service"])
	assert.Equal(t, "inventory", entry["component"])
	assert.Equal(t, "it-1", entry["item_id"])
}
