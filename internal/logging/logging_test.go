package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake_Writer(t *testing.T) {
	var buf bytes.Buffer
	l, err := New().FromWriter(&buf).Level(zerolog.InfoLevel).Make()
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Str("sql", "SELECT 1").Msg("compiled")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "compiled", line["message"])
	assert.Equal(t, "SELECT 1", line["sql"])
	assert.Contains(t, line, "time")
	require.NoError(t, l.Close())
}

func TestMake_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqlast.log")
	l, err := New().FromPath(path).Make()
	require.NoError(t, err)
	l.Warn().Msg("written")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}

func TestMake_Console(t *testing.T) {
	var buf bytes.Buffer
	l, err := New().FromWriter(&buf).Console(true).Make()
	require.NoError(t, err)
	l.Error().Msg("plain text")
	assert.Contains(t, buf.String(), "plain text")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestLevels(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(""))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("loud"))

	assert.Equal(t, zerolog.InfoLevel, Verbosity(zerolog.WarnLevel, 1, false))
	assert.Equal(t, zerolog.DebugLevel, Verbosity(zerolog.WarnLevel, 2, false))
	assert.Equal(t, zerolog.TraceLevel, Verbosity(zerolog.WarnLevel, 9, false))
	assert.Equal(t, zerolog.ErrorLevel, Verbosity(zerolog.DebugLevel, 3, true))
}
