package logutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "focusflow.log")

	log, closer, err := New("info", file)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("component", "timer").Msg("interval stopped")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"timer"`)
	assert.Contains(t, string(data), `"message":"interval stopped"`)
	assert.NotContains(t, string(data), "hidden")
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestNew_Appends(t *testing.T) {
	file := filepath.Join(t.TempDir(), "focusflow.log")

	for _, msg := range []string{"first", "second"} {
		log, closer, err := New("debug", file)
		require.NoError(t, err)
		log.Info().Msg(msg)
		closer()
	}

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, closer, err := New("loud", "")
	require.Error(t, err)
	require.NotNil(t, closer)
	closer()
}
