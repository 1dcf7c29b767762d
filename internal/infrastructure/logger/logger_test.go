package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesToConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "plantify.log")

	require.NoError(t, Init(Options{Level: "debug", File: file, MaxSizeMB: 1, Console: &console}))
	defer Close()

	log.Debug().Str("acquisition", "a1").Msg("hello")

	require.Contains(t, console.String(), `"acquisition":"a1"`)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
}

func TestInit_LevelFallsBackToInfo(t *testing.T) {
	var console bytes.Buffer
	require.NoError(t, Init(Options{Level: "nonsense", Console: &console}))

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	require.NotContains(t, console.String(), "hidden")
	require.Contains(t, console.String(), "shown")
}
