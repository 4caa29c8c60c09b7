package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticker.log")

	log, err := New("debug", path)
	require.NoError(t, err)

	log.Infow("Server started", "addr", "0.0.0.0:9876")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Server started"`)
	assert.Contains(t, string(data), `"addr":"0.0.0.0:9876"`)
}

func TestNewLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticker.log")

	log, err := New("warn", path)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("loud", "")
	require.Error(t, err)
}
