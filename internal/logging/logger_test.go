package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/statebox/internal/config"
)

func TestNewEmptyPathIsNop(t *testing.T) {
	log, err := New(config.LogConfig{}, true)
	require.NoError(t, err)
	log.Info("dropped")
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "statebox.log")
	log, err := New(config.LogConfig{Path: path, Level: "info"}, false)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"shown"`)
	require.False(t, strings.Contains(string(data), "hidden"))
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statebox.log")
	log, err := New(config.LogConfig{Path: path, Level: "warn"}, true)
	require.NoError(t, err)
	log.Debug("detail")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "detail")
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Path: filepath.Join(t.TempDir(), "x.log"), Level: "loud"}, false)
	require.Error(t, err)
}
