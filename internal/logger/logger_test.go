package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	require.NoError(t, Init(Config{Dir: dir}))
	require.NotNil(t, Logger)

	Info("server starting", "port", "8080")

	_, err := os.Stat(filepath.Join(dir, "habits.log"))
	assert.NoError(t, err)
}

func TestInit_StderrOnly(t *testing.T) {
	require.NoError(t, Init(Config{Debug: true}))
	require.NotNil(t, Logger)

	Debug("debug message")
	Warn("warning message")
}

func TestLogFunctionsWithoutLogger(t *testing.T) {
	saved := Logger
	Logger = nil
	t.Cleanup(func() { Logger = saved })

	assert.NotPanics(t, func() {
		Debug("x")
		Info("x")
		Warn("x")
		Error("x")
	})
}
