package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesConsoleAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer

	logger, err := New(Options{Dir: dir, Console: &console})
	require.NoError(t, err)

	logger.Info("watch started", "path", "content_log.txt")
	logger.Debug("hidden at info level")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "watch started")
	assert.Contains(t, string(data), "path=content_log.txt")
	assert.NotContains(t, string(data), "hidden at info level")
	assert.Equal(t, string(data), console.String())
}

func TestLoggerDebugWithoutFile(t *testing.T) {
	var console bytes.Buffer

	logger, err := New(Options{Debug: true, Console: &console})
	require.NoError(t, err)

	logger.Debug("tick", "target", "09:05")
	assert.Contains(t, console.String(), "level=DEBUG")
	assert.NoError(t, logger.Close())

	var nilLogger *Logger
	assert.NoError(t, nilLogger.Close())
}
