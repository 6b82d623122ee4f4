package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"steamwatch/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the relay goroutines.
type syncBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (buffer *syncBuffer) Write(data []byte) (int, error) {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	return buffer.buffer.Write(data)
}

func (buffer *syncBuffer) String() string {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	return buffer.buffer.String()
}

func execute(ctx context.Context, stdout, stderr *syncBuffer, args ...string) error {
	rootCmd := newRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}

func waitForOutput(t *testing.T, buffer *syncBuffer, text string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(buffer.String(), text)
	}, 5*time.Second, 5*time.Millisecond, "output never contained %q:\n%s", text, buffer.String())
}

func TestDownloadDryRun(t *testing.T) {
	var stdout, stderr syncBuffer
	err := execute(context.Background(), &stdout, &stderr,
		"download", "--config-dir", t.TempDir(), "--dry-run", "--app-id", "440")
	require.NoError(t, err)

	assert.Equal(t, "Starting download for AppID 440\nExecuting: steam://rungameid/440\n", stdout.String())
	assert.Contains(t, stderr.String(), "dry run")
}

func TestDownloadRequiresAppID(t *testing.T) {
	var stdout, stderr syncBuffer
	err := execute(context.Background(), &stdout, &stderr,
		"download", "--config-dir", t.TempDir(), "--dry-run", "--app-id", "  ")
	assert.True(t, model.IsValidation(err), err)
	assert.Empty(t, stdout.String())
}

func TestSavedSettingsAreUsedAndFlagsOverride(t *testing.T) {
	configDir := t.TempDir()
	settingsPath := filepath.Join(configDir, appName, "settings.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(settingsPath), 0o755))
	require.NoError(t, os.WriteFile(settingsPath, []byte("app_id: \"999\"\nlaunch_uri_template: \"steam://install/%s\"\n"), 0o644))

	var stdout, stderr syncBuffer
	require.NoError(t, execute(context.Background(), &stdout, &stderr, "download", "--config-dir", configDir, "--dry-run"))
	assert.Contains(t, stdout.String(), "Executing: steam://install/999")

	var overridden syncBuffer
	require.NoError(t, execute(context.Background(), &overridden, &stderr,
		"download", "--config-dir", configDir, "--dry-run", "--launch-uri", "steam://rungameid/%s"))
	assert.Contains(t, overridden.String(), "Executing: steam://rungameid/999")
}

func TestScheduleRejectsMalformedTime(t *testing.T) {
	var stdout, stderr syncBuffer
	err := execute(context.Background(), &stdout, &stderr,
		"schedule", "9:5", "--config-dir", t.TempDir(), "--dry-run")
	assert.True(t, model.IsValidation(err), err)
}

func TestScheduleCancelledBySignalContext(t *testing.T) {
	target := time.Now().Add(2 * time.Hour).Format("15:04")
	ctx, cancel := context.WithCancel(context.Background())
	var stdout, stderr syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- execute(ctx, &stdout, &stderr,
			"schedule", target, "--config-dir", t.TempDir(), "--dry-run", "--check", "10ms")
	}()

	waitForOutput(t, &stdout, "Download scheduled at "+target+" ...")
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errScheduleCancelled)
	case <-time.After(5 * time.Second):
		t.Fatal("schedule command did not return")
	}
	assert.Contains(t, stdout.String(), "Scheduled download cancelled.")
}

func TestWatchShutsDownAfterKeyword(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "content_log.txt")
	require.NoError(t, os.WriteFile(logPath, []byte("finished update (old)\n"), 0o644))

	var stdout, stderr syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- execute(context.Background(), &stdout, &stderr,
			"watch", "--config-dir", t.TempDir(), "--dry-run", "--shutdown",
			"--log-path", logPath, "--poll", "10ms")
	}()

	waitForOutput(t, &stdout, "Starting log monitoring...\n")
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = file.WriteString("AppID 632810 finished update\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch command did not return")
	}

	output := stdout.String()
	assert.Contains(t, output, "Keyword found => download likely finished.\nPreparing to shutdown the PC...\n")
	assert.True(t, strings.HasSuffix(output, "Monitoring stopped.\n"), output)
	assert.NotContains(t, output, "finished update (old)")
	assert.Contains(t, stderr.String(), "dry run")
}

func TestWatchMissingLogFails(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "missing", "content_log.txt")

	var stdout, stderr syncBuffer
	err := execute(context.Background(), &stdout, &stderr,
		"watch", "--config-dir", t.TempDir(), "--dry-run", "--log-path", logPath, "--poll", "10ms")

	require.ErrorIs(t, err, errWatchFailed)
	assert.Contains(t, stdout.String(), "file not found: "+logPath+"\n")
	assert.True(t, strings.HasSuffix(stdout.String(), "Monitoring stopped.\n"), stdout.String())
}

func TestWaitFor(t *testing.T) {
	assert.True(t, waitFor(func() {}, time.Second))

	block := make(chan struct{})
	defer close(block)
	assert.False(t, waitFor(func() { <-block }, 10*time.Millisecond))
}
