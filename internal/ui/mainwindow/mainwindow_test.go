package mainwindow

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"steamwatch/internal/core/controller"
	"steamwatch/internal/core/model"
	"steamwatch/internal/ui/preferences"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBufferKeepsNewestLines(t *testing.T) {
	buffer := newLogBuffer(3)
	buffer.Append("Starting log monitoring...")
	buffer.Append("Found keyword: 'finished update' in line:\nAppID 632810 finished update\n")
	buffer.Append("Monitoring stopped.")

	assert.Equal(t, 3, buffer.Len())
	assert.Equal(t, "Found keyword: 'finished update' in line:\nAppID 632810 finished update\nMonitoring stopped.", buffer.String())
}

func TestScheduleWarnings(t *testing.T) {
	warn, ok := scheduleWarning("  ", nil)
	require.True(t, ok)
	assert.Equal(t, "No Time", warn.title)

	_, err := model.ParseTarget("9:5")
	warn, ok = scheduleWarning("9:5", err)
	require.True(t, ok)
	assert.Equal(t, "Format Error", warn.title)

	_, ok = scheduleWarning("09:05", errors.New("disk on fire"))
	assert.False(t, ok)
}

func TestAppIDAndWatchWarnings(t *testing.T) {
	warn, ok := appIDWarning(model.ValidateAppID(""))
	require.True(t, ok)
	assert.Equal(t, "Please provide a valid AppID.", warn.message)

	warn, ok = watchWarning(fmt.Errorf("start: %w", controller.ErrWatchActive))
	require.True(t, ok)
	assert.Equal(t, "Monitoring", warn.title)

	warn, ok = watchWarning(&model.ConfigError{Field: "keywords", Reason: "must not be empty"})
	require.True(t, ok)
	assert.Contains(t, warn.message, "keywords")

	_, ok = watchWarning(errors.New("other"))
	assert.False(t, ok)
}

func TestFormActions(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	var scheduled []string
	var changes int
	form := New(app, preferences.DefaultSettings(), Actions{
		OnSchedule: func(timeText string) error {
			scheduled = append(scheduled, timeText)
			return nil
		},
		OnFormChanged: func(string, string, bool) { changes++ },
	})
	assert.Equal(t, "632810", form.AppID())
	assert.False(t, form.ShutdownEnabled())
	assert.Zero(t, changes)

	test.Tap(form.scheduleBtn)
	assert.Empty(t, scheduled)

	test.Type(form.timeEntry, "09:05")
	test.Tap(form.scheduleBtn)
	assert.Equal(t, []string{"09:05"}, scheduled)

	form.appIDEntry.SetText(" 440 ")
	assert.Equal(t, "440", form.AppID())

	test.Tap(form.shutdown)
	assert.True(t, form.ShutdownEnabled())
	assert.Positive(t, changes)
}

func TestStartWatchThatStopsImmediatelyLeavesStartEnabled(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	var active atomic.Bool
	refreshed := make(chan bool, 4)
	var form *Window
	form = New(app, preferences.DefaultSettings(), Actions{
		WatchActive: active.Load,
		OnStartWatch: func() error {
			// The log file is missing: the watch starts and ends before the
			// handler returns, and the stop refresh is queued first.
			active.Store(true)
			active.Store(false)
			form.RefreshWatching()
			return nil
		},
		OnWatchingChanged: func(watching bool) { refreshed <- watching },
	})

	test.Tap(form.startBtn)

	assert.False(t, waitRefresh(t, refreshed))
	assert.False(t, waitRefresh(t, refreshed))
	assert.False(t, form.startBtn.Disabled())
	assert.True(t, form.stopBtn.Disabled())
}

func TestRefreshWatchingFollowsWatchState(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	var active atomic.Bool
	refreshed := make(chan bool, 4)
	stops := 0
	form := New(app, preferences.DefaultSettings(), Actions{
		WatchActive: active.Load,
		OnStartWatch: func() error {
			active.Store(true)
			return nil
		},
		OnStopWatch:       func() { stops++ },
		OnWatchingChanged: func(watching bool) { refreshed <- watching },
	})

	test.Tap(form.startBtn)
	require.True(t, waitRefresh(t, refreshed))
	assert.True(t, form.startBtn.Disabled())
	assert.False(t, form.stopBtn.Disabled())

	test.Tap(form.stopBtn)
	assert.Equal(t, 1, stops)
	active.Store(false)
	form.RefreshWatching()
	require.False(t, waitRefresh(t, refreshed))
	assert.False(t, form.startBtn.Disabled())
	assert.True(t, form.stopBtn.Disabled())
}

func waitRefresh(t *testing.T, refreshed <-chan bool) bool {
	t.Helper()
	select {
	case watching := <-refreshed:
		return watching
	case <-time.After(5 * time.Second):
		t.Fatal("watch state was never refreshed")
		return false
	}
}
