package main

import (
	"slices"
	"sync"

	"steamwatch/internal/storage"
	"steamwatch/internal/ui/preferences"
)

// settingsState keeps the settings read from disk apart from the ones used
// for this run. Flag overrides only live in current; saved holds the file
// values plus what the user changed in the window.
type settingsState struct {
	mu      sync.Mutex
	store   *storage.Store
	saved   preferences.Settings
	current preferences.Settings
}

func newSettingsState(store *storage.Store, saved, current preferences.Settings) *settingsState {
	return &settingsState{store: store, saved: saved, current: current}
}

// Current returns the settings in effect.
func (state *settingsState) Current() preferences.Settings {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.current
}

// Update records a change made by the user. Fields equal to the current
// value are left alone in saved, so an untouched override is never persisted.
func (state *settingsState) Update(updated preferences.Settings) {
	state.mu.Lock()
	defer state.mu.Unlock()

	previous, saved := state.current, &state.saved
	if updated.AppID != previous.AppID {
		saved.AppID = updated.AppID
	}
	if updated.ScheduleTime != previous.ScheduleTime {
		saved.ScheduleTime = updated.ScheduleTime
	}
	if updated.LogPath != previous.LogPath {
		saved.LogPath = updated.LogPath
	}
	if !slices.Equal(updated.Keywords, previous.Keywords) {
		saved.Keywords = slices.Clone(updated.Keywords)
	}
	if updated.PollInterval != previous.PollInterval {
		saved.PollInterval = updated.PollInterval
	}
	if updated.CheckInterval != previous.CheckInterval {
		saved.CheckInterval = updated.CheckInterval
	}
	if updated.ShutdownAfterMatch != previous.ShutdownAfterMatch {
		saved.ShutdownAfterMatch = updated.ShutdownAfterMatch
	}
	if updated.LaunchURITemplate != previous.LaunchURITemplate {
		saved.LaunchURITemplate = updated.LaunchURITemplate
	}
	if updated.Notify != previous.Notify {
		saved.Notify = updated.Notify
	}
	state.current = updated
}

// Save writes the file-backed settings.
func (state *settingsState) Save() error {
	state.mu.Lock()
	saved := state.saved
	state.mu.Unlock()
	return state.store.SaveSettings(saved)
}
