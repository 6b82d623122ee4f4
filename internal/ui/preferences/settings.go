package preferences

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"steamwatch/internal/core/model"
	"steamwatch/internal/platform"
)

// Settings defines editable user preferences.
type Settings struct {
	AppID        string
	ScheduleTime string

	LogPath       string
	Keywords      []string
	PollInterval  time.Duration
	CheckInterval time.Duration

	ShutdownAfterMatch bool
	LaunchURITemplate  string
	Notify             bool
}

// DefaultSettings returns default settings for SteamWatch.
func DefaultSettings() Settings {
	return Settings{
		AppID:             "632810",
		LogPath:           DefaultLogPath(),
		Keywords:          []string{"finished update"},
		PollInterval:      3 * time.Second,
		CheckInterval:     2 * time.Second,
		LaunchURITemplate: platform.DefaultLaunchURITemplate,
	}
}

// DefaultLogPath returns the usual location of Steam's content log.
func DefaultLogPath() string {
	if runtime.GOOS == "windows" {
		return `C:\Program Files (x86)\Steam\logs\content_log.txt`
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "~"
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(homeDir, "Library", "Application Support", "Steam", "logs", "content_log.txt")
	}
	return filepath.Join(homeDir, ".steam", "steam", "logs", "content_log.txt")
}

// WatchConfig converts settings to a watcher configuration.
func (settings Settings) WatchConfig() model.WatchConfig {
	return model.WatchConfig{
		FilePath:     settings.LogPath,
		Keywords:     append([]string(nil), settings.Keywords...),
		PollInterval: settings.PollInterval,
	}
}
