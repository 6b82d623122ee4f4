package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"steamwatch/internal/ui/preferences"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	AppID                string   `yaml:"app_id"`
	ScheduleTime         string   `yaml:"schedule_time,omitempty"`
	LogPath              string   `yaml:"log_path"`
	Keywords             []string `yaml:"keywords"`
	PollInterval         string   `yaml:"poll_interval"`
	CheckInterval        string   `yaml:"check_interval"`
	PollIntervalSeconds  int      `yaml:"poll_interval_seconds,omitempty"`
	CheckIntervalSeconds int      `yaml:"check_interval_seconds,omitempty"`
	ShutdownAfterMatch   bool     `yaml:"shutdown_after_match"`
	LaunchURITemplate    string   `yaml:"launch_uri_template"`
	Notify               bool     `yaml:"notify"`
}

// Store reads and writes settings.yaml under a per-application directory.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore creates a Store rooted at configDir/appName.
func NewStore(fs afero.Fs, configDir, appName string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs, path: filepath.Join(configDir, appName, settingsFileName)}
}

// Path returns the settings file location.
func (store *Store) Path() string {
	return store.path
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func (store *Store) LoadSettings() (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := afero.ReadFile(store.fs, store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func (store *Store) SaveSettings(settings preferences.Settings) error {
	if err := store.fs.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		AppID:              strings.TrimSpace(settings.AppID),
		ScheduleTime:       strings.TrimSpace(settings.ScheduleTime),
		LogPath:            settings.LogPath,
		Keywords:           settings.Keywords,
		PollInterval:       settings.PollInterval.String(),
		CheckInterval:      settings.CheckInterval.String(),
		ShutdownAfterMatch: settings.ShutdownAfterMatch,
		LaunchURITemplate:  settings.LaunchURITemplate,
		Notify:             settings.Notify,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := afero.WriteFile(store.fs, store.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if appID := strings.TrimSpace(fileData.AppID); appID != "" {
		settings.AppID = appID
	}
	settings.ScheduleTime = strings.TrimSpace(fileData.ScheduleTime)
	if fileData.LogPath != "" {
		settings.LogPath = fileData.LogPath
	}
	if keywords := cleanKeywords(fileData.Keywords); len(keywords) > 0 {
		settings.Keywords = keywords
	}
	if interval, ok := parseInterval(fileData.PollInterval, fileData.PollIntervalSeconds); ok {
		settings.PollInterval = interval
	}
	if interval, ok := parseInterval(fileData.CheckInterval, fileData.CheckIntervalSeconds); ok {
		settings.CheckInterval = interval
	}
	if strings.Count(fileData.LaunchURITemplate, "%s") == 1 {
		settings.LaunchURITemplate = fileData.LaunchURITemplate
	}

	settings.ShutdownAfterMatch = fileData.ShutdownAfterMatch
	settings.Notify = fileData.Notify
}

// parseInterval reads a duration such as "500ms" and falls back to the
// whole-second field of older files.
func parseInterval(text string, legacySeconds int) (time.Duration, bool) {
	if text = strings.TrimSpace(text); text != "" {
		interval, err := time.ParseDuration(text)
		return interval, err == nil && interval > 0
	}
	if legacySeconds > 0 {
		return time.Duration(legacySeconds) * time.Second, true
	}
	return 0, false
}

func cleanKeywords(keywords []string) []string {
	cleaned := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			cleaned = append(cleaned, keyword)
		}
	}
	return cleaned
}
