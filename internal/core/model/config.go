package model

import (
	"fmt"
	"strings"
	"time"
)

// WatchConfig contains the inputs of a single log watch.
type WatchConfig struct {
	FilePath     string
	Keywords     []string
	PollInterval time.Duration
}

// Validate reports whether the config can start a watch.
func (config WatchConfig) Validate() error {
	if strings.TrimSpace(config.FilePath) == "" {
		return &ConfigError{Field: "file path", Reason: "is empty"}
	}
	if len(config.Keywords) == 0 {
		return &ConfigError{Field: "keywords", Reason: "list is empty"}
	}
	for index, keyword := range config.Keywords {
		if keyword == "" {
			return &ConfigError{Field: "keywords", Reason: fmt.Sprintf("entry %d is empty", index)}
		}
	}
	if config.PollInterval <= 0 {
		return &ConfigError{Field: "poll interval", Reason: fmt.Sprintf("must be positive, got %s", config.PollInterval)}
	}
	return nil
}

// Normalized returns a deep copy with lowercased keywords.
func (config WatchConfig) Normalized() WatchConfig {
	keywords := make([]string, len(config.Keywords))
	for index, keyword := range config.Keywords {
		keywords[index] = strings.ToLower(keyword)
	}
	return WatchConfig{
		FilePath:     config.FilePath,
		Keywords:     keywords,
		PollInterval: config.PollInterval,
	}
}

// ValidateAppID checks the application identifier used for downloads.
func ValidateAppID(appID string) error {
	if strings.TrimSpace(appID) == "" {
		return &ValidationError{Field: "app id", Reason: "please provide a valid AppID"}
	}
	return nil
}
