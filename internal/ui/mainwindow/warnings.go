package mainwindow

import (
	"errors"
	"strings"

	"steamwatch/internal/core/controller"
	"steamwatch/internal/core/model"
)

// warning is a dialog shown for input the user can correct.
type warning struct {
	title   string
	message string
}

func scheduleWarning(timeText string, err error) (warning, bool) {
	if strings.TrimSpace(timeText) == "" {
		return warning{"No Time", "Please enter time in HH:MM format."}, true
	}
	if model.IsValidation(err) {
		return warning{"Format Error", "Please enter time in HH:MM format (24-hour)."}, true
	}
	return warning{}, false
}

func appIDWarning(err error) (warning, bool) {
	if model.IsValidation(err) {
		return warning{"No AppID", "Please provide a valid AppID."}, true
	}
	return warning{}, false
}

func watchWarning(err error) (warning, bool) {
	var configErr *model.ConfigError
	switch {
	case errors.Is(err, controller.ErrWatchActive):
		return warning{"Monitoring", "Log monitoring is already running."}, true
	case errors.As(err, &configErr):
		return warning{"Settings", "Please check the monitoring settings: " + configErr.Error()}, true
	}
	return warning{}, false
}
