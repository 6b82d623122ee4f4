package main

import (
	"fmt"
	"log/slog"

	"steamwatch/internal/platform"
)

// downloadTrigger launches the download and reports the command in the log.
func downloadTrigger(service platform.Service, template string, appendLine func(string), logger *slog.Logger) func(string) {
	return func(appID string) {
		uri, err := platform.BuildLaunchURI(template, appID)
		if err != nil {
			appendLine(fmt.Sprintf("Download not started: %v", err))
			return
		}
		appendLine("Executing: " + uri)
		if err := service.LaunchApp(appID); err != nil {
			logger.Error("launch failed", "app_id", appID, "err", err)
			appendLine(fmt.Sprintf("Download launch failed: %v", err))
		}
	}
}

// shutdownTrigger powers the machine off and reports failures in the log.
func shutdownTrigger(service platform.Service, appendLine func(string), logger *slog.Logger) func() {
	return func() {
		if err := service.Shutdown(); err != nil {
			logger.Error("shutdown failed", "err", err)
			appendLine(fmt.Sprintf("Shutdown failed: %v", err))
		}
	}
}
