//go:build windows

package platform

import "path/filepath"

func launchCommand(uri string) (string, []string) {
	// The empty argument is the window title consumed by start.
	return "cmd", []string{"/c", "start", "", uri}
}

func shutdownCommands() [][]string {
	return [][]string{
		{"shutdown", "/s", "/f", "/t", "0"},
	}
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}
