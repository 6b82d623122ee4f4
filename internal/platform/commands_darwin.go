//go:build darwin

package platform

import "path/filepath"

func launchCommand(uri string) (string, []string) {
	return "open", []string{uri}
}

func shutdownCommands() [][]string {
	return [][]string{
		{"shutdown", "-h", "now"},
	}
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}
