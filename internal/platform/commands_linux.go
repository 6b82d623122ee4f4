//go:build linux

package platform

import "path/filepath"

func launchCommand(uri string) (string, []string) {
	return "xdg-open", []string{uri}
}

func shutdownCommands() [][]string {
	return [][]string{
		{"systemctl", "poweroff", "--force"},
		{"shutdown", "-h", "now"},
	}
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}
