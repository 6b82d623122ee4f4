package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnStartWatch  func()
	OnStopWatch   func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app       desktop.App
	callbacks Callbacks
	watching  bool
	scheduled string
	status    string
}

// New creates a tray manager with the provided callbacks. app may be nil
// when the driver has no system tray.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		status:    "idle",
	}
	manager.refreshMenu()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.status = status
	manager.refreshMenu()
}

// SetWatching toggles the monitoring menu items.
func (manager *Manager) SetWatching(watching bool) {
	manager.watching = watching
	manager.refreshMenu()
}

// SetScheduled shows the armed download time. Empty clears it.
func (manager *Manager) SetScheduled(target string) {
	manager.scheduled = target
	manager.refreshMenu()
}

func (manager *Manager) menu() *fyne.Menu {
	status := fyne.NewMenuItem(manager.statusLabel(), nil)
	status.Disabled = true

	start := fyne.NewMenuItem("Start monitoring", invoke(manager.callbacks.OnStartWatch))
	start.Disabled = manager.watching
	stop := fyne.NewMenuItem("Stop monitoring", invoke(manager.callbacks.OnStopWatch))
	stop.Disabled = !manager.watching

	return fyne.NewMenu("SteamWatch",
		status,
		fyne.NewMenuItem("Show window", invoke(manager.callbacks.OnShow)),
		start,
		stop,
		fyne.NewMenuItem("Settings", invoke(manager.callbacks.OnPreferences)),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", invoke(manager.callbacks.OnQuit)),
	)
}

func (manager *Manager) statusLabel() string {
	label := fmt.Sprintf("Status: %s", manager.status)
	if manager.scheduled != "" {
		label = fmt.Sprintf("%s, download at %s", label, manager.scheduled)
	}
	return label
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.menu())
	}
}

func invoke(handler func()) func() {
	return func() {
		if handler != nil {
			handler()
		}
	}
}
