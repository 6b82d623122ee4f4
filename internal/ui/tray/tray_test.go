package tray

import (
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemByLabel(t *testing.T, menu *fyne.Menu, label string) *fyne.MenuItem {
	t.Helper()
	for _, item := range menu.Items {
		if item.Label == label {
			return item
		}
	}
	require.Failf(t, "menu item not found", "label %q", label)
	return nil
}

func TestMenuTracksWatchState(t *testing.T) {
	started := 0
	manager := New(nil, Callbacks{OnStartWatch: func() { started++ }})

	menu := manager.menu()
	assert.Equal(t, "Status: idle", menu.Items[0].Label)
	assert.False(t, itemByLabel(t, menu, "Start monitoring").Disabled)
	assert.True(t, itemByLabel(t, menu, "Stop monitoring").Disabled)

	itemByLabel(t, menu, "Start monitoring").Action()
	assert.Equal(t, 1, started)

	manager.SetWatching(true)
	manager.SetStatus("monitoring")
	manager.SetScheduled("09:05")

	menu = manager.menu()
	assert.Equal(t, "Status: monitoring, download at 09:05", menu.Items[0].Label)
	assert.True(t, itemByLabel(t, menu, "Start monitoring").Disabled)
	assert.False(t, itemByLabel(t, menu, "Stop monitoring").Disabled)

	// Missing callbacks are ignored.
	itemByLabel(t, menu, "Quit").Action()
}
