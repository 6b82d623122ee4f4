package main

import (
	"context"
	"errors"
	"time"

	"steamwatch/internal/core/controller"
	"steamwatch/internal/core/model"
	"steamwatch/internal/platform"
	"steamwatch/internal/ui/mainwindow"
	"steamwatch/internal/ui/preferences"
	"steamwatch/internal/ui/tray"
	"steamwatch/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/afero"
)

const shutdownWait = 2 * time.Second

func runGUI(ctx context.Context, env *appRuntime) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := env.logger.Logger

	lock, err := platform.AcquireSingleInstance(ctx, appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			logger.Warn("another instance is running", "err", err)
		}
		return err
	}
	defer func() {
		_ = lock.Release()
	}()

	fyneApp := app.NewWithID("com.steamwatch.app")
	appIcon := resources.MustIcon(resources.AppIcon)
	activeIcon := resources.MustIcon(resources.ActiveIcon)
	fyneApp.SetIcon(appIcon)

	state := newSettingsState(env.store, env.saved, env.settings)
	settings := state.Current()
	saveSettings := func() {
		if err := state.Save(); err != nil {
			logger.Error("save settings", "err", err)
		}
	}

	var (
		form        *mainwindow.Window
		trayManager *tray.Manager
		ctrl        *controller.Controller
	)
	desktopApp, hasTray := fyneApp.(desktop.App)

	// Runs on the UI goroutine after the form read the controller state.
	showWatching := func(watching bool) {
		if trayManager == nil {
			return
		}
		trayManager.SetWatching(watching)
		if watching {
			trayManager.SetStatus("monitoring")
			desktopApp.SetSystemTrayIcon(activeIcon)
			return
		}
		trayManager.SetStatus("idle")
		desktopApp.SetSystemTrayIcon(appIcon)
	}

	appendLine := func(line string) { form.AppendLine(line) }
	ctrl = controller.New(afero.NewOsFs(), controller.Callbacks{
		AppendLine:      appendLine,
		TriggerDownload: downloadTrigger(env.service, settings.LaunchURITemplate, appendLine, logger),
		TriggerShutdown: shutdownTrigger(env.service, appendLine, logger),
		AppID:           func() string { return form.AppID() },
		ShutdownEnabled: func() bool { return form.ShutdownEnabled() },
		OnWatchStopped:  func(model.WatchState) { form.RefreshWatching() },
		OnScheduleDone: func(bool) {
			fyne.Do(func() {
				if trayManager != nil && !ctrl.ScheduleActive() {
					trayManager.SetScheduled("")
				}
			})
		},
	}, controller.Options{
		CheckInterval: settings.CheckInterval,
		Notify:        settings.Notify,
		Logger:        logger.With("component", "controller"),
	})

	quit := func() {
		ctrl.Close()
		saveSettings()
		fyneApp.Quit()
	}

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		state.Update(updated)
		saveSettings()
		form.AppendLine("Settings saved.")
	})

	form = mainwindow.New(fyneApp, settings, mainwindow.Actions{
		OnSchedule: func(timeText string) error {
			target, err := ctrl.Schedule(ctx, timeText)
			if err != nil {
				return err
			}
			if trayManager != nil {
				trayManager.SetScheduled(target.String())
			}
			return nil
		},
		OnDownloadNow: ctrl.DownloadNow,
		OnStartWatch: func() error {
			return ctrl.StartWatch(ctx, state.Current().WatchConfig())
		},
		OnStopWatch:   ctrl.StopWatch,
		OnPreferences: prefsWindow.Show,
		OnFormChanged: func(appID, scheduleTime string, shutdown bool) {
			updated := state.Current()
			updated.AppID = appID
			updated.ScheduleTime = scheduleTime
			updated.ShutdownAfterMatch = shutdown
			state.Update(updated)
		},
		WatchActive:       ctrl.WatchActive,
		OnWatchingChanged: showWatching,
	})

	if hasTray {
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShow: form.Show,
			OnStartWatch: func() {
				if err := ctrl.StartWatch(ctx, state.Current().WatchConfig()); err != nil {
					form.AppendLine(err.Error())
					return
				}
				form.RefreshWatching()
			},
			OnStopWatch:   ctrl.StopWatch,
			OnPreferences: prefsWindow.Show,
			OnQuit:        quit,
		})
		desktopApp.SetSystemTrayIcon(appIcon)
		form.Window().SetCloseIntercept(form.Hide)
	} else {
		form.Window().SetCloseIntercept(quit)
	}

	logger.Info("starting window", "log_path", settings.LogPath, "settings", env.store.Path())
	form.Show()
	fyneApp.Run()

	ctrl.Close()
	waitFor(ctrl.Wait, shutdownWait)
	return nil
}

// waitFor runs wait in the background and gives up after timeout.
func waitFor(wait func(), timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
