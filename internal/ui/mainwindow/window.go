// Package mainwindow is the scheduler form: app id and time entries, the
// action buttons, the shutdown option and the status log.
package mainwindow

import (
	"context"
	"image/color"
	"strings"
	"sync"
	"sync/atomic"

	"steamwatch/internal/ui/animation"
	"steamwatch/internal/ui/preferences"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// Actions are invoked from the UI goroutine.
type Actions struct {
	OnSchedule    func(timeText string) error
	OnDownloadNow func() error
	OnStartWatch  func() error
	OnStopWatch   func()
	OnPreferences func()
	OnFormChanged func(appID, scheduleTime string, shutdown bool)
	// WatchActive reports whether a watch is running. It is the only source
	// of the start and stop button state.
	WatchActive func() bool
	// OnWatchingChanged is called on the UI goroutine after each refresh.
	OnWatchingChanged func(watching bool)
}

// Window manages the main form.
type Window struct {
	window      fyne.Window
	actions     Actions
	title       *canvas.Text
	appIDEntry  *widget.Entry
	timeEntry   *widget.Entry
	scheduleBtn *widget.Button
	downloadBtn *widget.Button
	startBtn    *widget.Button
	stopBtn     *widget.Button
	shutdown    *widget.Check
	logLabel    *widget.Label
	logScroll   *container.Scroll
	engine      *animation.Engine

	mu              sync.Mutex
	log             *logBuffer
	appID           atomic.Value
	shutdownEnabled atomic.Bool
}

// New creates the main window from saved form values.
func New(app fyne.App, settings preferences.Settings, actions Actions) *Window {
	window := app.NewWindow("SteamWatch Download Scheduler")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	form := &Window{
		window:  window,
		actions: actions,
		log:     newLogBuffer(defaultMaxLines),
	}
	form.appID.Store(strings.TrimSpace(settings.AppID))
	form.shutdownEnabled.Store(settings.ShutdownAfterMatch)

	form.title = canvas.NewText("SteamWatch Download Monitor", color.NRGBA{R: 255, A: 255})
	form.title.Alignment = fyne.TextAlignCenter
	form.title.TextStyle = fyne.TextStyle{Bold: true}
	form.title.TextSize = 18
	form.engine = animation.New(animation.DefaultConfig(), form.setTitleColor)

	form.appIDEntry = widget.NewEntry()
	form.appIDEntry.SetPlaceHolder("Enter Steam AppID (e.g. 632810)")
	form.appIDEntry.SetText(settings.AppID)

	form.timeEntry = widget.NewEntry()
	form.timeEntry.SetPlaceHolder("Enter time to start download (HH:MM) - 24h format")
	form.timeEntry.SetText(settings.ScheduleTime)

	form.shutdown = widget.NewCheck("Shutdown after download finishes?", nil)
	form.shutdown.SetChecked(settings.ShutdownAfterMatch)

	// Attached after the initial values are loaded.
	form.appIDEntry.OnChanged = func(text string) {
		form.appID.Store(strings.TrimSpace(text))
		form.formChanged()
	}
	form.timeEntry.OnChanged = func(string) { form.formChanged() }
	form.shutdown.OnChanged = func(checked bool) {
		form.shutdownEnabled.Store(checked)
		form.formChanged()
	}

	form.scheduleBtn = widget.NewButton("Schedule Download", form.handleSchedule)
	form.downloadBtn = widget.NewButton("Download Now", form.handleDownloadNow)
	form.startBtn = widget.NewButton("Start Monitoring for Keywords", form.handleStartWatch)
	form.stopBtn = widget.NewButton("Stop Monitoring", form.handleStopWatch)
	form.stopBtn.Disable()
	settingsBtn := widget.NewButton("Settings", func() {
		if form.actions.OnPreferences != nil {
			form.actions.OnPreferences()
		}
	})

	form.logLabel = widget.NewLabel("")
	form.logLabel.Wrapping = fyne.TextWrapWord
	form.logLabel.TextStyle = fyne.TextStyle{Monospace: true}
	form.logScroll = container.NewVScroll(form.logLabel)
	form.logScroll.SetMinSize(fyne.NewSize(600, 200))

	fields := container.NewVBox(
		form.title,
		form.appIDEntry,
		form.timeEntry,
		container.NewGridWithColumns(2, form.scheduleBtn, form.downloadBtn),
		form.startBtn,
		form.stopBtn,
		container.NewBorder(nil, nil, nil, settingsBtn, form.shutdown),
	)

	window.SetContent(container.NewBorder(fields, nil, nil, nil, form.logScroll))
	window.Resize(fyne.NewSize(650, 400))

	return form
}

// Window returns the underlying fyne window.
func (form *Window) Window() fyne.Window {
	return form.window
}

// Show displays the window and starts the title animation.
func (form *Window) Show() {
	form.engine.Start(context.Background())
	form.window.Show()
	form.window.RequestFocus()
}

// Hide hides the window and pauses the title animation.
func (form *Window) Hide() {
	form.engine.Stop()
	form.window.Hide()
}

// AppendLine adds a status line. Safe for use from any goroutine.
func (form *Window) AppendLine(line string) {
	fyne.Do(func() {
		form.mu.Lock()
		form.log.Append(line)
		text := form.log.String()
		form.mu.Unlock()

		form.logLabel.SetText(text)
		form.logScroll.ScrollToBottom()
	})
}

// AppID returns the trimmed app id currently entered.
func (form *Window) AppID() string {
	return form.appID.Load().(string)
}

// ShutdownEnabled reports whether the shutdown option is checked.
func (form *Window) ShutdownEnabled() bool {
	return form.shutdownEnabled.Load()
}

// RefreshWatching syncs the start and stop buttons with WatchActive. Safe
// for use from any goroutine. The state is read when the update runs, so the
// last queued refresh always shows the current watch state.
func (form *Window) RefreshWatching() {
	fyne.Do(func() {
		watching := form.actions.WatchActive != nil && form.actions.WatchActive()
		if watching {
			form.startBtn.Disable()
			form.stopBtn.Enable()
		} else {
			form.startBtn.Enable()
			form.stopBtn.Disable()
		}
		if form.actions.OnWatchingChanged != nil {
			form.actions.OnWatchingChanged(watching)
		}
	})
}

func (form *Window) handleSchedule() {
	if form.actions.OnSchedule == nil {
		return
	}
	timeText := form.timeEntry.Text
	if strings.TrimSpace(timeText) == "" {
		form.showWarning(scheduleWarning(timeText, nil))
		return
	}
	if err := form.actions.OnSchedule(timeText); err != nil {
		form.showProblem(err, func(err error) (warning, bool) { return scheduleWarning(timeText, err) })
	}
}

func (form *Window) handleDownloadNow() {
	if form.actions.OnDownloadNow == nil {
		return
	}
	if err := form.actions.OnDownloadNow(); err != nil {
		form.showProblem(err, appIDWarning)
	}
}

func (form *Window) handleStartWatch() {
	if form.actions.OnStartWatch == nil {
		return
	}
	if err := form.actions.OnStartWatch(); err != nil {
		form.showProblem(err, watchWarning)
		return
	}
	form.RefreshWatching()
}

func (form *Window) handleStopWatch() {
	if form.actions.OnStopWatch != nil {
		form.actions.OnStopWatch()
	}
}

func (form *Window) formChanged() {
	if form.actions.OnFormChanged != nil {
		form.actions.OnFormChanged(form.AppID(), strings.TrimSpace(form.timeEntry.Text), form.ShutdownEnabled())
	}
}

func (form *Window) showProblem(err error, classify func(error) (warning, bool)) {
	if warn, ok := classify(err); ok {
		form.showWarning(warn, true)
		return
	}
	dialog.ShowError(err, form.window)
}

func (form *Window) showWarning(warn warning, ok bool) {
	if !ok {
		return
	}
	dialog.ShowInformation(warn.title, warn.message, form.window)
}

func (form *Window) setTitleColor(c color.NRGBA) {
	fyne.Do(func() {
		form.title.Color = c
		form.title.Refresh()
	})
}
