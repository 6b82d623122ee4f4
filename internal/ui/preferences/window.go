package preferences

import (
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window   fyne.Window
	settings Settings
	onSave   func(Settings)
	logPath  *widget.Entry
	keywords *widget.Entry
	poll     *widget.Entry
	check    *widget.Entry
	uri      *widget.Entry
	notify   *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("SteamWatch Settings")

	prefs := &Window{
		window:   window,
		onSave:   onSave,
		logPath:  widget.NewEntry(),
		keywords: widget.NewEntry(),
		poll:     widget.NewEntry(),
		check:    widget.NewEntry(),
		uri:      widget.NewEntry(),
		notify:   widget.NewCheck("Wake up on file change notifications", nil),
	}
	prefs.keywords.SetPlaceHolder("finished update, another phrase")
	prefs.poll.SetPlaceHolder("3s")
	prefs.check.SetPlaceHolder("2s")
	prefs.UpdateSettings(settings)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Log monitoring", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Content log file"),
		prefs.logPath,
		widget.NewLabel("Keywords (comma separated, case-insensitive)"),
		prefs.keywords,
		container.NewHBox(widget.NewLabel("Check the log every"), prefs.poll),
		prefs.notify,
		widget.NewLabelWithStyle("Scheduling", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Check the clock every"), prefs.check),
		widget.NewLabel("Launch URI (%s is the AppID)"),
		prefs.uri,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", window.Hide)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.SetCloseIntercept(window.Hide)
	window.Resize(fyne.NewSize(480, 420))

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.logPath.SetText(settings.LogPath)
	prefs.keywords.SetText(strings.Join(settings.Keywords, ", "))
	prefs.poll.SetText(settings.PollInterval.String())
	prefs.check.SetText(settings.CheckInterval.String())
	prefs.uri.SetText(settings.LaunchURITemplate)
	prefs.notify.SetChecked(settings.Notify)
}

func (prefs *Window) handleSave() {
	settings := applyForm(prefs.settings, formValues{
		logPath:  prefs.logPath.Text,
		keywords: prefs.keywords.Text,
		poll:     prefs.poll.Text,
		check:    prefs.check.Text,
		uri:      prefs.uri.Text,
		notify:   prefs.notify.Checked,
	})

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

type formValues struct {
	logPath  string
	keywords string
	poll     string
	check    string
	uri      string
	notify   bool
}

// applyForm keeps the previous value for every field that does not parse.
func applyForm(settings Settings, values formValues) Settings {
	if path := strings.TrimSpace(values.logPath); path != "" {
		settings.LogPath = path
	}
	if keywords := ParseKeywords(values.keywords); len(keywords) > 0 {
		settings.Keywords = keywords
	}
	if interval, ok := parseInterval(values.poll); ok {
		settings.PollInterval = interval
	}
	if interval, ok := parseInterval(values.check); ok {
		settings.CheckInterval = interval
	}
	if uri := strings.TrimSpace(values.uri); strings.Count(uri, "%s") == 1 {
		settings.LaunchURITemplate = uri
	}
	settings.Notify = values.notify
	return settings
}

// ParseKeywords splits a comma separated list, dropping blank entries.
func ParseKeywords(value string) []string {
	var keywords []string
	for _, keyword := range strings.Split(value, ",") {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	return keywords
}

// parseInterval accepts a duration such as "1500ms" or a bare number of seconds.
func parseInterval(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, seconds > 0
	}
	interval, err := time.ParseDuration(value)
	if err != nil || interval <= 0 {
		return 0, false
	}
	return interval, true
}
