// Package controller wires the log watcher and the download scheduler to
// the application's external actions.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"steamwatch/internal/core/model"
	"steamwatch/internal/core/tailer"
	"steamwatch/internal/core/timekeeper"

	"github.com/spf13/afero"
)

// ErrWatchActive indicates a log watch is already running.
var ErrWatchActive = errors.New("log monitoring is already running")

const defaultCheckInterval = 2 * time.Second

// Callbacks connects the controller to the presentation layer and the host.
// Every field is optional.
type Callbacks struct {
	// AppendLine receives every human-readable status line, in order.
	AppendLine func(string)
	// TriggerDownload starts the download for appID. Fire and forget.
	TriggerDownload func(appID string)
	// TriggerShutdown powers the machine off. Fire and forget.
	TriggerShutdown func()
	// AppID returns the identifier to download, read when the schedule fires.
	AppID func() string
	// ShutdownEnabled is read when a keyword matches.
	ShutdownEnabled func() bool
	// OnWatchStopped receives the terminal state once the active watch ends.
	OnWatchStopped func(state model.WatchState)
	OnScheduleDone func(fired bool)
}

// Options contains runtime options for the Controller.
type Options struct {
	CheckInterval time.Duration
	Clock         timekeeper.Clock
	Notify        bool
	Logger        *slog.Logger
}

// Controller owns at most one active watch and one armed schedule.
type Controller struct {
	fs        afero.Fs
	callbacks Callbacks
	options   Options

	mu      sync.Mutex
	watcher *tailer.Watcher
	keeper  *timekeeper.TimeKeeper
	wg      sync.WaitGroup
}

// New creates a Controller.
func New(fs afero.Fs, callbacks Callbacks, options Options) *Controller {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if options.CheckInterval <= 0 {
		options.CheckInterval = defaultCheckInterval
	}
	if options.Clock == nil {
		options.Clock = timekeeper.SystemClock()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		fs:        fs,
		callbacks: withDefaults(callbacks),
		options:   options,
	}
}

// StartWatch starts a fresh watcher for config. Validation problems are
// returned; everything that happens after the start is reported through
// AppendLine.
func (controller *Controller) StartWatch(ctx context.Context, config model.WatchConfig) error {
	options := []tailer.Option{
		tailer.WithLogger(controller.options.Logger.With("component", "tailer")),
		tailer.WithReady(func() {
			controller.callbacks.AppendLine("Starting log monitoring...")
		}),
	}
	if controller.options.Notify {
		options = append(options, tailer.WithNotify())
	}

	watcher, err := tailer.New(controller.fs, config, options...)
	if err != nil {
		return err
	}

	controller.mu.Lock()
	if controller.watcher != nil {
		controller.mu.Unlock()
		return ErrWatchActive
	}
	controller.watcher = watcher
	controller.wg.Add(1)
	controller.mu.Unlock()

	controller.callbacks.AppendLine("Starting log monitoring in background...")
	events, err := watcher.Start(ctx)
	if err != nil {
		controller.mu.Lock()
		controller.watcher = nil
		controller.mu.Unlock()
		controller.wg.Done()
		return err
	}

	go controller.relayWatch(watcher, events)
	return nil
}

// StopWatch requests the active watch to stop at its next poll.
func (controller *Controller) StopWatch() {
	controller.mu.Lock()
	watcher := controller.watcher
	controller.mu.Unlock()

	controller.callbacks.AppendLine("Requesting to stop monitoring...")
	if watcher != nil {
		watcher.RequestStop()
	}
}

// WatchActive reports whether a watch is running.
func (controller *Controller) WatchActive() bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.watcher != nil
}

// Schedule parses timeText and arms a fresh scheduler, replacing any armed one.
func (controller *Controller) Schedule(ctx context.Context, timeText string) (model.ScheduleTarget, error) {
	target, err := model.ParseTarget(timeText)
	if err != nil {
		return model.ScheduleTarget{}, err
	}

	keeper := timekeeper.New(timekeeper.Config{
		Clock:  controller.options.Clock,
		Logger: controller.options.Logger.With("component", "timekeeper"),
	})
	events, err := keeper.Arm(ctx, target, controller.options.CheckInterval)
	if err != nil {
		return model.ScheduleTarget{}, err
	}

	controller.mu.Lock()
	previous := controller.keeper
	controller.keeper = keeper
	controller.wg.Add(1)
	controller.mu.Unlock()

	if previous != nil {
		previous.Cancel()
	}

	now := controller.options.Clock.Now()
	if next, err := timekeeper.Next(target, now); err == nil {
		controller.options.Logger.Info("download scheduled", "target", target.String(), "next", next, "in", next.Sub(now).Round(time.Second))
	}
	controller.callbacks.AppendLine(fmt.Sprintf("Download scheduled at %s ...", target))

	go controller.relaySchedule(keeper, events)
	return target, nil
}

// CancelSchedule disarms the armed scheduler, if any.
func (controller *Controller) CancelSchedule() {
	controller.mu.Lock()
	keeper := controller.keeper
	controller.mu.Unlock()

	if keeper != nil {
		controller.callbacks.AppendLine("Cancelling scheduled download...")
		keeper.Cancel()
	}
}

// ScheduleActive reports whether a scheduler is armed.
func (controller *Controller) ScheduleActive() bool {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.keeper != nil
}

// DownloadNow triggers the download for the current app id immediately.
func (controller *Controller) DownloadNow() error {
	appID := strings.TrimSpace(controller.callbacks.AppID())
	if err := model.ValidateAppID(appID); err != nil {
		return err
	}
	controller.startDownload(appID)
	return nil
}

// Close requests both components to stop. Use Wait to block until they have.
func (controller *Controller) Close() {
	controller.mu.Lock()
	watcher := controller.watcher
	keeper := controller.keeper
	controller.mu.Unlock()

	if watcher != nil {
		watcher.RequestStop()
	}
	if keeper != nil {
		keeper.Cancel()
	}
}

// Wait blocks until every started watch and schedule reached a terminal state.
func (controller *Controller) Wait() {
	controller.wg.Wait()
}

func (controller *Controller) relayWatch(watcher *tailer.Watcher, events <-chan tailer.Event) {
	defer controller.wg.Done()

	for event := range events {
		switch event.Type {
		case tailer.EventLine:
			controller.callbacks.AppendLine(event.Text)
		case tailer.EventError:
			controller.callbacks.AppendLine(event.Message)
		case tailer.EventMatched:
			controller.onMatched(event)
		case tailer.EventStopped:
			controller.mu.Lock()
			if controller.watcher == watcher {
				controller.watcher = nil
			}
			controller.mu.Unlock()
			controller.callbacks.AppendLine(event.Message)
			controller.callbacks.OnWatchStopped(event.State)
		}
	}
}

func (controller *Controller) onMatched(event tailer.Event) {
	controller.callbacks.AppendLine(fmt.Sprintf("Found keyword: '%s' in line:\n%s", event.Keyword, strings.TrimSpace(event.Text)))
	controller.callbacks.AppendLine("Keyword found => download likely finished.")

	if !controller.callbacks.ShutdownEnabled() {
		return
	}
	controller.options.Logger.Warn("shutting down after keyword match", "keyword", event.Keyword)
	controller.callbacks.AppendLine("Preparing to shutdown the PC...")
	controller.callbacks.TriggerShutdown()
}

func (controller *Controller) relaySchedule(keeper *timekeeper.TimeKeeper, events <-chan timekeeper.Event) {
	defer controller.wg.Done()

	fired := false
	for event := range events {
		if event.Type != timekeeper.EventFired {
			continue
		}
		fired = true
		controller.onFired()
	}

	controller.mu.Lock()
	if controller.keeper == keeper {
		controller.keeper = nil
	}
	controller.mu.Unlock()

	if !fired {
		controller.callbacks.AppendLine("Scheduled download cancelled.")
	}
	controller.callbacks.OnScheduleDone(fired)
}

func (controller *Controller) onFired() {
	appID := strings.TrimSpace(controller.callbacks.AppID())
	if err := model.ValidateAppID(appID); err != nil {
		controller.callbacks.AppendLine(fmt.Sprintf("Scheduled time reached; download not started: %v", err))
		return
	}
	controller.startDownload(appID)
	controller.callbacks.AppendLine("Scheduled time reached; started download.")
}

func (controller *Controller) startDownload(appID string) {
	controller.options.Logger.Info("starting download", "app_id", appID)
	controller.callbacks.AppendLine(fmt.Sprintf("Starting download for AppID %s", appID))
	controller.callbacks.TriggerDownload(appID)
}

func withDefaults(callbacks Callbacks) Callbacks {
	if callbacks.AppendLine == nil {
		callbacks.AppendLine = func(string) {}
	}
	if callbacks.TriggerDownload == nil {
		callbacks.TriggerDownload = func(string) {}
	}
	if callbacks.TriggerShutdown == nil {
		callbacks.TriggerShutdown = func() {}
	}
	if callbacks.AppID == nil {
		callbacks.AppID = func() string { return "" }
	}
	if callbacks.ShutdownEnabled == nil {
		callbacks.ShutdownEnabled = func() bool { return false }
	}
	if callbacks.OnWatchStopped == nil {
		callbacks.OnWatchStopped = func(model.WatchState) {}
	}
	if callbacks.OnScheduleDone == nil {
		callbacks.OnScheduleDone = func(bool) {}
	}
	return callbacks
}
