// Package tailer follows a growing log file and reports the first line that
// contains one of a set of keywords.
//
// Truncation is recognized when the file shrinks below the read offset or
// its first 64 bytes change. A file rewritten with the same first 64 bytes
// and grown past the offset between two polls resumes mid-content.
package tailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"steamwatch/internal/core/model"

	"github.com/spf13/afero"
)

// ErrAlreadyStarted indicates Start was called twice on the same watcher.
// A watcher runs once; create a new one to watch again.
var ErrAlreadyStarted = errors.New("watcher already started")

const (
	defaultBuffer  = 64
	stoppedMessage = "Monitoring stopped."
)

// Option customizes a Watcher.
type Option func(*Watcher)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(watcher *Watcher) {
		if logger != nil {
			watcher.logger = logger
		}
	}
}

// WithNotify wakes the poll sleep early when the file changes on disk.
func WithNotify() Option {
	return func(watcher *Watcher) {
		watcher.notify = true
	}
}

// WithReady registers a callback run on the watcher goroutine once the file
// is open and positioned at its end, before any line is read.
func WithReady(onReady func()) Option {
	return func(watcher *Watcher) {
		watcher.onReady = onReady
	}
}

// WithBuffer sets the event channel capacity.
func WithBuffer(size int) Option {
	return func(watcher *Watcher) {
		if size > 0 {
			watcher.buffer = size
		}
	}
}

// Watcher tails a single log file for one run.
type Watcher struct {
	fs     afero.Fs
	config model.WatchConfig
	logger *slog.Logger
	notify bool
	buffer int

	onReady func()

	started       atomic.Bool
	stopRequested atomic.Bool
}

// New creates a watcher for the provided configuration.
func New(fs afero.Fs, config model.WatchConfig, options ...Option) (*Watcher, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	watcher := &Watcher{
		fs:     fs,
		config: config.Normalized(),
		logger: slog.New(slog.DiscardHandler),
		buffer: defaultBuffer,
	}
	for _, option := range options {
		option(watcher)
	}
	return watcher, nil
}

// Start launches the polling loop and returns its event stream.
// The stream ends with exactly one stopped event and is then closed.
// Cancelling ctx has the same effect as RequestStop.
func (watcher *Watcher) Start(ctx context.Context) (<-chan Event, error) {
	if !watcher.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}
	events := make(chan Event, watcher.buffer)
	go watcher.run(ctx, events)
	return events, nil
}

// RequestStop asks the loop to stop at its next poll boundary.
// Safe for concurrent use and idempotent.
func (watcher *Watcher) RequestStop() {
	watcher.stopRequested.Store(true)
}

func (watcher *Watcher) run(ctx context.Context, events chan<- Event) {
	defer close(events)

	emit := func(event Event) {
		event.At = time.Now()
		select {
		case events <- event:
			return
		default:
		}
		select {
		case events <- event:
		case <-ctx.Done():
			watcher.logger.Debug("dropping watcher event, consumer gone", "type", event.Type)
		}
	}

	state := watcher.follow(ctx, emit)
	watcher.logger.Info("log watch finished", "path", watcher.config.FilePath, "state", state)
	emit(Event{Type: EventStopped, Message: stoppedMessage, State: state})
}

func (watcher *Watcher) follow(ctx context.Context, emit func(Event)) model.WatchState {
	path := watcher.config.FilePath
	emitError := func(message string) model.WatchState {
		watcher.logger.Warn("log watch error", "path", path, "error", message)
		emit(Event{Type: EventError, Message: message})
		return model.WatchStoppedByError
	}

	if _, err := watcher.fs.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return emitError(fmt.Sprintf("%v: %s", model.ErrFileNotFound, path))
		}
		return emitError(err.Error())
	}

	reader, err := openLineReader(watcher.fs, path, true)
	if err != nil {
		return emitError(err.Error())
	}
	defer func() {
		if err := reader.Close(); err != nil {
			watcher.logger.Warn("close log file", "path", path, "error", err)
		}
	}()

	wake, stopNotify := watcher.startNotify(path)
	defer stopNotify()

	watcher.logger.Info("log watch started", "path", path, "offset", reader.offset, "keywords", watcher.config.Keywords)
	if watcher.onReady != nil {
		watcher.onReady()
	}

	for {
		if watcher.stopping(ctx) {
			return model.WatchStoppedByRequest
		}

		line, err := reader.ReadLine()
		if err == nil {
			if watcher.stopping(ctx) {
				return model.WatchStoppedByRequest
			}
			emit(Event{Type: EventLine, Text: line})
			if keyword, ok := Match(line, watcher.config.Keywords); ok {
				emit(Event{Type: EventMatched, Text: line, Keyword: keyword})
				return model.WatchStoppedByMatch
			}
			continue
		}
		if !isEOF(err) {
			return emitError(fmt.Sprintf("read log file: %v", err))
		}

		change, err := reader.Sync()
		if err != nil {
			return emitError(err.Error())
		}
		if change != "" {
			watcher.logger.Info("log file "+change+", reading from start", "path", path)
			continue
		}

		if !watcher.sleep(ctx, wake) {
			return model.WatchStoppedByRequest
		}
	}
}

func (watcher *Watcher) stopping(ctx context.Context) bool {
	return watcher.stopRequested.Load() || ctx.Err() != nil
}

func (watcher *Watcher) sleep(ctx context.Context, wake <-chan struct{}) bool {
	timer := time.NewTimer(watcher.config.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-wake:
		return true
	}
}
