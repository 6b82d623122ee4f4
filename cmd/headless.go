package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"steamwatch/internal/core/controller"
	"steamwatch/internal/core/model"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// lineWriter prints status lines to the command output.
type lineWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (writer *lineWriter) Append(line string) {
	writer.mu.Lock()
	defer writer.mu.Unlock()
	fmt.Fprintln(writer.out, line)
}

// session is a headless controller plus the signals its callbacks raise.
type session struct {
	env        *appRuntime
	lines      *lineWriter
	controller *controller.Controller

	watchStopped chan model.WatchState
	scheduleDone chan bool
}

func newSession(cmd *cobra.Command, env *appRuntime) *session {
	current := &session{
		env:          env,
		lines:        &lineWriter{out: cmd.OutOrStdout()},
		watchStopped: make(chan model.WatchState, 1),
		scheduleDone: make(chan bool, 1),
	}

	logger := env.logger.Logger
	settings := env.settings
	current.controller = controller.New(afero.NewOsFs(), controller.Callbacks{
		AppendLine:      current.lines.Append,
		TriggerDownload: downloadTrigger(env.service, settings.LaunchURITemplate, current.lines.Append, logger),
		TriggerShutdown: shutdownTrigger(env.service, current.lines.Append, logger),
		AppID:           func() string { return settings.AppID },
		ShutdownEnabled: func() bool { return settings.ShutdownAfterMatch },
		OnWatchStopped: func(state model.WatchState) {
			select {
			case current.watchStopped <- state:
			default:
			}
		},
		OnScheduleDone: func(fired bool) {
			select {
			case current.scheduleDone <- fired:
			default:
			}
		},
	}, controller.Options{
		CheckInterval: settings.CheckInterval,
		Notify:        settings.Notify,
		Logger:        logger.With("component", "controller"),
	})
	return current
}

// close stops both components and waits for their final lines.
func (current *session) close() {
	current.controller.Close()
	current.controller.Wait()
}

// waitWatch blocks until the watch ends and fails when it ended on an error.
func (current *session) waitWatch() error {
	if state := <-current.watchStopped; state == model.WatchStoppedByError {
		return errWatchFailed
	}
	return nil
}

// signalContext is cancelled on interrupt or terminate.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newWatchCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the content log until a keyword appears",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := options.load(cmd)
			if err != nil {
				return err
			}
			defer env.logger.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			current := newSession(cmd, env)
			defer current.close()

			if err := current.controller.StartWatch(ctx, env.settings.WatchConfig()); err != nil {
				return err
			}
			return current.waitWatch()
		},
	}
}

func newScheduleCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule HH:MM",
		Short: "Start the download when the local clock reaches HH:MM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := options.load(cmd)
			if err != nil {
				return err
			}
			defer env.logger.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			current := newSession(cmd, env)
			defer current.close()

			if _, err := current.controller.Schedule(ctx, args[0]); err != nil {
				return err
			}
			if fired := <-current.scheduleDone; !fired {
				return errScheduleCancelled
			}
			return nil
		},
	}
}

func newRunCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run HH:MM",
		Short: "Schedule the download and watch the content log until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := options.load(cmd)
			if err != nil {
				return err
			}
			defer env.logger.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			current := newSession(cmd, env)
			defer current.close()

			if _, err := current.controller.Schedule(ctx, args[0]); err != nil {
				return err
			}
			if err := current.controller.StartWatch(ctx, env.settings.WatchConfig()); err != nil {
				return err
			}
			return current.waitWatch()
		},
	}
}

func newDownloadCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Start the download now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := options.load(cmd)
			if err != nil {
				return err
			}
			defer env.logger.Close()

			current := newSession(cmd, env)
			defer current.close()
			return current.controller.DownloadNow()
		},
	}
}

var (
	errScheduleCancelled = errors.New("scheduled download cancelled")
	errWatchFailed       = errors.New("log monitoring failed")
)
