package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"steamwatch/internal/logging"
	"steamwatch/internal/platform"
	"steamwatch/internal/storage"
	"steamwatch/internal/ui/preferences"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const appName = "SteamWatch"

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configDir string
	debug     bool
	dryRun    bool

	logPath  string
	keywords []string
	poll     time.Duration
	check    time.Duration
	appID    string
	shutdown bool
	notify   bool
	uri      string
}

// appRuntime is everything a command needs after flags are parsed.
// settings carries the flag overrides, saved is what the file holds.
type appRuntime struct {
	settings preferences.Settings
	saved    preferences.Settings
	store    *storage.Store
	logger   *logging.Logger
	service  platform.Service
}

func newRootCommand() *cobra.Command {
	options := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "steamwatch",
		Short: "Schedule Steam downloads and power off when they finish",
		Long: `SteamWatch starts a Steam download at a wall-clock time and watches
Steam's content log for the line that marks the end of the update.
Optionally the machine is powered off once that line appears.

Without a subcommand the desktop window is opened.

Examples:
  steamwatch                                   # Open the window
  steamwatch download --app-id 632810          # Start a download now
  steamwatch schedule 03:30 --app-id 632810    # Start a download at 03:30
  steamwatch watch --shutdown                  # Power off after the update
  steamwatch run 03:30 --shutdown              # Both of the above`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := options.load(cmd)
			if err != nil {
				return err
			}
			defer env.logger.Close()
			return runGUI(cmd.Context(), env)
		},
	}

	options.bindFlags(rootCmd)

	rootCmd.AddCommand(
		newWatchCommand(options),
		newScheduleCommand(options),
		newRunCommand(options),
		newDownloadCommand(options),
	)
	return rootCmd
}

func (options *rootOptions) bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&options.configDir, "config-dir", "", "directory holding settings and logs (default: OS config dir)")
	flags.BoolVar(&options.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&options.dryRun, "dry-run", false, "log launch and shutdown commands instead of running them")
	flags.StringVar(&options.logPath, "log-path", "", "Steam content log to watch")
	flags.StringSliceVar(&options.keywords, "keyword", nil, "case-insensitive phrase marking a finished download (repeatable)")
	flags.DurationVar(&options.poll, "poll", 0, "log poll interval")
	flags.DurationVar(&options.check, "check", 0, "schedule check interval")
	flags.StringVar(&options.appID, "app-id", "", "Steam AppID to download")
	flags.BoolVar(&options.shutdown, "shutdown", false, "power off after the keyword is found")
	flags.BoolVar(&options.notify, "notify", false, "wake up on file change notifications between polls")
	flags.StringVar(&options.uri, "launch-uri", "", "launch URI template with one %s for the AppID")
}

// load reads saved settings, applies changed flags and builds the logger
// and platform service.
func (options *rootOptions) load(cmd *cobra.Command) (*appRuntime, error) {
	configDir := options.configDir
	if configDir == "" {
		dir, err := platform.NewService(platform.Options{}).GetConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	logger, err := logging.New(logging.Options{
		Dir:     filepath.Join(configDir, appName, "logs"),
		Debug:   options.debug,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	store := storage.NewStore(afero.NewOsFs(), configDir, appName)
	settings, err := store.LoadSettings()
	if err != nil {
		logger.Warn("using default settings", "path", store.Path(), "err", err)
	}
	saved := settings
	saved.Keywords = append([]string(nil), settings.Keywords...)
	options.apply(cmd, &settings)

	serviceOptions := platform.Options{
		LaunchURITemplate: settings.LaunchURITemplate,
		Logger:            logger.With("component", "platform"),
	}
	service := platform.NewService(serviceOptions)
	if options.dryRun {
		service = platform.NewDryRunService(serviceOptions)
	}

	logger.Debug("settings loaded", "path", store.Path(), "log_path", settings.LogPath, "keywords", settings.Keywords)
	return &appRuntime{settings: settings, saved: saved, store: store, logger: logger, service: service}, nil
}

func (options *rootOptions) apply(cmd *cobra.Command, settings *preferences.Settings) {
	flags := cmd.Flags()
	if flags.Changed("log-path") {
		settings.LogPath = options.logPath
	}
	if flags.Changed("keyword") {
		settings.Keywords = options.keywords
	}
	if flags.Changed("poll") {
		settings.PollInterval = options.poll
	}
	if flags.Changed("check") {
		settings.CheckInterval = options.check
	}
	if flags.Changed("app-id") {
		settings.AppID = strings.TrimSpace(options.appID)
	}
	if flags.Changed("shutdown") {
		settings.ShutdownAfterMatch = options.shutdown
	}
	if flags.Changed("notify") {
		settings.Notify = options.notify
	}
	if flags.Changed("launch-uri") {
		settings.LaunchURITemplate = options.uri
	}
}
