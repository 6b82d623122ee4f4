package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// DefaultLaunchURITemplate opens the Steam client on the given app id.
const DefaultLaunchURITemplate = "steam://rungameid/%s"

// ErrEmptyAppID indicates LaunchApp was called without an identifier.
var ErrEmptyAppID = errors.New("app id is empty")

// Service defines OS-specific helpers needed by the application.
type Service interface {
	GetConfigDir() (string, error)
	LaunchApp(appID string) error
	Shutdown() error
}

// Options configures a Service.
type Options struct {
	// LaunchURITemplate receives the app id through a single %s verb.
	LaunchURITemplate string
	Logger            *slog.Logger
}

// runner starts a command. wait blocks until the command exits.
type runner func(ctx context.Context, wait bool, name string, args ...string) error

type platformService struct {
	options Options
	run     runner
}

// NewService returns a platform-specific implementation.
func NewService(options Options) Service {
	return &platformService{options: withDefaults(options), run: execRunner}
}

// NewDryRunService returns a Service that logs commands instead of running them.
func NewDryRunService(options Options) Service {
	options = withDefaults(options)
	logger := options.Logger
	return &platformService{
		options: options,
		run: func(_ context.Context, _ bool, name string, args ...string) error {
			logger.Info("dry run", "command", strings.Join(append([]string{name}, args...), " "))
			return nil
		},
	}
}

// GetConfigDir returns the OS-standard configuration directory.
func (service *platformService) GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

// LaunchApp hands the launch URI for appID to the OS opener without waiting.
func (service *platformService) LaunchApp(appID string) error {
	uri, err := BuildLaunchURI(service.options.LaunchURITemplate, appID)
	if err != nil {
		return fmt.Errorf("launch app: %w", err)
	}

	name, args := launchCommand(uri)
	service.options.Logger.Info("launching app", "uri", uri)
	if err := service.run(context.Background(), false, name, args...); err != nil {
		return fmt.Errorf("launch app: %w", err)
	}
	return nil
}

// Shutdown forces an immediate power off. Each candidate command is tried
// in order until one succeeds.
func (service *platformService) Shutdown() error {
	var errs []error
	for _, command := range shutdownCommands() {
		service.options.Logger.Warn("shutting down", "command", strings.Join(command, " "))
		err := service.run(context.Background(), true, command[0], command[1:]...)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("shutdown: %w", errors.Join(errs...))
}

// BuildLaunchURI substitutes the trimmed appID into template.
func BuildLaunchURI(template, appID string) (string, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return "", ErrEmptyAppID
	}
	if template == "" {
		template = DefaultLaunchURITemplate
	}
	if strings.Count(template, "%s") != 1 {
		return "", fmt.Errorf("launch uri template %q must contain exactly one %%s", template)
	}
	return fmt.Sprintf(template, appID), nil
}

func execRunner(ctx context.Context, wait bool, name string, args ...string) error {
	command := exec.CommandContext(ctx, name, args...)
	if !wait {
		if err := command.Start(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		go func() { _ = command.Wait() }()
		return nil
	}

	output, err := command.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func withDefaults(options Options) Options {
	if options.LaunchURITemplate == "" {
		options.LaunchURITemplate = DefaultLaunchURITemplate
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	return options
}
