package host

import (
	"fmt"
	"log/slog"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/userconfig"
)

// Option is a functional option for configuring a Host.
type Option func(*Host) error

// WithCommand sets the command being run (required).
func WithCommand(cmd domain.Command) Option {
	return func(h *Host) error {
		h.command = cmd
		return nil
	}
}

// WithRootDir sets the project root. Defaults to the working directory.
func WithRootDir(dir string) Option {
	return func(h *Host) error {
		h.rootDir = dir
		return nil
	}
}

// WithUserConfig uses cfg as the user configuration.
func WithUserConfig(cfg *userconfig.Config) Option {
	return func(h *Host) error {
		if cfg == nil {
			return fmt.Errorf("user config cannot be nil")
		}
		h.config = cfg
		return nil
	}
}

// WithUserConfigMap builds the user configuration from a nested map.
func WithUserConfigMap(m map[string]any) Option {
	return func(h *Host) error {
		cfg, err := userconfig.FromMap(m)
		if err != nil {
			return err
		}
		h.config = cfg
		return nil
	}
}

// WithCommandArgs sets the CLI option values given on the command line.
func WithCommandArgs(args map[string]any) Option {
	return func(h *Host) error {
		for k, v := range args {
			h.args[k] = v
		}
		return nil
	}
}

// WithValue presets a host value, such as a feature flag.
func WithValue(key string, value any) Option {
	return func(h *Host) error {
		h.values[key] = value
		return nil
	}
}

// WithJSXDetection sets HAS_JSX_RUNTIME from the project's react version
// unless it was preset with WithValue.
func WithJSXDetection() Option {
	return func(h *Host) error {
		h.detect = true
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) error {
		h.logger = logger
		return nil
	}
}
