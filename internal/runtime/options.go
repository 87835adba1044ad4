package runtime

import (
	"fmt"
	"log/slog"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
	"github.com/tjfontaine/react-app-plugin/internal/pipeline"
	"github.com/tjfontaine/react-app-plugin/internal/storage/memory"
	"github.com/tjfontaine/react-app-plugin/internal/storage/sqlite"
	"github.com/tjfontaine/react-app-plugin/internal/userconfig"
)

// Option is a functional option for configuring a Runner.
type Option func(*Runner) error

// WithCommand sets the command to run (required).
func WithCommand(cmd domain.Command) Option {
	return func(r *Runner) error {
		r.command = cmd
		return nil
	}
}

// WithRootDir sets the project root. Defaults to the working directory.
func WithRootDir(dir string) Option {
	return func(r *Runner) error {
		r.rootDir = dir
		return nil
	}
}

// WithConfigFile reads the user configuration from path (yaml or json)
// instead of the default build.yaml / build.json lookup. A relative path
// is resolved against the root dir.
func WithConfigFile(path string) Option {
	return func(r *Runner) error {
		r.configFile = path
		return nil
	}
}

// WithUserConfigMap uses a copy of m as the user configuration and skips
// loading files and the environment. Every Run starts from this copy.
func WithUserConfigMap(m map[string]any) Option {
	return func(r *Runner) error {
		cfg, err := userconfig.FromMap(m)
		if err != nil {
			return err
		}
		r.configMap = cfg.Raw()
		if r.configMap == nil {
			r.configMap = map[string]any{}
		}
		return nil
	}
}

// WithCommandArgs sets the option values given on the command line.
func WithCommandArgs(args map[string]any) Option {
	return func(r *Runner) error {
		for k, v := range args {
			r.args[k] = v
		}
		return nil
	}
}

// WithValue presets a host value such as a feature flag.
func WithValue(key string, value any) Option {
	return func(r *Runner) error {
		r.values[key] = value
		return nil
	}
}

// WithoutJSXDetection skips reading package.json for the react version.
func WithoutJSXDetection() Option {
	return func(r *Runner) error {
		r.detectJSX = false
		return nil
	}
}

// WithSQLite records invocations in a SQLite database.
func WithSQLite(path string) Option {
	return func(r *Runner) error {
		store, err := sqlite.New(path)
		if err != nil {
			return fmt.Errorf("create sqlite storage: %w", err)
		}
		r.history = store
		return nil
	}
}

// WithMemoryHistory records invocations in memory for the life of the
// Runner.
func WithMemoryHistory() Option {
	return func(r *Runner) error {
		r.history = memory.New()
		return nil
	}
}

// WithHistoryStore sets a custom history store.
func WithHistoryStore(store ports.HistoryStore) Option {
	return func(r *Runner) error {
		r.history = store
		return nil
	}
}

// WithPluginOptions passes options to the plugin, for example to replace
// a collaborator.
func WithPluginOptions(opts ...pipeline.Option) Option {
	return func(r *Runner) error {
		r.pluginOpts = append(r.pluginOpts, opts...)
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		r.logger = logger
		return nil
	}
}
