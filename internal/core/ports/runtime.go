// Package ports defines the interfaces between the build host, the plugin
// pipeline and the collaborators the pipeline drives.
package ports

import (
	"log/slog"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
)

// WebpackHook mutates a task configuration when the host resolves tasks.
type WebpackHook func(cfg *domain.ChainConfig) error

// ModifyOptions controls how ModifyUserConfig writes a value.
type ModifyOptions struct {
	// DeepMerge merges objects recursively and concatenates arrays
	// instead of replacing the existing value.
	DeepMerge bool
}

// ModifyOption is a functional option for ModifyUserConfig.
type ModifyOption func(*ModifyOptions)

// WithDeepMerge selects deep-merge instead of replace.
func WithDeepMerge() ModifyOption {
	return func(o *ModifyOptions) {
		o.DeepMerge = true
	}
}

// API is the capability bundle a host hands to a plugin. Plugins reach
// configuration, logging and task registration only through it.
type API interface {
	// Context returns the invocation context.
	Context() *domain.Context

	// OnGetWebpackConfig registers a hook run against every task when the
	// host resolves them. Hooks run in registration order.
	OnGetWebpackConfig(hook WebpackHook)

	// RegisterTask hands cfg to the host under name.
	RegisterTask(name string, cfg *domain.ChainConfig) error

	// GetValue looks up a host value such as a feature flag.
	GetValue(key string) any

	// SetValue stores a host value for later plugins.
	SetValue(key string, value any)

	// ModifyUserConfig writes value at a dotted key. A nil value removes
	// the key.
	ModifyUserConfig(key string, value any, opts ...ModifyOption) error

	// RegisterCLIOption declares a command-line option.
	RegisterCLIOption(opt domain.CLIOption) error

	// RegisterUserConfig declares configuration keys; the host fills
	// defaults and checks the current values against them.
	RegisterUserConfig(entries ...domain.ConfigEntry) error

	// ConfigEntries returns the registered entries in registration order.
	ConfigEntries() []domain.ConfigEntry

	Logger() *slog.Logger
}
