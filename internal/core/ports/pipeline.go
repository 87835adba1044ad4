package ports

import (
	"context"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
)

// OptionRegistrar declares the plugin's command-line options.
type OptionRegistrar interface {
	RegisterOptions(api API) error
}

// ConfigApplier declares the recognised configuration keys, the standard
// schema plus plugin-specific custom entries.
type ConfigApplier interface {
	ApplyUserConfig(api API, custom []domain.ConfigEntry) error
}

// ConfigValidator inspects the raw configuration and returns a message
// describing what is wrong, or "" when it is acceptable.
type ConfigValidator interface {
	InvalidMessage(original map[string]any) string
}

// BaseConfigFactory builds the initial task configuration for a mode.
type BaseConfigFactory interface {
	NewBaseConfig(mode domain.Mode) *domain.ChainConfig
}

// ConfigEnhancer applies registered user configuration to a task
// configuration.
type ConfigEnhancer interface {
	Enhance(api API, cfg *domain.ChainConfig) (*domain.ChainConfig, error)
}

// BaseSetup applies settings common to every mode.
type BaseSetup interface {
	SetBase(api API, cfg *domain.ChainConfig) error
}

// ModeSetup finalizes configuration for one command.
type ModeSetup interface {
	Setup(api API) error
}

// RemoteRuntime prepares the remote runtime described by raw, which is
// the user's remoteRuntime value. It blocks until the runtime is ready
// or ctx is done.
type RemoteRuntime interface {
	Setup(ctx context.Context, api API, raw any) error
}
