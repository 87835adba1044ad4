package pipeline

import (
	"context"
	"fmt"

	"github.com/tjfontaine/react-app-plugin/internal/cliopts"
	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
	"github.com/tjfontaine/react-app-plugin/internal/modes"
	"github.com/tjfontaine/react-app-plugin/internal/remoteruntime"
	"github.com/tjfontaine/react-app-plugin/internal/userconfig"
	"github.com/tjfontaine/react-app-plugin/internal/webpack"
)

// TaskName is the name of the single task the plugin registers.
const TaskName = "web"

// ModeLookup returns the setup handler for a command.
type ModeLookup func(cmd domain.Command) (ports.ModeSetup, bool)

// Plugin is the react-app configuration pipeline.
type Plugin struct {
	registrar ports.OptionRegistrar
	applier   ports.ConfigApplier
	validator ports.ConfigValidator
	factory   ports.BaseConfigFactory
	enhancer  ports.ConfigEnhancer
	base      ports.BaseSetup
	modes     ModeLookup
	remote    ports.RemoteRuntime

	executor *Executor
}

// Option configures a Plugin.
type Option func(*Plugin) error

// New creates the plugin. Collaborators not replaced by options are the
// packages of this module; modes resolve through the modes registry, so
// modes.RegisterBuiltins must have run.
func New(opts ...Option) (*Plugin, error) {
	p := &Plugin{
		registrar: cliopts.Registrar{},
		applier:   userconfig.Applier{},
		validator: userconfig.ViteValidator{},
		factory:   webpack.Factory{},
		enhancer:  webpack.Enhancer{},
		base:      webpack.Base{},
		modes:     modes.Get,
		remote:    remoteruntime.Runtime{},
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	p.executor = NewExecutor(p.rules()...)
	return p, nil
}

// Run applies the plugin to api. It returns once every rule has run,
// including a remote runtime setup when one is configured.
func (p *Plugin) Run(ctx context.Context, api ports.API) error {
	return p.executor.Run(ctx, api)
}

// Rules returns the plugin's rules in execution order.
func (p *Plugin) Rules() []Rule {
	return p.executor.Rules()
}

// WithOptionRegistrar replaces the built-in CLI option registrar.
func WithOptionRegistrar(r ports.OptionRegistrar) Option {
	return func(p *Plugin) error {
		if r == nil {
			return fmt.Errorf("option registrar cannot be nil")
		}
		p.registrar = r
		return nil
	}
}

// WithConfigApplier replaces the user config applier.
func WithConfigApplier(a ports.ConfigApplier) Option {
	return func(p *Plugin) error {
		if a == nil {
			return fmt.Errorf("config applier cannot be nil")
		}
		p.applier = a
		return nil
	}
}

// WithValidator replaces the vite config validator.
func WithValidator(v ports.ConfigValidator) Option {
	return func(p *Plugin) error {
		if v == nil {
			return fmt.Errorf("validator cannot be nil")
		}
		p.validator = v
		return nil
	}
}

// WithBaseConfigFactory replaces the webpack base config factory.
func WithBaseConfigFactory(f ports.BaseConfigFactory) Option {
	return func(p *Plugin) error {
		if f == nil {
			return fmt.Errorf("base config factory cannot be nil")
		}
		p.factory = f
		return nil
	}
}

// WithEnhancer replaces the base config enhancer.
func WithEnhancer(e ports.ConfigEnhancer) Option {
	return func(p *Plugin) error {
		if e == nil {
			return fmt.Errorf("enhancer cannot be nil")
		}
		p.enhancer = e
		return nil
	}
}

// WithBaseSetup replaces the setup applied to the web task before registration.
func WithBaseSetup(b ports.BaseSetup) Option {
	return func(p *Plugin) error {
		if b == nil {
			return fmt.Errorf("base setup cannot be nil")
		}
		p.base = b
		return nil
	}
}

// WithModeLookup replaces the modes registry lookup.
func WithModeLookup(lookup ModeLookup) Option {
	return func(p *Plugin) error {
		if lookup == nil {
			return fmt.Errorf("mode lookup cannot be nil")
		}
		p.modes = lookup
		return nil
	}
}

// WithModes dispatches commands to the given handlers instead of the
// modes registry.
func WithModes(setups map[domain.Command]ports.ModeSetup) Option {
	return func(p *Plugin) error {
		m := make(map[domain.Command]ports.ModeSetup, len(setups))
		for cmd, s := range setups {
			m[cmd] = s
		}
		p.modes = func(cmd domain.Command) (ports.ModeSetup, bool) {
			s, ok := m[cmd]
			return s, ok
		}
		return nil
	}
}

// WithRemoteRuntime replaces the remote runtime setup.
func WithRemoteRuntime(r ports.RemoteRuntime) Option {
	return func(p *Plugin) error {
		if r == nil {
			return fmt.Errorf("remote runtime cannot be nil")
		}
		p.remote = r
		return nil
	}
}
