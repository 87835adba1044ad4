package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
	"github.com/tjfontaine/react-app-plugin/internal/userconfig"
)

// Rule names, in execution order.
const (
	RuleValidate      = "validate"
	RuleMigrate       = "migrate"
	RuleCLIOptions    = "cli-options"
	RuleUserConfig    = "user-config"
	RuleJSXRuntime    = "jsx-runtime"
	RuleSWCMinify     = "swc-minify"
	RuleTildeResolve  = "tilde-resolve"
	RuleResolveModule = "resolve-modules"
	RuleRegisterTask  = "register-task"
	RuleModeSetup     = "mode-setup"
	RuleRemoteRuntime = "remote-runtime"
)

const (
	// JSXInject is prepended to every module by esbuild in vite mode.
	JSXInject = "import React from 'react'"

	tildeDeprecation = "tildeResolve is deprecated in vite mode; import packages without the ~ prefix"
)

// AutomaticJSXPreset is the babel preset entry enabling the automatic
// JSX runtime.
func AutomaticJSXPreset() []any {
	return []any{"@babel/preset-react", map[string]any{"runtime": "automatic"}}
}

// TildeAlias maps a leading ~ in import paths to nothing, so "~pkg"
// resolves to the installed "pkg".
func TildeAlias() domain.AliasRule {
	return domain.AliasRule{Find: "^~", Regex: true, Replacement: ""}
}

func (p *Plugin) rules() []Rule {
	return []Rule{
		{Name: RuleValidate, Order: 10, Apply: p.validate},
		{Name: RuleMigrate, Order: 20, Apply: migrate},
		{Name: RuleCLIOptions, Order: 30, Apply: p.registerOptions},
		{Name: RuleUserConfig, Order: 40, Apply: p.applyUserConfig},
		{Name: RuleJSXRuntime, Order: 50, When: hasJSXRuntime, Apply: jsxRuntime},
		{Name: RuleSWCMinify, Order: 60, When: swcMinifyDefault, Apply: swcMinify},
		{Name: RuleTildeResolve, Order: 70, When: tildeInVite, Apply: tildeResolve},
		{Name: RuleResolveModule, Order: 80, Apply: resolveModules},
		{Name: RuleRegisterTask, Order: 90, Apply: p.registerTask},
		{Name: RuleModeSetup, Order: 100, Apply: p.setupMode},
		{Name: RuleRemoteRuntime, Order: 110, When: hasRemoteRuntime, Apply: p.setupRemoteRuntime},
	}
}

// validate never fails the run; an invalid configuration is reported
// and the build continues.
func (p *Plugin) validate(_ context.Context, api ports.API) error {
	if msg := p.validator.InvalidMessage(api.Context().OriginalUserConfig); msg != "" {
		api.Logger().Info(msg)
	}
	return nil
}

func migrate(_ context.Context, api ports.API) error {
	return userconfig.Migrate(api)
}

func (p *Plugin) registerOptions(_ context.Context, api ports.API) error {
	return p.registrar.RegisterOptions(api)
}

func (p *Plugin) applyUserConfig(_ context.Context, api ports.API) error {
	return p.applier.ApplyUserConfig(api, userconfig.CustomConfigs(api.Context().UserConfig))
}

func hasJSXRuntime(api ports.API) bool {
	return userconfig.Truthy(api.GetValue(domain.ValueHasJSXRuntime))
}

func jsxRuntime(_ context.Context, api ports.API) error {
	if err := api.ModifyUserConfig("babelPresets", []any{AutomaticJSXPreset()}, ports.WithDeepMerge()); err != nil {
		return err
	}
	if !api.Context().UserConfig.Truthy("vite") {
		return nil
	}
	return api.ModifyUserConfig("vite.esbuild", map[string]any{"jsxInject": JSXInject}, ports.WithDeepMerge())
}

// swcMinifyDefault looks at the raw configuration: a minify the user
// wrote, even false, is never overridden. The normalized configuration
// always has a default minify and cannot tell the two apart.
func swcMinifyDefault(api ports.API) bool {
	ctx := api.Context()
	return ctx.UserConfig.Truthy("swc") && !ctx.HasOriginal("minify")
}

func swcMinify(_ context.Context, api ports.API) error {
	return api.ModifyUserConfig("minify", "swc")
}

func tildeInVite(api ports.API) bool {
	uc := api.Context().UserConfig
	return uc.Truthy("tildeResolve") && uc.Truthy("vite")
}

func tildeResolve(_ context.Context, api ports.API) error {
	api.Logger().Warn(tildeDeprecation)

	// vite accepts alias as an object too; turn it into rules so the
	// tilde rule can be appended.
	uc := api.Context().UserConfig
	if m, ok := uc.Get("vite.resolve.alias").(map[string]any); ok {
		if err := api.ModifyUserConfig("vite.resolve.alias", aliasRules(m)); err != nil {
			return err
		}
	}
	return api.ModifyUserConfig("vite.resolve.alias", []any{TildeAlias()}, ports.WithDeepMerge())
}

func aliasRules(m map[string]any) []any {
	finds := make([]string, 0, len(m))
	for find := range m {
		finds = append(finds, find)
	}
	sort.Strings(finds)

	out := make([]any, 0, len(finds))
	for _, find := range finds {
		replacement, _ := m[find].(string)
		out = append(out, domain.AliasRule{Find: find, Replacement: replacement})
	}
	return out
}

func resolveModules(_ context.Context, api ports.API) error {
	dir := filepath.Join(api.Context().RootDir, "node_modules")
	api.OnGetWebpackConfig(func(cfg *domain.ChainConfig) error {
		cfg.Resolve.AddModule(dir)
		return nil
	})
	return nil
}

// registerTask is the last rule that touches the task configuration
// before the host owns it.
func (p *Plugin) registerTask(_ context.Context, api ports.API) error {
	mode := domain.ModeFor(api.Context().Command)
	cfg, err := p.enhancer.Enhance(api, p.factory.NewBaseConfig(mode))
	if err != nil {
		return err
	}
	cfg.Name = TaskName
	if err := p.base.SetBase(api, cfg); err != nil {
		return err
	}
	return api.RegisterTask(TaskName, cfg)
}

func (p *Plugin) setupMode(_ context.Context, api ports.API) error {
	cmd := api.Context().Command
	setup, ok := p.modes(cmd)
	if !ok {
		api.Logger().Debug("no mode setup for command", slog.String("command", string(cmd)))
		return nil
	}
	return setup.Setup(api)
}

func hasRemoteRuntime(api ports.API) bool {
	return api.Context().UserConfig.Truthy("remoteRuntime")
}

func (p *Plugin) setupRemoteRuntime(ctx context.Context, api ports.API) error {
	return p.remote.Setup(ctx, api, api.Context().UserConfig.Get("remoteRuntime"))
}
