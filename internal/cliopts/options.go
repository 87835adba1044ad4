// Package cliopts declares the command-line options the react-app plugin
// contributes and renders them as urfave/cli flags.
package cliopts

import (
	"fmt"
	"strconv"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

const (
	DefaultAnalyzerPort = 9000
	AnalyzerPlugin      = "webpack-bundle-analyzer"
)

var (
	startOnly     = []domain.Command{domain.CommandStart}
	startAndBuild = []domain.Command{domain.CommandStart, domain.CommandBuild}
)

// Options returns the plugin's command-line options.
func Options() []domain.CLIOption {
	return []domain.CLIOption{
		{
			Name:     "https",
			Usage:    "serve the dev server over https",
			Kind:     domain.KindBool,
			Commands: startOnly,
			Apply: func(cfg *domain.ChainConfig, v any, _ map[string]any) error {
				cfg.DevServer.HTTPS = asBool(v)
				return nil
			},
		},
		{
			Name:     "port",
			Usage:    "dev server port",
			Kind:     domain.KindNumber,
			Commands: startOnly,
			Apply: func(cfg *domain.ChainConfig, v any, _ map[string]any) error {
				port, err := asInt(v)
				if err != nil {
					return err
				}
				cfg.DevServer.Port = port
				return nil
			},
		},
		{
			Name:     "host",
			Usage:    "dev server host",
			Kind:     domain.KindString,
			Commands: startOnly,
			Apply: func(cfg *domain.ChainConfig, v any, _ map[string]any) error {
				cfg.DevServer.Host = fmt.Sprint(v)
				return nil
			},
		},
		{
			Name:     "disable-open",
			Usage:    "do not open the browser on start",
			Kind:     domain.KindBool,
			Commands: startOnly,
			Apply: func(cfg *domain.ChainConfig, v any, _ map[string]any) error {
				if asBool(v) {
					cfg.DevServer.Open = false
				}
				return nil
			},
		},
		{
			Name:     "disable-reload",
			Usage:    "disable hot and live reload",
			Kind:     domain.KindBool,
			Commands: startOnly,
			Apply: func(cfg *domain.ChainConfig, v any, _ map[string]any) error {
				if asBool(v) {
					cfg.DevServer.Hot = false
					cfg.DevServer.LiveReload = false
				}
				return nil
			},
		},
		{
			Name:     "disable-mock",
			Usage:    "disable the mock server",
			Kind:     domain.KindBool,
			Commands: startOnly,
			Apply: func(cfg *domain.ChainConfig, v any, _ map[string]any) error {
				if asBool(v) {
					cfg.DevServer.Mock = false
				}
				return nil
			},
		},
		{
			Name:     "analyzer",
			Usage:    "run the bundle analyzer",
			Kind:     domain.KindBool,
			Commands: startAndBuild,
			Apply: func(cfg *domain.ChainConfig, v any, args map[string]any) error {
				if !asBool(v) {
					return nil
				}
				port := DefaultAnalyzerPort
				if raw, ok := args["analyzer-port"]; ok {
					p, err := asInt(raw)
					if err != nil {
						return fmt.Errorf("analyzer-port: %w", err)
					}
					port = p
				}
				cfg.AddPlugin(domain.PluginRef{
					Name:    AnalyzerPlugin,
					Options: map[string]any{"analyzerPort": port},
				})
				return nil
			},
		},
		{
			Name:     "analyzer-port",
			Usage:    "bundle analyzer port",
			Kind:     domain.KindNumber,
			Commands: startAndBuild,
		},
		{
			Name:     "mode",
			Usage:    "application mode exposed as process.env.APP_MODE",
			Kind:     domain.KindString,
			Commands: startAndBuild,
			Apply: func(cfg *domain.ChainConfig, v any, _ map[string]any) error {
				cfg.SetDefine("process.env.APP_MODE", strconv.Quote(fmt.Sprint(v)))
				return nil
			},
		},
	}
}

// Registrar registers Options with the host.
type Registrar struct{}

var _ ports.OptionRegistrar = Registrar{}

func (Registrar) RegisterOptions(api ports.API) error {
	for _, opt := range Options() {
		if err := api.RegisterCLIOption(opt); err != nil {
			return fmt.Errorf("register option --%s: %w", opt.Name, err)
		}
	}
	return nil
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	}
	return false
}

func asInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("want integer, got %q", t)
		}
		return n, nil
	}
	return 0, fmt.Errorf("want integer, got %T", v)
}
