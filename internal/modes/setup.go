package modes

import (
	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 3333

	RefreshPlugin = "ReactRefreshWebpackPlugin"
)

// Dev finalizes the start command: dev server address and fast refresh.
type Dev struct{}

func (Dev) Setup(api ports.API) error {
	api.OnGetWebpackConfig(func(cfg *domain.ChainConfig) error {
		if cfg.DevServer.Host == "" {
			cfg.DevServer.Host = DefaultHost
		}
		if cfg.DevServer.Port == 0 {
			cfg.DevServer.Port = DefaultPort
		}
		if cfg.DevServer.Hot && cfg.Vite == nil {
			cfg.AddPlugin(domain.PluginRef{Name: RefreshPlugin})
		}
		return nil
	})
	api.Logger().Debug("dev setup registered")
	return nil
}

// Build finalizes the build command.
type Build struct{}

func (Build) Setup(api ports.API) error {
	api.OnGetWebpackConfig(func(cfg *domain.ChainConfig) error {
		cfg.Output.Clean = true
		if cfg.Performance.Hints == "" {
			cfg.Performance.Hints = "warning"
		}
		return nil
	})
	api.Logger().Debug("build setup registered")
	return nil
}
