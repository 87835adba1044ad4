// Package webpack builds the bundler configuration for the react-app
// task: mode defaults, user configuration applied on top, and the settings
// shared by every mode.
package webpack

import (
	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

// Extensions are resolved in this order when an import omits one.
var Extensions = []string{".js", ".jsx", ".ts", ".tsx", ".json", ".mjs"}

// Factory builds mode defaults.
type Factory struct{}

var _ ports.BaseConfigFactory = Factory{}

func (Factory) NewBaseConfig(mode domain.Mode) *domain.ChainConfig {
	cfg := &domain.ChainConfig{
		Mode: mode,
		Output: domain.Output{
			PublicPath:    "/",
			Filename:      "js/[name].js",
			ChunkFilename: "js/[name].chunk.js",
		},
		Resolve: domain.Resolve{
			Modules:    []string{"node_modules"},
			Extensions: append([]string(nil), Extensions...),
		},
		Babel: domain.Babel{Loader: "babel-loader"},
		Optimization: domain.Optimization{
			SplitChunks: true,
		},
	}

	switch mode {
	case domain.ModeDevelopment:
		cfg.Devtool = "cheap-module-source-map"
		cfg.DevServer = domain.DevServer{
			Hot:                true,
			LiveReload:         true,
			Open:               true,
			Mock:               true,
			HistoryAPIFallback: true,
		}
	default:
		cfg.Optimization.Minimize = true
		cfg.Optimization.Minimizer = "terser"
	}
	return cfg
}
