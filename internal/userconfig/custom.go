package userconfig

import (
	"fmt"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
)

// CustomConfigs returns the react-app specific entries for the current
// configuration. Vite projects accept vite plugin lists; webpack projects
// accept webpackPlugins instead.
func CustomConfigs(uc domain.ConfigReader) []domain.ConfigEntry {
	entries := []domain.ConfigEntry{
		{
			Name:    "tildeResolve",
			Kinds:   []domain.Kind{domain.KindBool},
			Default: false,
		},
		{
			Name:  "remoteRuntime",
			Kinds: []domain.Kind{domain.KindBool, domain.KindObject},
		},
	}

	if uc.Truthy("vite") {
		return append(entries,
			domain.ConfigEntry{Name: "vitePlugin", Kinds: []domain.Kind{domain.KindArray, domain.KindObject}},
			domain.ConfigEntry{Name: "vitePlugins", Kinds: []domain.Kind{domain.KindArray}},
		)
	}

	return append(entries, domain.ConfigEntry{
		Name:    "webpackPlugins",
		Kinds:   []domain.Kind{domain.KindObject},
		Default: map[string]any{},
		Apply: func(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
			plugins := value.(map[string]any)
			for _, name := range sortedKeys(plugins) {
				ref := domain.PluginRef{Name: name}
				switch opts := plugins[name].(type) {
				case map[string]any:
					ref.Options = opts
				case bool:
					if !opts {
						continue
					}
				case nil:
				default:
					return fmt.Errorf("webpackPlugins %q: want object or boolean options, got %T", name, opts)
				}
				cfg.AddPlugin(ref)
			}
			return nil
		},
	})
}
