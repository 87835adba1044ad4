package webpack

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

// Enhancer applies every registered user config entry to a task
// configuration, in registration order.
type Enhancer struct{}

var _ ports.ConfigEnhancer = Enhancer{}

func (Enhancer) Enhance(api ports.API, cfg *domain.ChainConfig) (*domain.ChainConfig, error) {
	ctx := api.Context()
	for _, e := range api.ConfigEntries() {
		if e.Apply == nil {
			continue
		}
		v := ctx.UserConfig.Get(e.Name)
		if v == nil {
			continue
		}
		if err := e.Apply(cfg, v, ctx); err != nil {
			return nil, fmt.Errorf("apply user config %s: %w", e.Name, err)
		}
	}
	cfg.SetDefine("process.env.NODE_ENV", strconv.Quote(string(cfg.Mode)))
	return cfg, nil
}

// Base applies settings shared by every mode.
type Base struct{}

var _ ports.BaseSetup = Base{}

func (Base) SetBase(api ports.API, cfg *domain.ChainConfig) error {
	root := api.Context().RootDir

	if len(cfg.Entry) == 0 {
		cfg.Entry = map[string][]string{"index": {"src/index"}}
	}

	if cfg.Template == "" {
		tmpl := filepath.Join(root, "public", "index.html")
		if _, err := os.Stat(tmpl); err == nil {
			cfg.Template = tmpl
		}
	}

	if _, ok := cfg.Resolve.Alias["@"]; !ok {
		cfg.SetAlias("@", filepath.Join(root, "src"))
	}

	for _, ext := range Extensions {
		if !slices.Contains(cfg.Resolve.Extensions, ext) {
			cfg.Resolve.Extensions = append(cfg.Resolve.Extensions, ext)
		}
	}

	cfg.SetDefine("process.env.PUBLIC_URL", strconv.Quote(strings.TrimSuffix(cfg.Output.PublicPath, "/")))
	return nil
}
