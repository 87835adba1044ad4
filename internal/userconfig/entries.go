package userconfig

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
)

const (
	DefaultOutputDir    = "build"
	DefaultEntry        = "src/index"
	DefaultBrowserslist = "defaults"
)

// StandardEntries returns the configuration keys every project accepts.
func StandardEntries() []domain.ConfigEntry {
	return []domain.ConfigEntry{
		{
			Name:    "entry",
			Kinds:   []domain.Kind{domain.KindString, domain.KindArray, domain.KindObject},
			Default: DefaultEntry,
			Apply:   applyEntry,
		},
		{
			Name:     "outputDir",
			Kinds:    []domain.Kind{domain.KindString},
			Default:  DefaultOutputDir,
			Validate: "required",
			Apply: func(cfg *domain.ChainConfig, value any, ctx *domain.Context) error {
				cfg.Output.Path = projectPath(ctx.RootDir, value.(string))
				return nil
			},
		},
		{
			Name:    "publicPath",
			Kinds:   []domain.Kind{domain.KindString},
			Default: "/",
			Apply: func(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
				if cfg.Mode == domain.ModeProduction {
					cfg.Output.PublicPath = value.(string)
				}
				return nil
			},
		},
		{
			Name:    "devPublicPath",
			Kinds:   []domain.Kind{domain.KindString},
			Default: "/",
			Apply: func(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
				if cfg.Mode == domain.ModeDevelopment {
					cfg.Output.PublicPath = value.(string)
				}
				return nil
			},
		},
		{
			Name:    "hash",
			Kinds:   []domain.Kind{domain.KindBool, domain.KindString},
			Default: false,
			Apply:   applyHash,
		},
		{
			Name:     "minify",
			Kinds:    []domain.Kind{domain.KindBool, domain.KindString},
			Default:  true,
			Validate: "oneof=terser esbuild swc",
			Apply:    applyMinify,
		},
		{
			Name:    "sourceMap",
			Kinds:   []domain.Kind{domain.KindBool, domain.KindString},
			Default: false,
			Apply: func(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
				if cfg.Mode != domain.ModeProduction {
					return nil
				}
				switch v := value.(type) {
				case string:
					cfg.Devtool = v
				case bool:
					if v {
						cfg.Devtool = "source-map"
					}
				}
				return nil
			},
		},
		{
			Name:    "alias",
			Kinds:   []domain.Kind{domain.KindObject},
			Default: map[string]any{},
			Apply: func(cfg *domain.ChainConfig, value any, ctx *domain.Context) error {
				for from, to := range value.(map[string]any) {
					s, ok := to.(string)
					if !ok {
						return fmt.Errorf("alias %q: want string target, got %T", from, to)
					}
					if strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") {
						s = projectPath(ctx.RootDir, s)
					}
					cfg.SetAlias(from, s)
				}
				return nil
			},
		},
		{
			Name:    "define",
			Kinds:   []domain.Kind{domain.KindObject},
			Default: map[string]any{},
			Apply: func(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
				for k, v := range value.(map[string]any) {
					cfg.SetDefine(k, literal(v))
				}
				return nil
			},
		},
		{
			Name:    "externals",
			Kinds:   []domain.Kind{domain.KindObject},
			Default: map[string]any{},
			Apply: func(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
				for k, v := range value.(map[string]any) {
					cfg.SetExternal(k, fmt.Sprint(v))
				}
				return nil
			},
		},
		{
			Name:    "babelPresets",
			Kinds:   []domain.Kind{domain.KindArray},
			Default: []any{},
			Apply: func(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
				cfg.Babel.Presets, _ = toSlice(value)
				return nil
			},
		},
		{
			Name:    "babelPlugins",
			Kinds:   []domain.Kind{domain.KindArray},
			Default: []any{},
			Apply: func(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
				cfg.Babel.Plugins, _ = toSlice(value)
				return nil
			},
		},
		{
			Name:    "devServer",
			Kinds:   []domain.Kind{domain.KindObject},
			Default: map[string]any{},
			Apply: func(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
				return decodeOver(value.(map[string]any), &cfg.DevServer)
			},
		},
		{
			Name:    "browserslist",
			Kinds:   []domain.Kind{domain.KindString, domain.KindArray},
			Default: DefaultBrowserslist,
		},
		{
			Name:    "vite",
			Kinds:   []domain.Kind{domain.KindBool, domain.KindObject},
			Default: false,
			Apply: func(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
				switch v := value.(type) {
				case map[string]any:
					cfg.Vite = v
				case bool:
					if v {
						cfg.Vite = map[string]any{}
					}
				}
				return nil
			},
		},
		{
			Name:    "swc",
			Kinds:   []domain.Kind{domain.KindBool},
			Default: false,
			Apply: func(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
				if value.(bool) {
					cfg.Babel.Loader = "swc-loader"
				}
				return nil
			},
		},
	}
}

func applyEntry(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
	entry := make(map[string][]string)
	switch v := value.(type) {
	case string:
		entry["index"] = []string{v}
	case []any:
		entry["index"] = stringsOf(v)
	case map[string]any:
		for name, e := range v {
			switch ev := e.(type) {
			case string:
				entry[name] = []string{ev}
			case []any:
				entry[name] = stringsOf(ev)
			default:
				return fmt.Errorf("entry %q: want string or array, got %T", name, e)
			}
		}
	}
	cfg.Entry = entry
	return nil
}

func applyHash(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
	placeholder := ""
	switch v := value.(type) {
	case bool:
		if v {
			placeholder = "hash:6"
		}
	case string:
		placeholder = v
	}
	if placeholder == "" {
		cfg.Output.Filename = "js/[name].js"
		cfg.Output.ChunkFilename = "js/[name].chunk.js"
		return nil
	}
	cfg.Output.Filename = fmt.Sprintf("js/[name].[%s].js", placeholder)
	cfg.Output.ChunkFilename = fmt.Sprintf("js/[name].[%s].chunk.js", placeholder)
	return nil
}

func applyMinify(cfg *domain.ChainConfig, value any, _ *domain.Context) error {
	if cfg.Mode != domain.ModeProduction {
		cfg.Optimization.Minimize = false
		return nil
	}
	switch v := value.(type) {
	case bool:
		cfg.Optimization.Minimize = v
		if v {
			cfg.Optimization.Minimizer = "terser"
		} else {
			cfg.Optimization.Minimizer = ""
		}
	case string:
		cfg.Optimization.Minimize = true
		cfg.Optimization.Minimizer = v
	}
	return nil
}

// decodeOver decodes m into out, leaving fields m does not name untouched.
func decodeOver(m map[string]any, out any) error {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(m, ""), nil); err != nil {
		return err
	}
	return k.UnmarshalWithConf("", out, koanf.UnmarshalConf{Tag: "json"})
}

func projectPath(rootDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rootDir, p)
}

// literal renders a configuration value as source text for a define.
func literal(v any) string {
	switch t := v.(type) {
	case string:
		return strconv.Quote(t)
	case nil:
		return "undefined"
	}
	return fmt.Sprint(v)
}

func stringsOf(in []any) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// sortedKeys is used where map iteration order would leak into output.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
