// Package remoteruntime serves a project's runtime dependencies from a
// shared, prebuilt runtime instead of bundling them. Setup selects the
// dependencies, writes the runtime manifest and maps every selected
// package to a global exposed by the runtime.
package remoteruntime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
	"github.com/tjfontaine/react-app-plugin/internal/pkgjson"
)

const (
	DefaultRuntimeDir = "node_modules/.cache/remote-runtime"
	ManifestFile      = "manifest.json"
	GlobalName        = "__REMOTE_RUNTIME__"
	PluginName        = "RemoteRuntimePlugin"

	// ValueManifest is the host value holding the manifest path.
	ValueManifest = "REMOTE_RUNTIME_MANIFEST"
)

// Config is the remoteRuntime section of the user configuration.
type Config struct {
	// Include lists package patterns (path.Match syntax) to serve from the
	// runtime. Empty means every dependency.
	Include []string `koanf:"include"`
	// Exclude lists package patterns to keep bundled.
	Exclude []string `koanf:"exclude"`
	// ActiveInBuild enables the runtime for production builds too.
	ActiveInBuild bool `koanf:"activeInBuild"`
	// RuntimeDir is where the manifest is written, relative to the root.
	RuntimeDir string `koanf:"runtimeDir"`
}

// Manifest describes the packages the runtime provides.
type Manifest struct {
	Global   string    `json:"global"`
	Packages []Package `json:"packages"`
}

type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ParseConfig decodes the user's remoteRuntime value. true selects the
// defaults.
func ParseConfig(raw any) (Config, error) {
	var cfg Config
	switch v := raw.(type) {
	case bool:
	case map[string]any:
		k := koanf.New("|")
		if err := k.Load(confmap.Provider(v, ""), nil); err != nil {
			return cfg, fmt.Errorf("load remoteRuntime: %w", err)
		}
		if err := k.Unmarshal("", &cfg); err != nil {
			return cfg, fmt.Errorf("decode remoteRuntime: %w", err)
		}
	default:
		return cfg, fmt.Errorf("remoteRuntime: want boolean or object, got %T", raw)
	}
	if cfg.RuntimeDir == "" {
		cfg.RuntimeDir = DefaultRuntimeDir
	}
	return cfg, nil
}

// Runtime implements ports.RemoteRuntime.
type Runtime struct{}

var _ ports.RemoteRuntime = Runtime{}

func (Runtime) Setup(ctx context.Context, api ports.API, raw any) error {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return err
	}

	pctx := api.Context()
	logger := api.Logger()
	if pctx.Command == domain.CommandBuild && !cfg.ActiveInBuild {
		logger.Info("remote runtime disabled for build (set remoteRuntime.activeInBuild to enable)")
		return nil
	}

	m, err := pkgjson.Read(pctx.RootDir)
	if err != nil {
		return fmt.Errorf("remote runtime: %w", err)
	}

	manifest := Manifest{
		Global:   GlobalName,
		Packages: Select(m.Dependencies, cfg.Include, cfg.Exclude),
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := cfg.RuntimeDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(pctx.RootDir, dir)
	}
	manifestPath, err := writeManifest(dir, manifest)
	if err != nil {
		return fmt.Errorf("remote runtime: %w", err)
	}

	api.SetValue(ValueManifest, manifestPath)
	api.OnGetWebpackConfig(func(c *domain.ChainConfig) error {
		for _, p := range manifest.Packages {
			c.SetExternal(p.Name, fmt.Sprintf("window.%s[%q]", GlobalName, p.Name))
		}
		c.AddPlugin(domain.PluginRef{
			Name:    PluginName,
			Options: map[string]any{"manifest": manifestPath},
		})
		return nil
	})

	logger.Info("remote runtime prepared",
		slog.Int("packages", len(manifest.Packages)),
		slog.String("manifest", manifestPath))
	return nil
}

// Select returns the dependencies matching include (all when empty) and
// not matching exclude, sorted by name.
func Select(deps map[string]string, include, exclude []string) []Package {
	var out []Package
	for name, version := range deps {
		if len(include) > 0 && !matchAny(include, name) {
			continue
		}
		if matchAny(exclude, name) {
			continue
		}
		out = append(out, Package{Name: name, Version: version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

func writeManifest(dir string, m Manifest) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create runtime dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	p := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return p, nil
}
