package webpack

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/host"
)

func newHost(t *testing.T, root string, cfg map[string]any) *host.Host {
	t.Helper()
	h, err := host.New(
		host.WithCommand(domain.CommandBuild),
		host.WithRootDir(root),
		host.WithUserConfigMap(cfg),
		host.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("host.New: %v", err)
	}
	return h
}

func TestFactory(t *testing.T) {
	dev := Factory{}.NewBaseConfig(domain.ModeDevelopment)
	if dev.Mode != domain.ModeDevelopment || !dev.DevServer.Hot || dev.Optimization.Minimize {
		t.Errorf("development = %+v", dev)
	}
	if dev.Devtool != "cheap-module-source-map" {
		t.Errorf("devtool = %q", dev.Devtool)
	}

	prod := Factory{}.NewBaseConfig(domain.ModeProduction)
	if !prod.Optimization.Minimize || prod.Optimization.Minimizer != "terser" {
		t.Errorf("optimization = %+v", prod.Optimization)
	}
	if prod.DevServer.Hot {
		t.Error("production has dev server settings")
	}

	prod.Resolve.Extensions[0] = ".changed"
	if Extensions[0] != ".js" {
		t.Error("base config shares the Extensions slice")
	}
}

func TestEnhancer(t *testing.T) {
	h := newHost(t, "/app", map[string]any{"outputDir": "dist", "swc": true, "ignored": 1})
	err := h.RegisterUserConfig(
		domain.ConfigEntry{
			Name:  "outputDir",
			Kinds: []domain.Kind{domain.KindString},
			Apply: func(cfg *domain.ChainConfig, v any, ctx *domain.Context) error {
				cfg.Output.Path = filepath.Join(ctx.RootDir, v.(string))
				return nil
			},
		},
		domain.ConfigEntry{Name: "swc", Kinds: []domain.Kind{domain.KindBool}},
		domain.ConfigEntry{
			Name: "unset",
			Apply: func(*domain.ChainConfig, any, *domain.Context) error {
				t.Error("apply called for unset key")
				return nil
			},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := Enhancer{}.Enhance(h, Factory{}.NewBaseConfig(domain.ModeProduction))
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if cfg.Output.Path != filepath.Join("/app", "dist") {
		t.Errorf("path = %s", cfg.Output.Path)
	}
	if cfg.Define["process.env.NODE_ENV"] != `"production"` {
		t.Errorf("define = %v", cfg.Define)
	}
}

func TestEnhancer_ApplyError(t *testing.T) {
	h := newHost(t, t.TempDir(), map[string]any{"bad": true})
	if err := h.RegisterUserConfig(domain.ConfigEntry{
		Name: "bad",
		Apply: func(*domain.ChainConfig, any, *domain.Context) error {
			return errors.New("boom")
		},
	}); err != nil {
		t.Fatal(err)
	}
	_, err := Enhancer{}.Enhance(h, &domain.ChainConfig{})
	if err == nil || err.Error() != "apply user config bad: boom" {
		t.Errorf("err = %v", err)
	}
}

func TestBase(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "public"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "public", "index.html"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	h := newHost(t, root, nil)

	cfg := &domain.ChainConfig{Output: domain.Output{PublicPath: "/app/"}}
	if err := (Base{}).SetBase(h, cfg); err != nil {
		t.Fatalf("SetBase: %v", err)
	}

	if got := cfg.Entry["index"]; len(got) != 1 || got[0] != "src/index" {
		t.Errorf("entry = %v", cfg.Entry)
	}
	if cfg.Template != filepath.Join(root, "public", "index.html") {
		t.Errorf("template = %q", cfg.Template)
	}
	if cfg.Resolve.Alias["@"] != filepath.Join(root, "src") {
		t.Errorf("alias @ = %q", cfg.Resolve.Alias["@"])
	}
	if len(cfg.Resolve.Extensions) != len(Extensions) {
		t.Errorf("extensions = %v", cfg.Resolve.Extensions)
	}
	if cfg.Define["process.env.PUBLIC_URL"] != `"/app"` {
		t.Errorf("PUBLIC_URL = %s", cfg.Define["process.env.PUBLIC_URL"])
	}
}

func TestBase_KeepsUserSettings(t *testing.T) {
	h := newHost(t, t.TempDir(), nil)
	cfg := &domain.ChainConfig{
		Entry:   map[string][]string{"main": {"src/main"}},
		Resolve: domain.Resolve{Alias: map[string]string{"@": "/custom"}, Extensions: []string{".vue"}},
	}
	if err := (Base{}).SetBase(h, cfg); err != nil {
		t.Fatalf("SetBase: %v", err)
	}
	if _, ok := cfg.Entry["index"]; ok {
		t.Error("default entry added")
	}
	if cfg.Resolve.Alias["@"] != "/custom" {
		t.Errorf("alias @ = %q", cfg.Resolve.Alias["@"])
	}
	if cfg.Resolve.Extensions[0] != ".vue" || len(cfg.Resolve.Extensions) != len(Extensions)+1 {
		t.Errorf("extensions = %v", cfg.Resolve.Extensions)
	}
	if cfg.Template != "" {
		t.Errorf("template = %q, want none without public/index.html", cfg.Template)
	}
}
