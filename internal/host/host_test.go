package host

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

func newTestHost(t *testing.T, opts ...Option) *Host {
	t.Helper()
	base := []Option{
		WithCommand(domain.CommandStart),
		WithRootDir(t.TempDir()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	h, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func TestNew_RequiresCommand(t *testing.T) {
	if _, err := New(WithRootDir(t.TempDir())); err == nil {
		t.Error("expected error without command")
	}
}

func TestNew_NilUserConfig(t *testing.T) {
	if _, err := New(WithCommand(domain.CommandBuild), WithUserConfig(nil)); err == nil {
		t.Error("expected error for nil user config")
	}
}

func TestHost_OriginalConfigSnapshot(t *testing.T) {
	h := newTestHost(t, WithUserConfigMap(map[string]any{"vitePlugins": []any{"a"}}))

	if err := h.ModifyUserConfig("vitePlugins", nil); err != nil {
		t.Fatalf("ModifyUserConfig: %v", err)
	}
	if err := h.ModifyUserConfig("minify", "swc"); err != nil {
		t.Fatalf("ModifyUserConfig: %v", err)
	}

	ctx := h.Context()
	if !ctx.HasOriginal("vitePlugins") {
		t.Error("original lost vitePlugins")
	}
	if ctx.HasOriginal("minify") {
		t.Error("original gained minify")
	}
	if ctx.UserConfig.Exists("vitePlugins") {
		t.Error("live config still has vitePlugins")
	}
	if h.Context() != ctx {
		t.Error("context replaced")
	}
}

func TestHost_ModifyUserConfigDeepMerge(t *testing.T) {
	h := newTestHost(t, WithUserConfigMap(map[string]any{"babelPresets": []any{"env"}}))

	if err := h.ModifyUserConfig("babelPresets", []any{"react"}, ports.WithDeepMerge()); err != nil {
		t.Fatalf("ModifyUserConfig: %v", err)
	}
	if got := h.UserConfig().Get("babelPresets"); !reflect.DeepEqual(got, []any{"env", "react"}) {
		t.Errorf("babelPresets = %#v", got)
	}

	if err := h.ModifyUserConfig("babelPresets", []any{"only"}); err != nil {
		t.Fatalf("ModifyUserConfig: %v", err)
	}
	if got := h.UserConfig().Get("babelPresets"); !reflect.DeepEqual(got, []any{"only"}) {
		t.Errorf("babelPresets = %#v", got)
	}
}

func TestHost_RegisterTask(t *testing.T) {
	h := newTestHost(t)

	if err := h.RegisterTask("", &domain.ChainConfig{}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := h.RegisterTask("web", nil); err == nil {
		t.Error("expected error for nil config")
	}
	if err := h.RegisterTask("web", &domain.ChainConfig{}); err != nil {
		t.Fatalf("RegisterTask: %v", err)
	}
	if err := h.RegisterTask("web", &domain.ChainConfig{}); !errors.Is(err, ErrTaskExists) {
		t.Errorf("duplicate err = %v, want ErrTaskExists", err)
	}
	if tasks := h.Tasks(); len(tasks) != 1 || tasks[0].Name != "web" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestHost_RegisterCLIOption(t *testing.T) {
	h := newTestHost(t)

	if err := h.RegisterCLIOption(domain.CLIOption{}); err == nil {
		t.Error("expected error for empty name")
	}
	opt := domain.CLIOption{Name: "port", Kind: domain.KindNumber}
	if err := h.RegisterCLIOption(opt); err != nil {
		t.Fatalf("RegisterCLIOption: %v", err)
	}
	if err := h.RegisterCLIOption(opt); !errors.Is(err, ErrOptionExists) {
		t.Errorf("duplicate err = %v, want ErrOptionExists", err)
	}
}

func TestHost_RegisterUserConfig(t *testing.T) {
	h := newTestHost(t, WithUserConfigMap(map[string]any{"swc": true}))

	entries := []domain.ConfigEntry{
		{Name: "swc", Kinds: []domain.Kind{domain.KindBool}, Default: false},
		{Name: "outputDir", Kinds: []domain.Kind{domain.KindString}, Default: "build"},
	}
	if err := h.RegisterUserConfig(entries...); err != nil {
		t.Fatalf("RegisterUserConfig: %v", err)
	}
	uc := h.UserConfig()
	if uc.Get("swc") != true {
		t.Error("existing value overwritten by default")
	}
	if uc.Get("outputDir") != "build" {
		t.Error("default not filled")
	}
	if err := h.RegisterUserConfig(entries[0]); !errors.Is(err, ErrEntryExists) {
		t.Errorf("duplicate err = %v, want ErrEntryExists", err)
	}
	if err := h.RegisterUserConfig(domain.ConfigEntry{}); err == nil {
		t.Error("expected error for empty entry name")
	}
	if got := len(h.ConfigEntries()); got != 2 {
		t.Errorf("entries = %d, want 2", got)
	}
}

func TestHost_Values(t *testing.T) {
	h := newTestHost(t, WithValue("FLAG", 1))
	h.SetValue("OTHER", "x")

	if h.GetValue("FLAG") != 1 || h.GetValue("OTHER") != "x" {
		t.Errorf("values = %v", h.Values())
	}
	values := h.Values()
	values["FLAG"] = 2
	if h.GetValue("FLAG") != 1 {
		t.Error("Values returned the live map")
	}
}

func TestHost_ResolveOrder(t *testing.T) {
	var order []string
	h := newTestHost(t, WithCommandArgs(map[string]any{"port": 4000}))

	if err := h.RegisterCLIOption(domain.CLIOption{
		Name:     "port",
		Kind:     domain.KindNumber,
		Commands: []domain.Command{domain.CommandStart},
		Apply: func(cfg *domain.ChainConfig, v any, _ map[string]any) error {
			order = append(order, "option")
			cfg.DevServer.Port = v.(int)
			return nil
		},
	}); err != nil {
		t.Fatal(err)
	}
	h.OnGetWebpackConfig(func(cfg *domain.ChainConfig) error {
		order = append(order, "hook1")
		if cfg.DevServer.Port == 0 {
			cfg.DevServer.Port = 3333
		}
		return nil
	})
	h.OnGetWebpackConfig(func(cfg *domain.ChainConfig) error {
		order = append(order, "hook2")
		return nil
	})
	if err := h.RegisterTask("web", &domain.ChainConfig{}); err != nil {
		t.Fatal(err)
	}

	tasks, err := h.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"option", "hook1", "hook2"}) {
		t.Errorf("order = %v", order)
	}
	if tasks[0].Config.DevServer.Port != 4000 {
		t.Errorf("port = %d, want 4000", tasks[0].Config.DevServer.Port)
	}

	// Resolve runs once.
	if _, err := h.Resolve(); err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if len(order) != 3 {
		t.Errorf("hooks ran again: %v", order)
	}
}

func TestHost_ResolveSkipsOptionsForOtherCommands(t *testing.T) {
	h := newTestHost(t, WithCommandArgs(map[string]any{"analyzer": true}))
	called := false
	if err := h.RegisterCLIOption(domain.CLIOption{
		Name:     "analyzer",
		Commands: []domain.Command{domain.CommandBuild},
		Apply: func(*domain.ChainConfig, any, map[string]any) error {
			called = true
			return nil
		},
	}); err != nil {
		t.Fatal(err)
	}
	if err := h.RegisterTask("web", &domain.ChainConfig{}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if called {
		t.Error("build-only option applied to start")
	}
}

func TestHost_ResolveErrors(t *testing.T) {
	var logs bytes.Buffer
	h := newTestHost(t,
		WithCommandArgs(map[string]any{"unknown": true}),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	h.OnGetWebpackConfig(func(*domain.ChainConfig) error { return errors.New("boom") })
	if err := h.RegisterTask("web", &domain.ChainConfig{}); err != nil {
		t.Fatal(err)
	}

	_, err := h.Resolve()
	if err == nil || !strings.Contains(err.Error(), "task web: webpack hook 0: boom") {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(logs.String(), "option=unknown") {
		t.Errorf("unregistered option not warned:\n%s", logs.String())
	}
}

func TestHost_LoggerCarriesInvocation(t *testing.T) {
	var logs bytes.Buffer
	h := newTestHost(t, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	h.Logger().Info("hello")
	if !strings.Contains(logs.String(), "invocation_id="+h.ID()) || !strings.Contains(logs.String(), "command=start") {
		t.Errorf("log = %s", logs.String())
	}
}
