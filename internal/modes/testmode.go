package modes

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

// ValueTestConfig is the host value holding the *TestConfig built for the
// test command.
const ValueTestConfig = "TEST_CONFIG"

// TestConfig is the unit test runner configuration derived from the
// user's build configuration.
type TestConfig struct {
	Environment      string            `json:"testEnvironment"`
	Roots            []string          `json:"roots"`
	SetupFiles       []string          `json:"setupFilesAfterEnv,omitempty"`
	ModuleNameMapper map[string]string `json:"moduleNameMapper"`
	Transform        map[string]string `json:"transform"`
	BabelPresets     []any             `json:"babelPresets,omitempty"`
}

var setupFileExts = []string{".ts", ".tsx", ".js", ".jsx"}

// Test finalizes the test command. It does not touch the task; it
// publishes a TestConfig under ValueTestConfig.
type Test struct{}

func (Test) Setup(api ports.API) error {
	ctx := api.Context()
	uc := ctx.UserConfig
	src := filepath.Join(ctx.RootDir, "src")

	tc := &TestConfig{
		Environment: "jsdom",
		Roots:       []string{src},
		ModuleNameMapper: map[string]string{
			`\.(css|less|scss|sass)$`: "identity-obj-proxy",
			`^@/(.*)$`:                filepath.ToSlash(src) + "/$1",
		},
		Transform: map[string]string{
			`^.+\.(js|jsx|ts|tsx)$`: "babel-jest",
		},
	}

	if uc.Truthy("swc") {
		tc.Transform[`^.+\.(js|jsx|ts|tsx)$`] = "@swc/jest"
	}

	if aliases, ok := uc.Get("alias").(map[string]any); ok {
		names := make([]string, 0, len(aliases))
		for name := range aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			target, ok := aliases[name].(string)
			if !ok {
				continue
			}
			if !filepath.IsAbs(target) {
				target = filepath.Join(ctx.RootDir, target)
			}
			tc.ModuleNameMapper["^"+regexp.QuoteMeta(name)+"/(.*)$"] = filepath.ToSlash(target) + "/$1"
		}
	}

	for _, ext := range setupFileExts {
		candidate := filepath.Join(src, "setupTests"+ext)
		if _, err := os.Stat(candidate); err == nil {
			tc.SetupFiles = append(tc.SetupFiles, candidate)
			break
		}
	}

	if presets, ok := uc.Get("babelPresets").([]any); ok {
		tc.BabelPresets = presets
	}

	api.SetValue(ValueTestConfig, tc)
	api.Logger().Debug("test setup registered",
		slog.String("environment", tc.Environment),
		slog.Int("module_mappers", len(tc.ModuleNameMapper)))
	return nil
}
