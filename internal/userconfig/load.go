package userconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override file configuration.
// REACT_APP_BUILD_OUTPUTDIR=dist sets outputDir; "__" separates nested keys.
const EnvPrefix = "REACT_APP_BUILD_"

// DefaultFiles are tried in order when no config path is given.
var DefaultFiles = []string{"build.yaml", "build.yml", "build.json"}

// Load reads the user configuration for the project at rootDir. When path
// is empty the first of DefaultFiles that exists is used, and a project
// without one gets an empty configuration. Environment variables are
// layered over the file.
func Load(rootDir, path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	path, _ = Locate(rootDir, path)

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	return &Config{k: k}, nil
}

// Locate returns the configuration file Load reads for rootDir. An
// explicit path is resolved against rootDir and reported as found whether
// or not it exists; otherwise the first existing DefaultFiles entry is
// used.
func Locate(rootDir, path string) (string, bool) {
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(rootDir, path)
		}
		return path, true
	}
	for _, name := range DefaultFiles {
		candidate := filepath.Join(rootDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	}
	return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .json)", filepath.Ext(path))
}

// envKey maps REACT_APP_BUILD_DEVSERVER__PORT=8080 to ("devServer.port", 8080).
// Segments are matched case-insensitively against the standard schema so
// camelCase keys survive the upper-case environment.
func envKey(key, value string) (string, any) {
	key = strings.TrimPrefix(key, EnvPrefix)
	parts := strings.Split(key, "__")
	for i, p := range parts {
		parts[i] = canonicalKey(p)
	}
	return strings.Join(parts, "."), coerce(value)
}

var knownKeys = map[string]string{}

func init() {
	for _, e := range StandardEntries() {
		knownKeys[strings.ToLower(e.Name)] = e.Name
	}
	for _, name := range []string{"tildeResolve", "remoteRuntime", "webpackPlugins", "host", "port", "https", "hot", "liveReload", "open", "historyApiFallback"} {
		knownKeys[strings.ToLower(name)] = name
	}
}

func canonicalKey(s string) string {
	if name, ok := knownKeys[strings.ToLower(s)]; ok {
		return name
	}
	return strings.ToLower(s)
}

func coerce(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return v
}
