package domain

// Command identifies the build-tool command a plugin runs under.
type Command string

const (
	CommandStart Command = "start"
	CommandBuild Command = "build"
	CommandTest  Command = "test"
)

// Mode is the bundler mode a task is built for.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ValueHasJSXRuntime is the host value set when the project's react
// supports the automatic JSX runtime.
const ValueHasJSXRuntime = "HAS_JSX_RUNTIME"

// ModeFor returns the bundler mode for a command. Only start runs in
// development; build, test and anything else build for production.
func ModeFor(cmd Command) Mode {
	if cmd == CommandStart {
		return ModeDevelopment
	}
	return ModeProduction
}

// ConfigReader is a read-only view over user configuration.
type ConfigReader interface {
	// Get returns the value at a dotted key, or nil.
	Get(key string) any
	// Exists reports whether a dotted key is present.
	Exists(key string) bool
	// Truthy reports whether the value at key is set to something other
	// than nil, false, zero or an empty string.
	Truthy(key string) bool
	// TopLevelKeys returns the sorted first-level keys.
	TopLevelKeys() []string
	// Raw returns a deep copy of the nested configuration map.
	Raw() map[string]any
}

// Context is the per-invocation record handed to plugins by the host.
// It is created once and never replaced while a plugin runs; UserConfig
// is a live view whose writes go through the host.
type Context struct {
	Command Command
	RootDir string

	// UserConfig is the normalized configuration.
	UserConfig ConfigReader

	// OriginalUserConfig is the raw configuration exactly as loaded,
	// before migrations and defaults.
	OriginalUserConfig map[string]any

	// CommandArgs holds CLI option values keyed by option name.
	CommandArgs map[string]any
}

// HasOriginal reports whether the raw configuration defined key at the
// top level.
func (c *Context) HasOriginal(key string) bool {
	if c == nil || c.OriginalUserConfig == nil {
		return false
	}
	_, ok := c.OriginalUserConfig[key]
	return ok
}

// Task is a named build configuration registered with the host.
type Task struct {
	Name   string       `json:"name"`
	Config *ChainConfig `json:"config"`
}
