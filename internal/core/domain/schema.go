package domain

import (
	"fmt"
	"strings"
)

// Kind is the type class a configuration value may take.
type Kind string

const (
	KindBool   Kind = "boolean"
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindArray  Kind = "array"
	KindObject Kind = "object"
)

// KindOf classifies a decoded configuration value. It returns "" for nil
// and for types configuration files cannot produce.
func KindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case string:
		return KindString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case []any, []string, []AliasRule:
		return KindArray
	case map[string]any, map[string]string:
		return KindObject
	}
	return ""
}

// ConfigEntry describes one recognised user configuration key.
type ConfigEntry struct {
	Name    string
	Kinds   []Kind
	Default any

	// Validate is a validator tag checked against string and number values,
	// for example "oneof=terser esbuild swc".
	Validate string

	// Apply copies the value into a task configuration. Nil when the key
	// only influences plugin behaviour.
	Apply func(cfg *ChainConfig, value any, ctx *Context) error
}

// Accepts reports whether v has one of the entry's kinds. Nil is always
// accepted; it means the key is unset.
func (e ConfigEntry) Accepts(v any) bool {
	if v == nil || len(e.Kinds) == 0 {
		return true
	}
	k := KindOf(v)
	for _, want := range e.Kinds {
		if want == k {
			return true
		}
	}
	return false
}

// KindList renders the accepted kinds for messages.
func (e ConfigEntry) KindList() string {
	parts := make([]string, len(e.Kinds))
	for i, k := range e.Kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, "|")
}

// CLIOption is a command-line option contributed by a plugin.
type CLIOption struct {
	Name     string
	Usage    string
	Kind     Kind
	Commands []Command

	// Apply runs at resolve time when the option was given on the command
	// line. args holds every option value, so related options can be read.
	Apply func(cfg *ChainConfig, value any, args map[string]any) error
}

// AppliesTo reports whether the option is offered for cmd.
func (o CLIOption) AppliesTo(cmd Command) bool {
	for _, c := range o.Commands {
		if c == cmd {
			return true
		}
	}
	return false
}

// AliasRule is a vite resolve.alias entry. Find is a regular expression
// source when Regex is set, otherwise a literal prefix.
type AliasRule struct {
	Find        string `json:"find" koanf:"find"`
	Regex       bool   `json:"regex" koanf:"regex"`
	Replacement string `json:"replacement" koanf:"replacement"`
}

func (r AliasRule) String() string {
	if r.Regex {
		return fmt.Sprintf("/%s/ -> %q", r.Find, r.Replacement)
	}
	return fmt.Sprintf("%q -> %q", r.Find, r.Replacement)
}
