// Package userconfig holds the user's build configuration: a dotted-key
// store, the schema of recognised keys, the migration of deprecated keys
// and loading from build.yaml / build.json and the environment.
package userconfig

import (
	"fmt"
	"sort"
	"sync"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
)

// Config is a concurrency-safe user configuration store. Keys are dotted
// paths ("vite.resolve.alias").
type Config struct {
	mu sync.RWMutex
	k  *koanf.Koanf
}

var _ domain.ConfigReader = (*Config)(nil)

// New returns an empty configuration.
func New() *Config {
	return &Config{k: koanf.New(".")}
}

// FromMap builds a configuration from a nested map. The map is copied.
func FromMap(m map[string]any) (*Config, error) {
	c := New()
	if len(m) == 0 {
		return c, nil
	}
	if err := c.k.Load(confmap.Provider(m, ""), nil); err != nil {
		return nil, fmt.Errorf("load config map: %w", err)
	}
	return c, nil
}

func (c *Config) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k.Get(key)
}

func (c *Config) Exists(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k.Exists(key)
}

func (c *Config) Truthy(key string) bool {
	return Truthy(c.Get(key))
}

func (c *Config) TopLevelKeys() []string {
	raw := c.Raw()
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Config) Raw() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k.Raw()
}

// Set writes value at key. With deep set, value is deep-merged into the
// current value (see DeepMerge); otherwise it replaces it. A nil value
// removes the key.
func (c *Config) Set(key string, value any, deep bool) error {
	if key == "" {
		return fmt.Errorf("config key cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if value == nil {
		c.k.Delete(key)
		return nil
	}
	if deep {
		value = DeepMerge(c.k.Get(key), value)
	}

	// koanf merges maps on Set; delete first so replace really replaces.
	c.k.Delete(key)
	if err := c.k.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Truthy reports whether v counts as enabled: anything except nil,
// false, a zero number or an empty string. Empty objects and arrays are
// enabled.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	}
	return true
}
