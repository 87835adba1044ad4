package userconfig

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

// TypeError reports a configuration value of the wrong kind.
type TypeError struct {
	Key  string
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("user config %q: want %s, got %T", e.Key, e.Want, e.Got)
}

// ValidationError reports a value rejected by an entry's validator tag.
type ValidationError struct {
	Key   string
	Value any
	Tag   string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("user config %q: value %v fails %q", e.Key, e.Value, e.Tag)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsTypeError reports whether err is or wraps a *TypeError.
func IsTypeError(err error) bool {
	var te *TypeError
	return errors.As(err, &te)
}

// Check fills the default for e when its key is unset, then verifies the
// value's kind and validator tag.
func Check(cfg *Config, e domain.ConfigEntry, v *validator.Validate) error {
	if !cfg.Exists(e.Name) && e.Default != nil {
		if err := cfg.Set(e.Name, e.Default, false); err != nil {
			return err
		}
	}

	value := cfg.Get(e.Name)
	if !e.Accepts(value) {
		return &TypeError{Key: e.Name, Want: e.KindList(), Got: value}
	}

	if e.Validate == "" || v == nil {
		return nil
	}
	switch domain.KindOf(value) {
	case domain.KindString, domain.KindNumber:
		if err := v.Var(value, e.Validate); err != nil {
			return &ValidationError{Key: e.Name, Value: value, Tag: e.Validate, Err: err}
		}
	}
	return nil
}

// Applier registers the standard schema plus plugin custom entries with
// the host and warns about keys nothing recognises.
type Applier struct{}

var _ ports.ConfigApplier = Applier{}

func (Applier) ApplyUserConfig(api ports.API, custom []domain.ConfigEntry) error {
	entries := append(StandardEntries(), custom...)
	if err := api.RegisterUserConfig(entries...); err != nil {
		return fmt.Errorf("register user config: %w", err)
	}

	known := make(map[string]bool, len(entries))
	for _, e := range api.ConfigEntries() {
		known[e.Name] = true
	}
	for _, key := range api.Context().UserConfig.TopLevelKeys() {
		if !known[key] {
			api.Logger().Warn("unrecognised user config key", slog.String("key", key))
		}
	}
	return nil
}
