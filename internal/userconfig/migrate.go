package userconfig

import (
	"fmt"
	"log/slog"

	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

// VersionKey is the host value recording the schema version the user
// configuration has been migrated to.
const VersionKey = "USER_CONFIG_VERSION"

// Migration rewrites deprecated configuration into its current form.
type Migration struct {
	Version int
	Name    string
	Apply   func(api ports.API) (changed bool, err error)
}

// Migrations are applied in order; each runs at most once per host.
var Migrations = []Migration{
	{Version: 1, Name: "vite-plugins", Apply: migrateVitePlugins},
}

// Migrate brings the user configuration up to the latest version. It is
// idempotent: migrations already recorded under VersionKey are skipped.
func Migrate(api ports.API) error {
	current, _ := api.GetValue(VersionKey).(int)
	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}
		changed, err := m.Apply(api)
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if changed {
			api.Logger().Debug("user config migrated",
				slog.Int("version", m.Version),
				slog.String("migration", m.Name))
		}
		current = m.Version
		api.SetValue(VersionKey, current)
	}
	return nil
}

// migrateVitePlugins folds the deprecated vitePlugin / vitePlugins lists
// into vite.plugins, keeping plugins already listed there first.
func migrateVitePlugins(api ports.API) (bool, error) {
	uc := api.Context().UserConfig
	changed := false
	for _, key := range []string{"vitePlugin", "vitePlugins"} {
		if !uc.Exists(key) {
			continue
		}
		if v := uc.Get(key); v != nil {
			plugins, ok := toSlice(v)
			if !ok {
				plugins = []any{v}
			}
			if err := api.ModifyUserConfig("vite.plugins", plugins, ports.WithDeepMerge()); err != nil {
				return changed, err
			}
		}
		if err := api.ModifyUserConfig(key, nil); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}
