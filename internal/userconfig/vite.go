package userconfig

import (
	"fmt"
	"strings"

	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

// webpackOnlyKeys have no vite equivalent.
var webpackOnlyKeys = []string{
	"lazyCompilation",
	"moduleFederation",
	"webpack5",
	"webpackLoaders",
	"webpackPlugins",
}

// ViteValidator reports webpack-only options used in vite mode.
type ViteValidator struct{}

var _ ports.ConfigValidator = ViteValidator{}

func (ViteValidator) InvalidMessage(original map[string]any) string {
	if !Truthy(original["vite"]) {
		return ""
	}
	var found []string
	for _, key := range webpackOnlyKeys {
		if _, ok := original[key]; ok {
			found = append(found, key)
		}
	}
	if len(found) == 0 {
		return ""
	}
	return fmt.Sprintf("vite mode ignores webpack-only options: %s", strings.Join(found, ", "))
}
