package registration

import (
	"github.com/tjfontaine/react-app-plugin/internal/modes"
)

// RegisterBuiltins registers the built-in mode setups explicitly.
// This replaces init-based side effects and is intended to be called from
// cmd/reactbuild and tests before the pipeline dispatches modes.
func RegisterBuiltins() {
	modes.RegisterBuiltins()
}
