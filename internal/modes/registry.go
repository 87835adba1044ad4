// Package modes holds the per-command setup handlers and the registry the
// pipeline dispatches through.
//
// # Adding a Mode
//
// Implement ports.ModeSetup and register it explicitly, typically from
// registration.RegisterBuiltins:
//
//	modes.Register(modes.Factory{
//	    Command:     "preview",
//	    Description: "serve the production build locally",
//	    Setup:       Preview{},
//	})
package modes

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

// Factory binds a setup handler to the command it finalizes.
type Factory struct {
	Command     domain.Command
	Description string
	Setup       ports.ModeSetup
}

var (
	modeMu   sync.RWMutex
	modeMap  = make(map[domain.Command]Factory)
	modeList []Factory
)

// Register adds a mode. Panics if the command is empty, the setup is nil,
// or the command is already registered.
func Register(f Factory) {
	modeMu.Lock()
	defer modeMu.Unlock()

	if f.Command == "" {
		panic("mode command cannot be empty")
	}
	if f.Setup == nil {
		panic(fmt.Sprintf("mode %q must have a Setup", f.Command))
	}
	if _, exists := modeMap[f.Command]; exists {
		panic(fmt.Sprintf("mode %q already registered", f.Command))
	}

	modeMap[f.Command] = f
	modeList = append(modeList, f)
}

// Get returns the setup for cmd, if registered.
func Get(cmd domain.Command) (ports.ModeSetup, bool) {
	modeMu.RLock()
	defer modeMu.RUnlock()

	f, ok := modeMap[cmd]
	return f.Setup, ok
}

// IsRegistered returns true if cmd has a setup.
func IsRegistered(cmd domain.Command) bool {
	_, ok := Get(cmd)
	return ok
}

// List returns the registered modes sorted by command.
func List() []Factory {
	modeMu.RLock()
	defer modeMu.RUnlock()

	result := make([]Factory, len(modeList))
	copy(result, modeList)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Command < result[j].Command
	})
	return result
}

// Clear removes all registered modes (for testing only).
func Clear() {
	modeMu.Lock()
	defer modeMu.Unlock()

	modeMap = make(map[domain.Command]Factory)
	modeList = nil
}

// RegisterBuiltins registers the start, build and test setups. Safe to
// call more than once.
func RegisterBuiltins() {
	builtins := []Factory{
		{Command: domain.CommandStart, Description: "development server", Setup: Dev{}},
		{Command: domain.CommandBuild, Description: "production build", Setup: Build{}},
		{Command: domain.CommandTest, Description: "unit test runner", Setup: Test{}},
	}
	for _, f := range builtins {
		if IsRegistered(f.Command) {
			continue
		}
		Register(f)
	}
}
