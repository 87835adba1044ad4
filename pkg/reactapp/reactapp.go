// Package reactapp provides the public API for embedding the react-app
// build plugin. This is the stable API for external consumers.
package reactapp

import (
	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/runtime"
)

// Runner loads a project's configuration and runs the plugin against it.
// See internal/runtime.Runner for full documentation.
type Runner = runtime.Runner

// Result is the outcome of Runner.Run.
type Result = runtime.Result

// Option is a functional option for configuring a Runner.
type Option = runtime.Option

// Command and task types.
type (
	Command     = domain.Command
	Task        = domain.Task
	ChainConfig = domain.ChainConfig
	Invocation  = domain.Invocation
)

const (
	CommandStart = domain.CommandStart
	CommandBuild = domain.CommandBuild
	CommandTest  = domain.CommandTest
)

// New creates a new Runner with the given options.
// Example:
//
//	r, err := reactapp.New(
//	    reactapp.WithCommand(reactapp.CommandBuild),
//	    reactapp.WithRootDir("./web"),
//	)
//	res, err := r.Run(ctx)
var New = runtime.New

// Configuration options
var (
	// Project
	WithCommand       = runtime.WithCommand
	WithRootDir       = runtime.WithRootDir
	WithConfigFile    = runtime.WithConfigFile
	WithUserConfigMap = runtime.WithUserConfigMap
	WithCommandArgs   = runtime.WithCommandArgs

	// Host values
	WithValue           = runtime.WithValue
	WithoutJSXDetection = runtime.WithoutJSXDetection

	// History
	WithSQLite        = runtime.WithSQLite
	WithMemoryHistory = runtime.WithMemoryHistory

	// Advanced options
	WithLogger        = runtime.WithLogger
	WithHistoryStore  = runtime.WithHistoryStore
	WithPluginOptions = runtime.WithPluginOptions
)
