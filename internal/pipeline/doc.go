// Package pipeline is the react-app build plugin: an ordered table of
// rules evaluated against the host capability bundle.
//
// # Rules
//
// Each rule has a name, an order, an optional predicate and an effect:
//
//	validate         log (never fail) when the raw config is invalid for vite
//	migrate          move vitePlugin / vitePlugins into vite.plugins, once
//	cli-options      register command-line options
//	user-config      register the configuration schema and fill defaults
//	jsx-runtime      HAS_JSX_RUNTIME: append the automatic JSX preset
//	swc-minify       swc and no minify in the raw config: minify = "swc"
//	tilde-resolve    tildeResolve and vite: alias ^~ to ""
//	resolve-modules  hook adding <root>/node_modules to resolve.modules
//	register-task    build, enhance and register the "web" task
//	mode-setup       dispatch the start, build or test handler
//	remote-runtime   remoteRuntime set: prepare it and wait
//
// Rules run sequentially and later predicates see the configuration
// written by earlier rules. A failing rule stops the run and is reported
// as a *RuleError carrying the rule name.
package pipeline
