// Package runtime provides the Runner that loads a project's
// configuration, runs the react-app plugin against an in-process host and
// records the outcome.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
	"github.com/tjfontaine/react-app-plugin/internal/host"
	"github.com/tjfontaine/react-app-plugin/internal/pipeline"
	"github.com/tjfontaine/react-app-plugin/internal/registration"
	"github.com/tjfontaine/react-app-plugin/internal/userconfig"
)

// Runner is the main entry point for running the plugin against a project.
// Runner can be embedded in larger tools or driven by cmd/reactbuild.
type Runner struct {
	// Dependencies (injected via options)
	command    domain.Command
	rootDir    string
	configFile string
	configMap  map[string]any
	args       map[string]any
	values     map[string]any
	detectJSX  bool
	history    ports.HistoryStore
	pluginOpts []pipeline.Option
	logger     *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Result is the outcome of one Run.
type Result struct {
	Invocation *domain.Invocation
	Host       *host.Host
}

// New creates a Runner with the given options.
// By default the project is the working directory, the configuration is
// read from its build.yaml/build.json and JSX runtime support is detected
// from package.json.
func New(opts ...Option) (*Runner, error) {
	r := &Runner{
		logger:    slog.Default(),
		args:      make(map[string]any),
		values:    make(map[string]any),
		detectJSX: true,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if r.command == "" {
		return nil, fmt.Errorf("command required (use WithCommand)")
	}
	if r.rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve root dir: %w", err)
		}
		r.rootDir = wd
	}

	registration.RegisterBuiltins()
	return r, nil
}

// Run executes the plugin once. The returned Result is non-nil whenever
// a host was created, including when the plugin failed, so the failure
// can be inspected and recorded.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	cfg, err := r.loadUserConfig()
	if err != nil {
		return nil, err
	}

	hostOpts := []host.Option{
		host.WithCommand(r.command),
		host.WithRootDir(r.rootDir),
		host.WithUserConfig(cfg),
		host.WithCommandArgs(r.args),
		host.WithLogger(r.logger),
	}
	for k, v := range r.values {
		hostOpts = append(hostOpts, host.WithValue(k, v))
	}
	if r.detectJSX {
		hostOpts = append(hostOpts, host.WithJSXDetection())
	}

	h, err := host.New(hostOpts...)
	if err != nil {
		return nil, fmt.Errorf("create host: %w", err)
	}

	plugin, err := pipeline.New(r.pluginOpts...)
	if err != nil {
		return nil, fmt.Errorf("create plugin: %w", err)
	}

	runErr := plugin.Run(ctx, h)
	var tasks []domain.Task
	if runErr == nil {
		tasks, runErr = h.Resolve()
	}

	inv := &domain.Invocation{
		ID:             h.ID(),
		Command:        r.command,
		RootDir:        r.rootDir,
		Status:         domain.InvocationSucceeded,
		Duration:       time.Since(start),
		CreatedAt:      start,
		OriginalConfig: h.Context().OriginalUserConfig,
		Config:         h.UserConfig().Raw(),
		Values:         h.Values(),
		Tasks:          tasks,
	}
	if runErr != nil {
		inv.Status = domain.InvocationFailed
		inv.Error = runErr.Error()
	}

	logger := h.Logger()
	if r.history != nil {
		// Record even when ctx is canceled so failed runs keep a trace.
		if err := r.history.RecordInvocation(context.WithoutCancel(ctx), inv); err != nil {
			logger.Error("failed to record invocation", slog.String("error", err.Error()))
		}
	}

	result := &Result{Invocation: inv, Host: h}
	if runErr != nil {
		logger.Error("plugin failed",
			slog.String("error", runErr.Error()),
			slog.Duration("duration", inv.Duration))
		return result, runErr
	}

	logger.Info("plugin finished",
		slog.Int("tasks", len(tasks)),
		slog.Duration("duration", inv.Duration))
	return result, nil
}

// loadUserConfig returns a fresh configuration for one Run. The host
// normalizes it in place, so it is never shared between runs.
func (r *Runner) loadUserConfig() (*userconfig.Config, error) {
	if r.configMap != nil {
		cfg, err := userconfig.FromMap(r.configMap)
		if err != nil {
			return nil, fmt.Errorf("load user config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := userconfig.Load(r.rootDir, r.configFile)
	if err != nil {
		return nil, fmt.Errorf("load user config: %w", err)
	}
	return cfg, nil
}

// ConfigPath returns the configuration file Run reads, if any.
func (r *Runner) ConfigPath() (string, bool) {
	if r.configMap != nil {
		return "", false
	}
	return userconfig.Locate(r.rootDir, r.configFile)
}

// History returns the configured history store, or nil.
func (r *Runner) History() ports.HistoryStore {
	return r.history
}

// Close releases the history store.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.history == nil {
		return nil
	}
	r.closed = true
	return r.history.Close()
}
