// Package host is an in-process build host. It implements the capability
// bundle plugins run against: invocation context, user configuration
// writes, host values, CLI options, schema entries and task registration.
// After plugins have run, Resolve applies CLI options and webpack hooks
// to every registered task.
package host

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
	"github.com/tjfontaine/react-app-plugin/internal/userconfig"
)

var (
	ErrTaskExists   = errors.New("task already registered")
	ErrOptionExists = errors.New("cli option already registered")
	ErrEntryExists  = errors.New("user config entry already registered")
)

// Host implements ports.API for a single command invocation.
type Host struct {
	id       string
	command  domain.Command
	rootDir  string
	args     map[string]any
	config   *userconfig.Config
	logger   *slog.Logger
	validate *validator.Validate
	detect   bool

	ctx *domain.Context

	mu       sync.RWMutex
	values   map[string]any
	hooks    []ports.WebpackHook
	tasks    []domain.Task
	options  []domain.CLIOption
	entries  []domain.ConfigEntry
	resolved bool
}

var _ ports.API = (*Host)(nil)

// New creates a host. The original user configuration is snapshotted here,
// before any plugin can modify it.
func New(opts ...Option) (*Host, error) {
	h := &Host{
		id:       uuid.NewString(),
		logger:   slog.Default(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		values:   make(map[string]any),
		args:     make(map[string]any),
	}

	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if h.command == "" {
		return nil, fmt.Errorf("command required (use WithCommand)")
	}
	if h.rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve root dir: %w", err)
		}
		h.rootDir = wd
	}
	if h.config == nil {
		h.config = userconfig.New()
	}

	if h.detect {
		if _, set := h.values[domain.ValueHasJSXRuntime]; !set {
			ok, err := DetectJSXRuntime(h.rootDir)
			if err != nil {
				return nil, fmt.Errorf("detect jsx runtime: %w", err)
			}
			h.values[domain.ValueHasJSXRuntime] = ok
		}
	}

	h.ctx = &domain.Context{
		Command:            h.command,
		RootDir:            h.rootDir,
		UserConfig:         h.config,
		OriginalUserConfig: h.config.Raw(),
		CommandArgs:        h.args,
	}

	h.logger = h.logger.With(slog.String("invocation_id", h.id), slog.String("command", string(h.command)))
	return h, nil
}

// ID identifies this invocation.
func (h *Host) ID() string { return h.id }

// UserConfig returns the live configuration store.
func (h *Host) UserConfig() *userconfig.Config { return h.config }

func (h *Host) Context() *domain.Context { return h.ctx }

func (h *Host) Logger() *slog.Logger { return h.logger }

func (h *Host) OnGetWebpackConfig(hook ports.WebpackHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

func (h *Host) RegisterTask(name string, cfg *domain.ChainConfig) error {
	if name == "" {
		return fmt.Errorf("task name cannot be empty")
	}
	if cfg == nil {
		return fmt.Errorf("task %q: config cannot be nil", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, t := range h.tasks {
		if t.Name == name {
			return fmt.Errorf("%w: %s", ErrTaskExists, name)
		}
	}
	h.tasks = append(h.tasks, domain.Task{Name: name, Config: cfg})
	h.logger.Debug("task registered", slog.String("task", name), slog.String("mode", string(cfg.Mode)))
	return nil
}

// Tasks returns the registered tasks in registration order.
func (h *Host) Tasks() []domain.Task {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.Task, len(h.tasks))
	copy(out, h.tasks)
	return out
}

func (h *Host) GetValue(key string) any {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.values[key]
}

func (h *Host) SetValue(key string, value any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.values[key] = value
}

// Values returns a copy of the host values.
func (h *Host) Values() map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]any, len(h.values))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}

func (h *Host) ModifyUserConfig(key string, value any, opts ...ports.ModifyOption) error {
	var o ports.ModifyOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := h.config.Set(key, value, o.DeepMerge); err != nil {
		return err
	}
	h.logger.Debug("user config modified", slog.String("key", key), slog.Bool("deepmerge", o.DeepMerge))
	return nil
}

func (h *Host) RegisterCLIOption(opt domain.CLIOption) error {
	if opt.Name == "" {
		return fmt.Errorf("cli option name cannot be empty")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, o := range h.options {
		if o.Name == opt.Name {
			return fmt.Errorf("%w: %s", ErrOptionExists, opt.Name)
		}
	}
	h.options = append(h.options, opt)
	return nil
}

// CLIOptions returns the registered options in registration order.
func (h *Host) CLIOptions() []domain.CLIOption {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.CLIOption, len(h.options))
	copy(out, h.options)
	return out
}

func (h *Host) RegisterUserConfig(entries ...domain.ConfigEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("user config entry name cannot be empty")
		}
		for _, existing := range h.entries {
			if existing.Name == e.Name {
				return fmt.Errorf("%w: %s", ErrEntryExists, e.Name)
			}
		}
		if err := userconfig.Check(h.config, e, h.validate); err != nil {
			return err
		}
		h.entries = append(h.entries, e)
	}
	return nil
}

func (h *Host) ConfigEntries() []domain.ConfigEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.ConfigEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Resolve applies every CLI option given on the command line, then every
// webpack hook, to each task. Hooks fill defaults around what the command
// line asked for. It runs once; later calls return the same tasks.
func (h *Host) Resolve() ([]domain.Task, error) {
	h.mu.Lock()
	if h.resolved {
		h.mu.Unlock()
		return h.Tasks(), nil
	}
	h.resolved = true
	hooks := append([]ports.WebpackHook(nil), h.hooks...)
	options := append([]domain.CLIOption(nil), h.options...)
	tasks := append([]domain.Task(nil), h.tasks...)
	h.mu.Unlock()

	known := make(map[string]bool, len(options))
	for _, opt := range options {
		known[opt.Name] = true
	}
	for _, name := range sortedArgNames(h.args) {
		if !known[name] {
			h.logger.Warn("command line option not registered by any plugin", slog.String("option", name))
		}
	}

	for _, t := range tasks {
		for _, opt := range options {
			if opt.Apply == nil || !opt.AppliesTo(h.command) {
				continue
			}
			v, ok := h.args[opt.Name]
			if !ok {
				continue
			}
			if err := opt.Apply(t.Config, v, h.args); err != nil {
				return nil, fmt.Errorf("task %s: option --%s: %w", t.Name, opt.Name, err)
			}
		}
		for i, hook := range hooks {
			if err := hook(t.Config); err != nil {
				return nil, fmt.Errorf("task %s: webpack hook %d: %w", t.Name, i, err)
			}
		}
	}

	h.logger.Info("tasks resolved",
		slog.Int("tasks", len(tasks)),
		slog.Int("hooks", len(hooks)))
	return tasks, nil
}

func sortedArgNames(args map[string]any) []string {
	names := make([]string, 0, len(args))
	for k := range args {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
