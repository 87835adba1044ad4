package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/tjfontaine/react-app-plugin/internal/cliopts"
	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/modes"
	"github.com/tjfontaine/react-app-plugin/internal/registration"
	"github.com/tjfontaine/react-app-plugin/internal/runtime"
	"github.com/tjfontaine/react-app-plugin/internal/server"
	"github.com/tjfontaine/react-app-plugin/internal/storage"
	"github.com/tjfontaine/react-app-plugin/internal/storage/sqlite"
	"github.com/tjfontaine/react-app-plugin/internal/telemetry"
	"github.com/tjfontaine/react-app-plugin/internal/userconfig"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	registration.RegisterBuiltins()

	app := &cli.Command{
		Name:  "reactbuild",
		Usage: "resolve the build configuration of a react app",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: "project root", Value: "."},
			&cli.StringFlag{Name: "config", Usage: "user config file (yaml or json)"},
			&cli.StringFlag{Name: "record", Usage: "record invocations in this SQLite database"},
			&cli.StringFlag{Name: "log-format", Usage: "json or text", Value: "text"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", Value: "info"},
			&cli.BoolFlag{Name: "trace", Usage: "print pipeline spans to stderr"},
		},
		Commands: append(modeCommands(), inspectCommand(), historyCommand()),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// modeCommands returns one subcommand per registered mode.
func modeCommands() []*cli.Command {
	var cmds []*cli.Command
	for _, f := range modes.List() {
		cmds = append(cmds, runCommand(f.Command, "resolve the "+f.Description+" configuration"))
	}
	return cmds
}

func runCommand(cmd domain.Command, usage string) *cli.Command {
	return &cli.Command{
		Name:  string(cmd),
		Usage: usage,
		Flags: cliopts.Flags(cmd),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger, err := newLogger(c)
			if err != nil {
				return err
			}
			shutdown, err := initTracing(c, logger)
			if err != nil {
				return err
			}
			defer shutdown()

			r, err := newRunner(c, logger, cmd, cliopts.Args(c, cmd))
			if err != nil {
				return err
			}
			defer closeRunner(r, logger)

			res, err := r.Run(ctx)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, res.Invocation.Tasks)
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "run a command and serve its configuration over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address", Value: ":7001"},
			&cli.StringFlag{Name: "command", Usage: "start, build or test", Value: string(domain.CommandStart)},
			&cli.BoolFlag{Name: "watch", Usage: "re-run when the user config file changes"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger, err := newLogger(c)
			if err != nil {
				return err
			}
			shutdown, err := initTracing(c, logger)
			if err != nil {
				return err
			}
			defer shutdown()

			r, err := newRunner(c, logger, domain.Command(c.String("command")), nil)
			if err != nil {
				return err
			}
			defer closeRunner(r, logger)

			res, err := r.Run(ctx)
			if res == nil {
				return err
			}
			if err != nil {
				logger.Warn("serving failed invocation", slog.String("error", err.Error()))
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(c.String("addr"), logger, res.Invocation, r.History())

			if c.Bool("watch") {
				path, ok := r.ConfigPath()
				if !ok {
					return fmt.Errorf("--watch: no user config file in %s", c.String("root"))
				}
				w, err := userconfig.NewWatcher(path, logger)
				if err != nil {
					return err
				}
				defer w.Close()
				if err := w.Watch(ctx, func() {
					res, err := r.Run(ctx)
					if res == nil {
						logger.Error("re-run failed", slog.String("error", err.Error()))
						return
					}
					srv.SetCurrent(res.Invocation)
				}); err != nil {
					return err
				}
			}

			return srv.Start(ctx)
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list recorded invocations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "command", Usage: "only list this command"},
			&cli.IntFlag{Name: "limit", Usage: "maximum entries", Value: storage.DefaultListLimit},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.String("record")
			if path == "" {
				return fmt.Errorf("--record is required")
			}
			store, err := sqlite.New(path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			list, err := store.ListInvocations(ctx, storage.ListOptions{
				Command: domain.Command(c.String("command")),
				Limit:   c.Int("limit"),
			})
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, list)
		},
	}
}

func newRunner(c *cli.Command, logger *slog.Logger, cmd domain.Command, args map[string]any) (*runtime.Runner, error) {
	opts := []runtime.Option{
		runtime.WithCommand(cmd),
		runtime.WithRootDir(c.String("root")),
		runtime.WithLogger(logger),
	}
	if f := c.String("config"); f != "" {
		opts = append(opts, runtime.WithConfigFile(f))
	}
	if len(args) > 0 {
		opts = append(opts, runtime.WithCommandArgs(args))
	}
	if db := c.String("record"); db != "" {
		opts = append(opts, runtime.WithSQLite(db))
	}
	return runtime.New(opts...)
}

func closeRunner(r *runtime.Runner, logger *slog.Logger) {
	if err := r.Close(); err != nil {
		logger.Error("failed to close history", slog.String("error", err.Error()))
	}
}

func newLogger(c *cli.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(c.String("log-format")) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return nil, fmt.Errorf("invalid --log-format %q", c.String("log-format"))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

func initTracing(c *cli.Command, logger *slog.Logger) (func(), error) {
	if !c.Bool("trace") {
		return func() {}, nil
	}
	shutdown, err := telemetry.InitTracer(telemetry.ServiceName, os.Stderr, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize tracer: %w", err)
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
