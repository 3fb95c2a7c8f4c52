package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/action"
	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/config"
	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/events"
	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/history"
	"github.com/vamsiprasad-ctrl/Ai-Based-Virtual-interaction-system/internal/observability"
)

const defaultConfigPath = "vis.yaml"

// loadAppConfig loads the config file from --config (or ./vis.yaml),
// falling back to the built-in defaults when the file does not exist.
func loadAppConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		path = defaultConfigPath
	}
	return config.NewLoader(config.NewValidator()).LoadWithDefaults(path)
}

// newAppLogger builds the process logger; --verbose forces debug level.
func newAppLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return observability.NewLogger(os.Stderr, level, cfg.Logging.Format)
}

// app holds the assembled coordination pipeline.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	bus      *events.Bus
	recorder *history.Recorder

	closers []func() error
}

// newApp wires config -> registry -> history sinks -> cooldowns -> mapper
// -> bus. The bus is not started; callers start and close it.
func newApp(cfg *config.Config, logger *slog.Logger, exec action.Executor) (*app, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	recorderOpts := []history.RecorderOption{history.WithRecorderLogger(logger)}
	if cfg.History.LogFile != "" {
		sink, err := history.OpenLogFile(cfg.History.LogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open action log: %w", err)
		}
		a.closers = append(a.closers, sink.Close)
		recorderOpts = append(recorderOpts, history.WithSink(sink))
	}
	if cfg.History.Database.Enabled {
		store, err := history.OpenStore(cfg.History.Database.Path)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to open action store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		recorderOpts = append(recorderOpts, history.WithSink(store))
	}
	a.recorder = history.NewRecorder(cfg.History.Capacity, recorderOpts...)

	cooldowns := action.NewCooldownTracker(
		action.CooldownScope(cfg.CooldownScope()),
		cfg.Cooldown.Default,
		cfg.Cooldown.PerAction,
	)

	var mapper *action.Mapper
	a.bus = events.NewBus(reg, events.DispatcherFunc(func(ctx context.Context, ev events.Event) error {
		return mapper.Dispatch(ctx, ev)
	}),
		events.WithQueueSize(cfg.Bus.QueueSize),
		events.WithSubmitTimeout(cfg.Bus.SubmitTimeout),
		events.WithDispatchTimeout(cfg.Bus.DispatchTimeout),
		events.WithDebug(cfg.Bus.Debug || verbose),
		events.WithLogger(logger),
	)
	mapper = action.NewMapper(reg, cooldowns, exec, a.recorder,
		action.WithMapperLogger(logger),
		action.WithPauseToggler(a.bus),
	)

	return a, nil
}

// close releases the history sinks. The bus is closed separately so the
// queue drains before the sinks go away.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close history sink", "error", err)
		}
	}
	a.closers = nil
}

// printSummary renders the final counters and recent actions.
func (a *app) printSummary(cmd *cobra.Command) {
	status := a.bus.Status()
	c := status.Counters

	heading := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	cmd.Println(heading("Session summary"))
	cmd.Printf("  submitted: %d  processed: %d  executed: %d\n", c.Submitted, c.Processed, c.Executed)
	cmd.Printf("  blocked: %d  throttled: %d  paused drops: %d  producer drops: %d\n",
		c.Blocked, c.Throttled, c.PausedDrops, c.ProducerDrops)
	if c.Stalls > 0 || c.ExecFailures > 0 || c.Errors > 0 {
		cmd.Printf("  stalls: %d  exec failures: %d  errors: %d\n", c.Stalls, c.ExecFailures, c.Errors)
	}

	stats := a.recorder.Stats()
	if len(stats) > 0 {
		cmd.Println(heading("Action counts"))
		for key, n := range stats {
			cmd.Printf("  %s %s: %d\n", key.Action, dim("("+string(key.Source)+")"), n)
		}
	}

	recent := a.recorder.Recent(10)
	if len(recent) > 0 {
		cmd.Println(heading("Recent actions"))
		for _, rec := range recent {
			cmd.Println("  " + history.FormatLine(rec))
		}
	}
}

// consoleExecutor prints actions instead of injecting OS input.
type consoleExecutor struct {
	out *color.Color
}

func newConsoleExecutor() *consoleExecutor {
	return &consoleExecutor{out: color.New(color.FgGreen)}
}

func (e *consoleExecutor) Execute(_ context.Context, name string) error {
	_, err := e.out.Printf("-> %s\n", name)
	return err
}

var _ action.Executor = (*consoleExecutor)(nil)
