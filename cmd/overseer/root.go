package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"overseer/internal/config"
	"overseer/internal/monitor"
	"overseer/internal/supervisor"
)

var version = "dev"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath      string
	variant         string
	supervisorURL   string
	orchestratorURL string
	monitorURL      string
	logFile         string
	debug           bool
}

// session is the resolved configuration plus the clients built from it.
type session struct {
	cfg        *config.Config
	logger     *slog.Logger
	http       *http.Client
	supervisor *supervisor.Client
	monitor    *monitor.Client
	close      func()
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "overseer",
		Short: "Overseer - terminal console for the supervisor agent",
		Long: `Overseer is a terminal console for a multi-agent supervisor.

It submits prompts to the supervisor, shows the health of the supervisor,
orchestrator and monitor services, and displays either the monitor's log
feed or the supervisor's direct response.

Run without a subcommand to open the interactive console.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (default: search upward for "+config.FileName+")")
	flags.StringVar(&opts.variant, "variant", "", "Console variant: log or response")
	flags.StringVar(&opts.supervisorURL, "supervisor-url", "", "Supervisor base URL")
	flags.StringVar(&opts.orchestratorURL, "orchestrator-url", "", "Orchestrator base URL")
	flags.StringVar(&opts.monitorURL, "monitor-url", "", "Monitor base URL")
	flags.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newConsoleCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newSubmitCommand(opts))
	cmd.AddCommand(newLogsCommand(opts))

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}

// resolveConfig loads the layered config and applies flag overrides last.
func (o *rootOptions) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	cfg, err := config.Load(o.configPath, wd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("variant") {
		cfg.Variant = o.variant
	}
	if flags.Changed("supervisor-url") {
		cfg.Endpoints.Supervisor.URL = o.supervisorURL
	}
	if flags.Changed("orchestrator-url") {
		cfg.Endpoints.Orchestrator.URL = o.orchestratorURL
	}
	if flags.Changed("monitor-url") {
		cfg.Endpoints.Monitor.URL = o.monitorURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) newLogger() (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	if o.logFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}

func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := o.newLogger()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	logger.Debug("configuration resolved",
		"variant", cfg.Variant,
		"supervisor", cfg.Endpoints.Supervisor.URL,
		"refresh", cfg.Refresh.Strategy,
	)

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	s := &session{
		cfg:        cfg,
		logger:     logger,
		http:       httpClient,
		supervisor: supervisor.NewClient(cfg.Endpoints.Supervisor.URL, httpClient, logger),
		monitor:    monitor.NewClient(cfg.Endpoints.Monitor.URL, httpClient, logger),
		close:      closeLog,
	}
	return s, nil
}
