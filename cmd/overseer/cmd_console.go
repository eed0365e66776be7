package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"overseer/internal/console"
)

func newConsoleCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Open the interactive console",
		Long: `Open the interactive console.

Type a prompt and press Enter to send it to the supervisor. In the log
variant the monitor's feed is re-read after the configured delay; in the
response variant the supervisor's reply is shown directly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, opts)
		},
	}
}

func runConsole(cmd *cobra.Command, opts *rootOptions) error {
	if !isTerminal(cmd.InOrStdin()) {
		return errors.New("the console needs an interactive terminal; use status, submit or logs instead")
	}
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := console.New(ctx, s.cfg, console.Deps{
		Supervisor: s.supervisor,
		Monitor:    s.monitor,
		HTTP:       s.http,
		Logger:     s.logger,
	})

	programOpts := []tea.ProgramOption{tea.WithMouseCellMotion(), tea.WithContext(ctx)}
	if s.cfg.UseAltScreen() {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	s.logger.Info("console starting", "variant", s.cfg.Variant)
	_, err = tea.NewProgram(model, programOpts...).Run()
	// abandon any pending post-submit wait
	cancel()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("console failed: %w", err)
	}
	s.logger.Info("console stopped")
	return nil
}
