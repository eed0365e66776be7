package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogsCommand(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the monitor's recent log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			n := s.cfg.Logs.Limit
			if cmd.Flags().Changed("limit") {
				if limit < 1 {
					return fmt.Errorf("--limit must be at least 1")
				}
				n = limit
			}
			entries, err := s.monitor.Logs(cmd.Context(), n)
			if err != nil {
				return fmt.Errorf("fetching log feed: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no log entries")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintf(out, "[%s] %s\n", entry.Timestamp, entry.UserPrompt)
				if entry.Summary != "" {
					fmt.Fprintf(out, "  %s\n", entry.Summary)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of entries to fetch (default from config)")
	return cmd
}
