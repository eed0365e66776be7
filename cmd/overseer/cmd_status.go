package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"overseer/internal/status"
)

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Probe the configured services once",
		Long: `Probe every service of the configured variant once and print the result.

Exits with status 1 when any service reports an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			services := s.cfg.Services()
			targets := make([]status.Target, 0, len(services))
			for _, svc := range services {
				targets = append(targets, status.Target{Name: svc.Name, URL: svc.ProbeURL})
			}

			report := status.CheckAll(cmd.Context(), s.http, targets)
			out := cmd.OutOrStdout()
			failed := 0
			for _, res := range report {
				if res.Status != status.OK {
					failed++
				}
				line := fmt.Sprintf("%-13s %-6s", res.Name, res.Status)
				if res.Detail != "" {
					line += "  " + res.Detail
				}
				fmt.Fprintln(out, line)
			}
			if !report.Healthy() {
				return &UnhealthyError{Message: fmt.Sprintf("%d of %d services unhealthy", failed, len(report))}
			}
			return nil
		},
	}
}
