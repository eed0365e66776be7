package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"overseer/internal/config"
)

// readPrompt asks for a prompt interactively. Tests replace it.
var readPrompt = defaultReadPrompt

func defaultReadPrompt(in io.Reader, out io.Writer) (string, error) {
	if !isTerminal(in) {
		return "", errors.New("a prompt argument is required when stdin is not a terminal")
	}

	var prompt string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Prompt for the supervisor").
				CharLimit(4000).
				Value(&prompt),
		),
	).WithInput(in).WithOutput(out).Run()
	if err != nil {
		return "", fmt.Errorf("reading prompt: %w", err)
	}
	return prompt, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newSubmitCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit [prompt...]",
		Short: "Send one prompt to the supervisor",
		Long: `Send one prompt to the supervisor without opening the console.

In the response variant the supervisor's per-agent outputs are printed one
per line. In the log variant the command only confirms acceptance; use
"overseer logs" to read the result once the monitor has recorded it.

With no arguments on a terminal, the prompt is read interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if len(args) == 0 {
				var err error
				prompt, err = readPrompt(cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(prompt) == "" {
				return fmt.Errorf("prompt is empty")
			}

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()
			if s.cfg.Variant == config.VariantResponse {
				outputs, err := s.supervisor.Ask(cmd.Context(), prompt)
				if err != nil {
					return fmt.Errorf("submitting prompt: %w", err)
				}
				if len(outputs) == 0 {
					fmt.Fprintln(out, "(empty response)")
					return nil
				}
				fmt.Fprintln(out, outputs.String())
				return nil
			}

			if err := s.supervisor.Submit(cmd.Context(), prompt); err != nil {
				return fmt.Errorf("submitting prompt: %w", err)
			}
			fmt.Fprintln(out, "submitted")
			return nil
		},
	}
}
