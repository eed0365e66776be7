package console

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"overseer/internal/config"
	"overseer/internal/monitor"
	"overseer/internal/status"
	"overseer/internal/supervisor"
)

// Phase is the submission cycle state. Every cycle ends in PhaseIdle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseWaiting
	PhaseRefreshing
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseWaiting:
		return "waiting"
	case PhaseRefreshing:
		return "refreshing"
	default:
		return "idle"
	}
}

type probeDoneMsg struct {
	result status.Result
}

// submittedMsg settles a log-variant submission.
type submittedMsg struct {
	cycle int
	err   error
}

// answeredMsg settles a response-variant submission.
type answeredMsg struct {
	cycle   int
	outputs supervisor.Outputs
	err     error
}

// refreshDueMsg fires when the post-submit wait elapses.
type refreshDueMsg struct {
	cycle int
}

// logsMsg carries a fetched feed. cycle is zero for a manual refresh.
type logsMsg struct {
	cycle   int
	entries []monitor.LogEntry
	err     error
}

func probeCmd(ctx context.Context, deps Deps, target status.Target) tea.Cmd {
	return func() tea.Msg {
		return probeDoneMsg{result: status.Check(ctx, deps.HTTP, target)}
	}
}

func submitCmd(ctx context.Context, deps Deps, variant string, cycle int, prompt string) tea.Cmd {
	if variant == config.VariantResponse {
		return func() tea.Msg {
			outputs, err := deps.Supervisor.Ask(ctx, prompt)
			return answeredMsg{cycle: cycle, outputs: outputs, err: err}
		}
	}
	return func() tea.Msg {
		return submittedMsg{cycle: cycle, err: deps.Supervisor.Submit(ctx, prompt)}
	}
}

// waitCmd sleeps for d unless ctx ends first, in which case it yields no
// message so nothing reaches a torn-down console.
func waitCmd(ctx context.Context, after func(time.Duration) <-chan time.Time, d time.Duration, cycle int) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case <-after(d):
			if ctx.Err() != nil {
				return nil
			}
			return refreshDueMsg{cycle: cycle}
		}
	}
}

func fetchLogsCmd(ctx context.Context, deps Deps, limit, cycle int) tea.Cmd {
	return func() tea.Msg {
		entries, err := deps.Monitor.Logs(ctx, limit)
		if ctx.Err() != nil {
			return nil
		}
		return logsMsg{cycle: cycle, entries: entries, err: err}
	}
}

// pollState tracks a bounded poll for the entry produced by one submission.
type pollState struct {
	prompt   string
	known    map[string]bool
	deadline time.Time
}

func (s pollState) satisfied(entries []monitor.LogEntry) bool {
	return containsNew(entries, s.prompt, s.known)
}
