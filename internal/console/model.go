// Package console is the interactive operator console: a prompt panel that
// submits to the supervisor, a status panel fed by one-shot health probes,
// and a results panel that shows either the monitor log feed or the
// supervisor's synchronous response.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"overseer/internal/config"
	"overseer/internal/monitor"
	"overseer/internal/status"
	"overseer/internal/supervisor"
)

const activityMaxLines = 50

// Deps are the collaborators the console talks to. Monitor may be nil for
// the response variant.
type Deps struct {
	Supervisor *supervisor.Client
	Monitor    *monitor.Client
	HTTP       *http.Client
	Logger     *slog.Logger
	After      func(time.Duration) <-chan time.Time
	Now        func() time.Time
}

type focusArea int

const (
	focusPrompt focusArea = iota
	focusResults
)

type Model struct {
	ctx  context.Context
	cfg  *config.Config
	deps Deps

	services []config.Service
	health   map[string]status.Result

	phase      Phase
	cycle      int
	lastPrompt string
	poll       *pollState
	errText    string
	statusLine string
	activity   []string

	focus       focusArea
	quitConfirm bool

	results resultsPane
	feed    *logFeedPane
	answer  *responsePane

	width  int
	height int

	input   textinput.Model
	view    viewport.Model
	spinner spinner.Model
	theme   uiTheme
}

// New builds the console. ctx bounds every request and post-submit wait;
// cancel it when the program exits.
func New(ctx context.Context, cfg *config.Config, deps Deps) Model {
	if deps.HTTP == nil {
		deps.HTTP = &http.Client{Timeout: cfg.HTTP.Timeout}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.After == nil {
		deps.After = time.After
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 4000
	input.Placeholder = "Describe what the supervisor should do, then press Enter."
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	view := viewport.New(0, 0)
	view.MouseWheelEnabled = true
	view.MouseWheelDelta = 4

	m := Model{
		ctx:        ctx,
		cfg:        cfg,
		deps:       deps,
		services:   cfg.Services(),
		health:     map[string]status.Result{},
		statusLine: "probing services...",
		activity:   []string{},
		input:      input,
		view:       view,
		spinner:    sp,
		theme:      newTheme(),
	}
	if cfg.Variant == config.VariantLog {
		m.feed = newLogFeedPane()
		m.results = m.feed
	} else {
		m.answer = &responsePane{}
		m.results = m.answer
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, textinput.Blink}
	for _, svc := range m.services {
		cmds = append(cmds, probeCmd(m.ctx, m.deps, status.Target{Name: svc.Name, URL: svc.ProbeURL}))
	}
	if m.feed != nil {
		cmds = append(cmds, fetchLogsCmd(m.ctx, m.deps, m.cfg.Logs.Limit, 0))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case probeDoneMsg:
		m.health[msg.result.Name] = msg.result
		if msg.result.Status != status.OK {
			m.appendLog(fmt.Sprintf("%s probe failed: %s", msg.result.Name, msg.result.Detail))
		}
		if m.probesSettled() && m.phase == PhaseIdle && m.statusLine == "probing services..." {
			m.statusLine = "ready"
		}
		m.renderPanes()
	case submittedMsg:
		if msg.cycle != m.cycle || m.phase != PhaseSubmitting {
			break
		}
		if msg.err != nil {
			m.fail(msg.err)
			break
		}
		m.appendLog("prompt accepted: " + compactSingleLine(m.lastPrompt, 120))
		m.phase = PhaseWaiting
		if m.cfg.Refresh.Strategy == config.StrategyPoll {
			m.poll = &pollState{
				prompt:   m.lastPrompt,
				known:    m.feed.keys(),
				deadline: m.deps.Now().Add(m.cfg.Refresh.MaxWait),
			}
			m.statusLine = "submitted · polling log feed"
			cmds = append(cmds, waitCmd(m.ctx, m.deps.After, m.cfg.Refresh.PollInterval, m.cycle))
		} else {
			m.statusLine = fmt.Sprintf("submitted · refreshing log feed in %s", m.cfg.Refresh.Delay)
			cmds = append(cmds, waitCmd(m.ctx, m.deps.After, m.cfg.Refresh.Delay, m.cycle))
		}
	case refreshDueMsg:
		if msg.cycle != m.cycle || m.phase != PhaseWaiting {
			break
		}
		m.phase = PhaseRefreshing
		cmds = append(cmds, fetchLogsCmd(m.ctx, m.deps, m.cfg.Logs.Limit, m.cycle))
	case logsMsg:
		if cmd := m.applyLogs(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		m.renderPanes()
	case answeredMsg:
		if msg.cycle != m.cycle || m.phase != PhaseSubmitting {
			break
		}
		if msg.err != nil {
			m.fail(msg.err)
			m.renderPanes()
			break
		}
		m.answer.set(msg.outputs)
		m.input.SetValue("")
		m.statusLine = fmt.Sprintf("response received · %s", plural(len(msg.outputs), "output"))
		m.appendLog("response received for: " + compactSingleLine(m.lastPrompt, 120))
		m.finishCycle()
		m.renderPanes()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderPanes()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		if m.quitConfirm {
			break
		}
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.quitConfirm {
		switch key {
		case "y", "Y", "enter":
			return m, tea.Quit
		case "n", "N", "esc":
			m.quitConfirm = false
			m.statusLine = "quit canceled"
		}
		return m, nil
	}

	switch key {
	case "esc":
		m.quitConfirm = true
		return m, nil
	case "tab", "shift+tab":
		if m.focus == focusPrompt {
			m.focus = focusResults
			m.input.Blur()
		} else {
			m.focus = focusPrompt
			if m.phase == PhaseIdle {
				m.input.Focus()
			}
		}
		m.renderPanes()
		return m, nil
	case "ctrl+r":
		return m, m.refreshLogs()
	}

	if m.focus == focusResults {
		var cmd tea.Cmd
		switch key {
		case "up", "k":
			if m.feed != nil {
				m.feed.move(-1)
			} else {
				m.view.ScrollUp(1)
			}
		case "down", "j":
			if m.feed != nil {
				m.feed.move(1)
			} else {
				m.view.ScrollDown(1)
			}
		case "enter", " ":
			if m.feed != nil {
				m.feed.toggle()
			}
		case "r":
			cmd = m.refreshLogs()
		default:
			m.view, cmd = m.view.Update(msg)
		}
		m.renderPanes()
		return m, cmd
	}

	if key == "enter" {
		return m, m.submit()
	}
	if m.phase != PhaseIdle {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a cycle. Whitespace-only prompts are ignored with no state
// change; so is Enter while a cycle is already running.
func (m *Model) submit() tea.Cmd {
	if m.phase != PhaseIdle {
		return nil
	}
	prompt := m.input.Value()
	if strings.TrimSpace(prompt) == "" {
		return nil
	}
	m.cycle++
	m.phase = PhaseSubmitting
	m.lastPrompt = prompt
	m.errText = ""
	m.input.Blur()
	if m.answer != nil {
		m.answer.clear()
	}
	m.statusLine = "submitting..."
	m.deps.Logger.Info("submitting prompt", "cycle", m.cycle, "variant", m.cfg.Variant)
	m.renderPanes()
	return submitCmd(m.ctx, m.deps, m.cfg.Variant, m.cycle, prompt)
}

func (m *Model) refreshLogs() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	m.statusLine = "refreshing log feed..."
	return fetchLogsCmd(m.ctx, m.deps, m.cfg.Logs.Limit, 0)
}

func (m *Model) applyLogs(msg logsMsg) tea.Cmd {
	if m.feed == nil {
		return nil
	}
	manual := msg.cycle == 0
	if !manual && (msg.cycle != m.cycle || m.phase != PhaseRefreshing) {
		return nil
	}
	if msg.err != nil {
		m.errText = msg.err.Error()
		m.statusLine = "log feed refresh failed"
		m.appendLog("log feed: " + msg.err.Error())
		if !manual {
			m.finishCycle()
		}
		return nil
	}
	m.feed.replace(msg.entries)
	m.errText = ""
	if manual {
		m.statusLine = "log feed refreshed"
		return nil
	}
	if m.poll != nil && !m.poll.satisfied(msg.entries) {
		if m.deps.Now().Before(m.poll.deadline) {
			m.phase = PhaseWaiting
			return waitCmd(m.ctx, m.deps.After, m.cfg.Refresh.PollInterval, m.cycle)
		}
		m.statusLine = "no new log entry yet · press ctrl+r to check again"
		m.finishCycle()
		return nil
	}
	m.statusLine = "log feed refreshed"
	m.finishCycle()
	return nil
}

func (m *Model) fail(err error) {
	m.errText = err.Error()
	m.statusLine = "submission failed"
	m.appendLog("error: " + err.Error())
	m.deps.Logger.Warn("submission failed", "cycle", m.cycle, "error", err)
	m.finishCycle()
}

func (m *Model) finishCycle() {
	m.phase = PhaseIdle
	m.poll = nil
	if m.focus == focusPrompt {
		m.input.Focus()
	}
}

func (m Model) probesSettled() bool {
	for _, svc := range m.services {
		if _, ok := m.health[svc.Name]; !ok {
			return false
		}
	}
	return true
}

func (m *Model) appendLog(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	m.activity = append(m.activity, fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), compactSingleLine(trimmed, 220)))
	if len(m.activity) > activityMaxLines {
		m.activity = m.activity[len(m.activity)-activityMaxLines:]
	}
}
