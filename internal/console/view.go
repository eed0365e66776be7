package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"overseer/internal/config"
	"overseer/internal/status"
)

func (m Model) View() string {
	if m.quitConfirm {
		return m.theme.root.Render(m.renderQuitModal())
	}
	header := m.renderHeader()
	content := m.renderContent()
	input := m.renderInput()
	footer := m.renderFooter()
	return m.theme.root.Render(lipgloss.JoinVertical(lipgloss.Left, header, content, input, footer))
}

func (m *Model) renderHeader() string {
	variant := "log feed"
	if m.cfg.Variant == config.VariantResponse {
		variant = "single response"
	}
	meta := fmt.Sprintf("  mode: %s · supervisor: %s · %s", variant, m.cfg.Endpoints.Supervisor.URL, m.phase)
	line := m.theme.headerTitle.Render("Supervisor Console") + m.theme.helpText.Render(meta)
	return m.theme.header.Width(maxInt(20, m.width-4)).Render(line)
}

func (m *Model) layout() (contentHeight, leftWidth, rightWidth int) {
	contentHeight = maxInt(8, m.height-12)
	contentWidth := maxInt(40, m.width-4)
	leftWidth = int(float64(contentWidth) * 0.66)
	rightWidth = contentWidth - leftWidth - 1
	if rightWidth < 28 {
		rightWidth = 28
		leftWidth = contentWidth - rightWidth - 1
	}
	return contentHeight, leftWidth, rightWidth
}

func (m *Model) renderContent() string {
	contentHeight, leftWidth, rightWidth := m.layout()
	resultsStyle := m.theme.panel
	if m.focus == focusResults {
		resultsStyle = m.theme.panelFocus
	}
	left := resultsStyle.Width(leftWidth).Height(contentHeight).Render(
		m.theme.panelTitle.Render(m.results.title()) + "\n" + m.view.View(),
	)
	right := m.theme.panel.Width(rightWidth).Height(contentHeight).Render(
		m.theme.panelTitle.Render("Services") + "\n" + m.renderStatus(rightWidth-4, contentHeight-2),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m *Model) renderStatus(width, height int) string {
	var b strings.Builder
	for _, svc := range m.services {
		res, settled := m.health[svc.Name]
		state := status.Loading
		if settled {
			state = res.Status
		}
		indicator := m.theme.serviceState[state].Render("●")
		label := state.String()
		if !settled {
			label = m.spinner.View() + " " + label
		}
		b.WriteString(fmt.Sprintf("%s %-13s %s\n", indicator, svc.Name, label))
	}

	remaining := height - len(m.services) - 2
	if remaining > 0 && len(m.activity) > 0 {
		b.WriteString("\n")
		b.WriteString(m.theme.panelTitle.Render("Activity"))
		b.WriteString("\n")
		start := maxInt(0, len(m.activity)-remaining+1)
		for _, line := range m.activity[start:] {
			b.WriteString(m.theme.helpText.Render(truncate(line, maxInt(10, width))))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderInput() string {
	contentWidth := maxInt(40, m.width-4)
	inputView := m.input.View()
	if m.phase != PhaseIdle {
		inputView = m.spinner.View() + " " + m.phase.String() + "... " + inputView
	}
	if m.errText != "" {
		inputView += "\n" + m.theme.errorStatus.Render("error: "+compactSingleLine(m.errText, maxInt(20, contentWidth-12)))
	}
	return m.theme.inputPanel.Width(contentWidth).Render(inputView)
}

func (m *Model) renderFooter() string {
	contentWidth := maxInt(40, m.width-4)
	statusStyle := m.theme.status
	lower := strings.ToLower(m.statusLine)
	if strings.Contains(lower, "failed") || strings.Contains(lower, "error") {
		statusStyle = m.theme.errorStatus
	}
	line := statusStyle.Render(compactSingleLine(m.statusLine, 180))
	hints := "Keys: Enter send · Tab switch pane · Esc quit prompt · Ctrl+C quit"
	if m.feed != nil {
		hints = "Keys: Enter send/expand · Tab switch pane · Up/Down select · Ctrl+R refresh · Esc quit prompt · Ctrl+C quit"
	}
	return m.theme.footer.Width(contentWidth).Render(line + "\n" + m.theme.helpText.Render(hints))
}

func (m *Model) renderQuitModal() string {
	canvasWidth := maxInt(40, m.width-4)
	canvasHeight := maxInt(12, m.height-4)
	modalWidth := clampInt(int(float64(canvasWidth)*0.56), 32, 78)
	if modalWidth > canvasWidth-2 {
		modalWidth = canvasWidth - 2
	}
	body := strings.Join([]string{
		m.theme.errorStatus.Render("Quit the console?"),
		"",
		m.theme.helpText.Render("Any pending log refresh will be abandoned."),
		"",
		m.theme.status.Render("[Y / Enter] Quit") + "    " + m.theme.helpText.Render("[N / Esc] Return"),
	}, "\n")
	panel := m.theme.modal.Width(modalWidth).Render(body)
	return lipgloss.Place(canvasWidth, canvasHeight, lipgloss.Center, lipgloss.Center, panel)
}

// renderPanes refreshes the results viewport, keeping the scroll position
// unless the view was pinned to the bottom.
func (m *Model) renderPanes() {
	prevOffset := m.view.YOffset
	contentHeight, leftWidth, _ := m.layout()
	m.view.Width = maxInt(20, leftWidth-4)
	m.view.Height = maxInt(5, contentHeight-3)
	m.view.SetContent(m.results.render(m.theme, m.view.Width))
	m.view.SetYOffset(prevOffset)
}

func (m *Model) resize() {
	contentWidth := maxInt(40, m.width-4)
	m.input.Width = maxInt(20, contentWidth-6)
}
