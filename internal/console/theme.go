package console

import (
	"github.com/charmbracelet/lipgloss"

	"overseer/internal/status"
)

type uiTheme struct {
	root         lipgloss.Style
	header       lipgloss.Style
	headerTitle  lipgloss.Style
	panel        lipgloss.Style
	panelFocus   lipgloss.Style
	panelTitle   lipgloss.Style
	footer       lipgloss.Style
	status       lipgloss.Style
	errorStatus  lipgloss.Style
	inputPanel   lipgloss.Style
	helpText     lipgloss.Style
	outputKey    lipgloss.Style
	entrySelect  lipgloss.Style
	entryPrompt  lipgloss.Style
	modal        lipgloss.Style
	serviceState map[status.Status]lipgloss.Style
}

func newTheme() uiTheme {
	pink := lipgloss.Color("#ff71ce")
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	amber := lipgloss.Color("#ffd166")
	bg := lipgloss.Color("#120924")
	panelBg := lipgloss.Color("#1b0f35")
	text := lipgloss.Color("#f3f3ff")
	muted := lipgloss.Color("#9ca3d8")

	return uiTheme{
		root: lipgloss.NewStyle().
			Background(bg).
			Foreground(text).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		headerTitle: lipgloss.NewStyle().
			Foreground(pink).
			Bold(true),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		panelFocus: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(pink).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().
			Foreground(mint).
			Bold(true),
		footer: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(pink).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(pink).Bold(true),
		inputPanel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(mint).
			Padding(0, 1),
		helpText:    lipgloss.NewStyle().Foreground(muted),
		outputKey:   lipgloss.NewStyle().Foreground(blue).Bold(true),
		entrySelect: lipgloss.NewStyle().Foreground(lipgloss.Color("#22062f")).Background(pink).Bold(true),
		entryPrompt: lipgloss.NewStyle().Foreground(mint),
		modal: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(blue).
			Padding(1, 2),
		serviceState: map[status.Status]lipgloss.Style{
			status.Loading: lipgloss.NewStyle().Foreground(amber).Bold(true),
			status.OK:      lipgloss.NewStyle().Foreground(mint).Bold(true),
			status.Error:   lipgloss.NewStyle().Foreground(pink).Bold(true),
		},
	}
}
