package console

import (
	"encoding/json"
	"fmt"
	"strings"

	"overseer/internal/monitor"
	"overseer/internal/supervisor"
)

// resultsPane renders the variant-specific body of the results panel.
type resultsPane interface {
	title() string
	render(theme uiTheme, width int) string
}

// logFeedPane shows the most recent monitor entries. Each entry can be
// expanded in place to show its raw per-agent outputs.
type logFeedPane struct {
	entries  []monitor.LogEntry
	expanded map[string]bool
	selected int
	fetched  bool
}

func newLogFeedPane() *logFeedPane {
	return &logFeedPane{expanded: map[string]bool{}}
}

func (p *logFeedPane) title() string {
	if !p.fetched {
		return "Recent Activity"
	}
	return fmt.Sprintf("Recent Activity (%s)", plural(len(p.entries), "entry"))
}

// replace swaps in a freshly fetched list. Expansion survives for ids that
// are still present.
func (p *logFeedPane) replace(entries []monitor.LogEntry) {
	p.entries = entries
	p.fetched = true
	present := make(map[string]bool, len(entries))
	for _, entry := range entries {
		present[entryKey(entry)] = true
	}
	for key := range p.expanded {
		if !present[key] {
			delete(p.expanded, key)
		}
	}
	p.selected = clampInt(p.selected, 0, maxInt(0, len(entries)-1))
}

func (p *logFeedPane) move(delta int) {
	if len(p.entries) == 0 {
		return
	}
	p.selected = clampInt(p.selected+delta, 0, len(p.entries)-1)
}

// toggle flips the selected entry between summary and raw outputs.
func (p *logFeedPane) toggle() {
	if len(p.entries) == 0 {
		return
	}
	key := entryKey(p.entries[p.selected])
	if p.expanded[key] {
		delete(p.expanded, key)
		return
	}
	p.expanded[key] = true
}

func (p *logFeedPane) isExpanded(i int) bool {
	if i < 0 || i >= len(p.entries) {
		return false
	}
	return p.expanded[entryKey(p.entries[i])]
}

// containsNew reports whether entries holds one for prompt whose key is not in known.
func containsNew(entries []monitor.LogEntry, prompt string, known map[string]bool) bool {
	want := strings.TrimSpace(prompt)
	for _, entry := range entries {
		if known[entryKey(entry)] {
			continue
		}
		if strings.TrimSpace(entry.UserPrompt) == want {
			return true
		}
	}
	return false
}

func (p *logFeedPane) keys() map[string]bool {
	keys := make(map[string]bool, len(p.entries))
	for _, entry := range p.entries {
		keys[entryKey(entry)] = true
	}
	return keys
}

// entryKey identifies an entry across fetches. Entries without an id are
// keyed by content so a shifted list does not make them look new.
func entryKey(entry monitor.LogEntry) string {
	if strings.TrimSpace(entry.ID) != "" {
		return entry.ID
	}
	return fmt.Sprintf("%s|%s|%s", entry.Timestamp, entry.UserPrompt, entry.Summary)
}

func (p *logFeedPane) render(theme uiTheme, width int) string {
	if !p.fetched {
		return theme.helpText.Render("Loading log feed...")
	}
	if len(p.entries) == 0 {
		return theme.helpText.Render("No log entries yet. Submit a prompt to get started.")
	}
	var b strings.Builder
	for i, entry := range p.entries {
		marker := "▸"
		if p.isExpanded(i) {
			marker = "▾"
		}
		head := fmt.Sprintf("%s %s  %s", marker, shortTime(entry.Timestamp), compactSingleLine(nullCoalesce(entry.UserPrompt, "(no prompt)"), maxInt(10, width-14)))
		if i == p.selected {
			b.WriteString(theme.entrySelect.Render(head))
		} else {
			b.WriteString(theme.entryPrompt.Render(head))
		}
		b.WriteString("\n")
		if !p.isExpanded(i) {
			b.WriteString(theme.helpText.Render("  " + compactSingleLine(nullCoalesce(entry.Summary, "(no summary)"), maxInt(10, width-2))))
			b.WriteString("\n")
			continue
		}
		b.WriteString(wrapText("  "+nullCoalesce(entry.Summary, "(no summary)"), width))
		b.WriteString("\n")
		b.WriteString(indentBlock(formatRawOutputs(entry.AIOutputs), "  "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatRawOutputs pretty-prints the output mapping with sorted keys.
func formatRawOutputs(outputs map[string]string) string {
	if len(outputs) == 0 {
		return "{}"
	}
	buf, err := json.MarshalIndent(outputs, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", outputs)
	}
	return string(buf)
}

func indentBlock(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// responsePane shows the last synchronous supervisor mapping.
type responsePane struct {
	outputs supervisor.Outputs
}

func (p *responsePane) title() string { return "Supervisor Response" }

func (p *responsePane) clear() { p.outputs = nil }

func (p *responsePane) set(outputs supervisor.Outputs) { p.outputs = outputs }

func (p *responsePane) render(theme uiTheme, width int) string {
	if p.outputs == nil {
		return theme.helpText.Render("No response yet. Submit a prompt to see agent outputs.")
	}
	if len(p.outputs) == 0 {
		return theme.helpText.Render("Supervisor returned an empty response.")
	}
	var b strings.Builder
	for _, key := range p.outputs.Keys() {
		label := key + ": "
		value := wrapText(p.outputs[key], maxInt(10, width-len(label)))
		b.WriteString(theme.outputKey.Render(label))
		b.WriteString(strings.ReplaceAll(value, "\n", "\n"+strings.Repeat(" ", len(label))))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
