package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overseer/internal/monitor"
	"overseer/internal/supervisor"
)

func sampleEntries() []monitor.LogEntry {
	return []monitor.LogEntry{
		{ID: "7", UserPrompt: "status report", Summary: "all agents reported", AIOutputs: map[string]string{"agent1": "done"}, Timestamp: "2026-10-15T09:00:00Z"},
		{ID: "6", UserPrompt: "deploy", Summary: "queued", Timestamp: "2026-10-15T08:59:00Z"},
	}
}

func TestLogFeedReplaceKeepsExpansionForSurvivingEntries(t *testing.T) {
	p := newLogFeedPane()
	p.replace(sampleEntries())
	p.toggle()
	p.move(1)
	p.toggle()
	require.True(t, p.isExpanded(0))
	require.True(t, p.isExpanded(1))

	p.replace([]monitor.LogEntry{
		{ID: "8", UserPrompt: "new prompt"},
		{ID: "7", UserPrompt: "status report"},
	})
	assert.False(t, p.isExpanded(0))
	assert.True(t, p.isExpanded(1))
	assert.Len(t, p.expanded, 1)
	assert.Equal(t, 1, p.selected)

	p.replace(nil)
	assert.Empty(t, p.expanded)
	assert.Equal(t, 0, p.selected)
	assert.Equal(t, "Recent Activity (0 entries)", p.title())
}

func TestLogFeedMoveClamps(t *testing.T) {
	p := newLogFeedPane()
	p.move(1)
	assert.Equal(t, 0, p.selected)

	p.replace(sampleEntries())
	p.move(5)
	assert.Equal(t, 1, p.selected)
	p.move(-9)
	assert.Equal(t, 0, p.selected)
}

func TestLogFeedRender(t *testing.T) {
	theme := newTheme()
	p := newLogFeedPane()
	assert.Contains(t, p.render(theme, 60), "Loading log feed")
	assert.Equal(t, "Recent Activity", p.title())

	p.replace([]monitor.LogEntry{})
	assert.Contains(t, p.render(theme, 60), "No log entries yet")

	p.replace(sampleEntries())
	collapsed := p.render(theme, 60)
	assert.Contains(t, collapsed, "status report")
	assert.Contains(t, collapsed, "all agents reported")
	assert.NotContains(t, collapsed, `"agent1"`)
	assert.Equal(t, "Recent Activity (2 entries)", p.title())

	p.toggle()
	expanded := p.render(theme, 60)
	assert.Contains(t, expanded, `"agent1": "done"`)
	assert.Contains(t, expanded, "▾")
}

func TestContainsNew(t *testing.T) {
	entries := sampleEntries()
	known := map[string]bool{"7": true}

	assert.False(t, containsNew(entries, "status report", known))
	assert.True(t, containsNew(entries, "deploy", known))
	assert.True(t, containsNew(entries, "  deploy\n", known))
	assert.False(t, containsNew(entries, "unrelated", known))
	assert.False(t, containsNew(nil, "deploy", nil))
}

func TestEntryKeyFallsBackWithoutID(t *testing.T) {
	withID := monitor.LogEntry{ID: "42", UserPrompt: "x"}
	assert.Equal(t, "42", entryKey(withID))

	anon := monitor.LogEntry{UserPrompt: "x", Summary: "s", Timestamp: "2026-10-15T09:00:00Z"}
	assert.Equal(t, "2026-10-15T09:00:00Z|x|s", entryKey(anon))

	later := anon
	later.Timestamp = "2026-10-15T09:00:05Z"
	assert.NotEqual(t, entryKey(anon), entryKey(later))
}

func TestContainsNewIgnoresShiftedEntriesWithoutID(t *testing.T) {
	p := newLogFeedPane()
	p.replace([]monitor.LogEntry{
		{UserPrompt: "status report", Summary: "earlier run", Timestamp: "2026-10-15T09:00:00Z"},
	})
	known := p.keys()

	shifted := []monitor.LogEntry{
		{UserPrompt: "other", Summary: "unrelated", Timestamp: "2026-10-15T09:00:05Z"},
		{UserPrompt: "status report", Summary: "earlier run", Timestamp: "2026-10-15T09:00:00Z"},
	}
	assert.False(t, containsNew(shifted, "status report", known))

	fresh := append([]monitor.LogEntry{
		{UserPrompt: "status report", Summary: "fresh run", Timestamp: "2026-10-15T09:00:09Z"},
	}, shifted...)
	assert.True(t, containsNew(fresh, "status report", known))
}

func TestExpansionFollowsEntryWithoutIDAcrossShift(t *testing.T) {
	old := monitor.LogEntry{UserPrompt: "deploy", Summary: "queued", Timestamp: "2026-10-15T09:00:00Z"}
	p := newLogFeedPane()
	p.replace([]monitor.LogEntry{old})
	p.toggle()

	p.replace([]monitor.LogEntry{{UserPrompt: "newer", Timestamp: "2026-10-15T09:01:00Z"}, old})
	assert.False(t, p.isExpanded(0))
	assert.True(t, p.isExpanded(1))
}

func TestFormatRawOutputs(t *testing.T) {
	assert.Equal(t, "{}", formatRawOutputs(nil))
	assert.Equal(t, "{\n  \"a\": \"1\",\n  \"b\": \"2\"\n}", formatRawOutputs(map[string]string{"b": "2", "a": "1"}))
}

func TestResponsePaneRender(t *testing.T) {
	theme := newTheme()
	p := &responsePane{}
	assert.Equal(t, "Supervisor Response", p.title())
	assert.Contains(t, p.render(theme, 60), "No response yet")

	p.set(supervisor.Outputs{})
	assert.Contains(t, p.render(theme, 60), "empty response")

	p.set(supervisor.Outputs{"planner": "one two three four five six", "agent": "ok"})
	out := p.render(theme, 20)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "agent:")
	assert.Contains(t, lines[1], "planner:")
	// continuation lines align under the value
	assert.True(t, strings.HasPrefix(lines[2], strings.Repeat(" ", len("planner: "))))

	p.clear()
	assert.Nil(t, p.outputs)
}
