package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/extrarr/extrarr/pkg/extrasync"
)

// View renders the current tab with the tab bar above and the notice bar
// below.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	switch m.tab {
	case TabTasks:
		b.WriteString(m.renderTasks())
	case TabQueue:
		b.WriteString(m.renderQueue())
	case TabExtras:
		b.WriteString(m.renderExtras())
	}
	b.WriteString("\n")
	b.WriteString(m.renderNotice())
	b.WriteString("\n")
	b.WriteString(m.styles.dim.Render(m.helpLine()))
	return b.String()
}

func (m *Model) renderTabs() string {
	names := []string{"Tasks", "Queue", "Extras"}
	parts := make([]string, len(names))
	for i, name := range names {
		label := fmt.Sprintf(" %d:%s ", i+1, name)
		if Tab(i) == m.tab {
			parts[i] = m.styles.tabActive.Render(label)
		} else {
			parts[i] = m.styles.tabInactive.Render(label)
		}
	}
	return m.styles.title.Render("extrarr") + "  " + strings.Join(parts, " ")
}

func (m *Model) helpLine() string {
	switch m.tab {
	case TabTasks:
		return "j/k move · f force run · tab switch · q quit"
	case TabQueue:
		return "j/k move · tab switch · q quit"
	default:
		return "j/k move · d download · x delete · u unban · r reload · tab switch · q quit"
	}
}

func (m *Model) renderNotice() string {
	if m.err != nil {
		return m.styles.err.Render(fmt.Sprintf("! %v", m.err))
	}
	if m.deps.Board == nil {
		return ""
	}
	n := m.deps.Board.Current()
	if n == nil {
		return ""
	}
	if n.Success {
		return m.styles.ok.Render("✔ " + n.Message)
	}
	return m.styles.err.Render("✘ " + n.Message)
}

func (m *Model) renderTasks() string {
	tasks := m.deps.Tasks.Tasks()
	if len(tasks) == 0 {
		return m.styles.dim.Render("no scheduled tasks")
	}
	now := time.Now()
	var b strings.Builder
	b.WriteString(m.styles.header.Render(fmt.Sprintf("  %-24s %-12s %-10s %-16s %-12s %s",
		"NAME", "INTERVAL", "STATUS", "LAST RUN", "DURATION", "NEXT RUN")))
	b.WriteString("\n")
	for i, t := range tasks {
		line := fmt.Sprintf("%-24s %-12s %-10s %-16s %-12s %s",
			t.Name, t.IntervalDisplay(), t.Status,
			t.LastExecutionDisplay(), t.LastDurationDisplay(), t.NextExecutionDisplay(now))
		b.WriteString(m.renderRow(i, TabTasks, line))
	}
	return b.String()
}

func (m *Model) renderQueue() string {
	items := m.deps.Queue.Items()
	if len(items) == 0 {
		return m.styles.dim.Render("queue is empty")
	}
	var b strings.Builder
	b.WriteString(m.styles.header.Render(fmt.Sprintf("  %s %-36s %-10s %-16s %s",
		" ", "NAME", "STATUS", "QUEUED", "DURATION")))
	b.WriteString("\n")
	for i, item := range items {
		line := fmt.Sprintf("%s %-36s %-10s %-16s %s",
			item.Status.Glyph(), item.DisplayName, item.Status,
			extrasync.TimeAgo(item.QueuedAt), item.DurationDisplay())
		b.WriteString(m.renderRow(i, TabQueue, line))
	}
	return b.String()
}

func (m *Model) renderExtras() string {
	records := m.deps.Extras.Store().Records()
	if len(records) == 0 {
		return m.styles.dim.Render("no extras")
	}
	var b strings.Builder
	b.WriteString(m.styles.header.Render(fmt.Sprintf("  %s %-32s %-12s %-12s %s",
		" ", "TITLE", "TYPE", "STATUS", "REASON")))
	b.WriteString("\n")
	for i, r := range records {
		line := fmt.Sprintf("%s %-32s %-12s %-12s %s",
			r.Status.Glyph(), r.ExtraTitle, r.ExtraType, r.Status, r.Reason)
		b.WriteString(m.renderRow(i, TabExtras, line))
	}
	return b.String()
}

func (m *Model) renderRow(i int, tab Tab, line string) string {
	if m.cursor[tab] == i {
		return m.styles.cursor.Render("> "+line) + "\n"
	}
	return "  " + line + "\n"
}
