package tui

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/tasker/internal/task"
	"github.com/Iron-Ham/tasker/internal/tui/styles"
	"github.com/Iron-Ham/tasker/internal/util"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.theme.Title().Render("Tasks"))
	b.WriteString("  ")
	st := m.tasks.Status()
	b.WriteString(m.theme.Muted().Render(fmt.Sprintf("%d total, %d done, %d pending", st.Total, st.Done, st.Pending)))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(m.theme.Muted().Render("No tasks. Press a to add one."))
		b.WriteString("\n")
	}
	for i, t := range m.items {
		b.WriteString(m.renderRow(t, i == m.cursor))
		b.WriteString("\n")
	}

	if m.adding {
		b.WriteString("\n")
		b.WriteString(m.theme.Box().Render("New task:\n\n" + m.input.View()))
		b.WriteString("\n")
	}

	if m.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Error().Render("Error: " + m.errorMsg))
	}
	if m.infoMsg != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Success().Render(m.infoMsg))
	}
	if m.lastSave != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.StatusBar().Render(m.lastSave))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderRow(t task.Task, selected bool) string {
	line := fmt.Sprintf("%3d  %s %s", t.ID, styles.StatusIcon(t.Done), util.SingleLine(t.Title))
	if m.width > 0 {
		// Two columns for the cursor.
		line = util.Truncate(line, m.width-2)
	}
	if selected {
		return m.theme.Selected().Render("> " + line)
	}
	return "  " + m.theme.Status(t.Done).Render(line)
}

func (m Model) renderHelp() string {
	key := m.theme.HelpKey()

	if m.adding {
		return m.theme.HelpBar().Render(
			key.Render("enter") + " add  " +
				key.Render("esc") + " cancel",
		)
	}

	return m.theme.HelpBar().Render(
		key.Render("j/k") + " move  " +
			key.Render("a") + " add  " +
			key.Render("space") + " toggle  " +
			key.Render("d") + " delete  " +
			key.Render("s") + " save  " +
			key.Render("q") + " quit",
	)
}
