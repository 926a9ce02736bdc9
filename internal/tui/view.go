package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/tasktree/internal/domain"
)

// chromeHeight is the number of lines used by everything but the tree.
const chromeHeight = 7

// View renders the TUI.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")

	switch m.mode {
	case ModeHelp:
		b.WriteString(m.styles.Help.Render(m.help.FullHelpView(m.keys.FullHelp())))
	case ModeConfirm:
		b.WriteString(m.viewTree())
		b.WriteString("\n")
		b.WriteString(m.viewConfirm())
	case ModeDetail:
		b.WriteString(m.viewTree())
		b.WriteString("\n")
		b.WriteString(m.viewDetail())
	case ModeNormal:
		b.WriteString(m.viewTree())
	}

	b.WriteString("\n")
	b.WriteString(m.viewMessage())
	b.WriteString("\n")
	b.WriteString(NewStatusLine(m.width, &m.styles).Render(m.GetStatusInfo()))

	return m.styles.App.Render(b.String())
}

func (m *Model) viewHeader() string {
	var filters []string
	if m.mineOnly {
		filters = append(filters, "mine")
	}
	if !m.showAll {
		filters = append(filters, "open")
	}
	meta := fmt.Sprintf("%s · %d tasks", m.owner, len(m.rows))
	if len(filters) > 0 {
		meta += " · " + strings.Join(filters, ", ")
	}
	return m.styles.Header.Render("tasktree") + "  " + m.styles.HeaderMeta.Render(meta)
}

// visibleRange returns the window of rows that fits the terminal,
// keeping the cursor in view.
func (m *Model) visibleRange() (int, int) {
	n := len(m.rows)
	if m.height <= chromeHeight {
		return 0, n
	}
	size := m.height - chromeHeight
	if m.mode == ModeDetail || m.mode == ModeConfirm {
		size = max(size/2, 1)
	}
	if n <= size {
		return 0, n
	}
	start := max(m.cursor-size/2, 0)
	end := start + size
	if end > n {
		end = n
		start = n - size
	}
	return start, end
}

func (m *Model) viewTree() string {
	if len(m.rows) == 0 {
		return m.styles.Empty.Render("No tasks. Create one with 'tasktree new'.")
	}

	start, end := m.visibleRange()
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.viewRow(m.rows[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewRow(r row, selected bool) string {
	t := r.task

	cursor := m.styles.CursorNormal.Render("  ")
	title := m.styles.TaskTitle.Render(t.Title)
	if selected {
		cursor = m.styles.CursorSelected.Render("> ")
		title = m.styles.TaskTitleSelected.Render(t.Title)
	}

	status := m.styles.StatusStyle(t.Status).Render(StatusIcon(t.Status) + " " + string(t.Status))
	priority := m.styles.PriorityStyle(t.Priority).Render(string(t.Priority))

	deadline := t.Deadline.Format(time.DateOnly)
	if m.isOverdue(t) {
		deadline = m.styles.Overdue.Render(deadline + " overdue")
	} else {
		deadline = m.styles.TaskMeta.Render(deadline)
	}

	return fmt.Sprintf("%s%s%s  %s  %s  %s  %s",
		cursor,
		m.styles.TreeLine.Render(r.prefix),
		title,
		status,
		priority,
		m.styles.TaskMeta.Render("@"+t.OwnerID),
		deadline,
	)
}

func (m *Model) isOverdue(t *domain.Task) bool {
	return !t.Status.IsTerminal() && m.now().After(t.Deadline)
}

func (m *Model) viewDetail() string {
	t := m.SelectedTask()
	if t == nil {
		return ""
	}

	label := m.styles.DetailLabel.Render
	value := m.styles.DetailValue.Render

	lines := []string{
		m.styles.DetailTitle.Render(t.Title),
		label("ID") + value(t.ID),
		label("Status") + m.styles.StatusStyle(t.Status).Render(t.Status.Display()),
		label("Priority") + m.styles.PriorityStyle(t.Priority).Render(string(t.Priority)),
		label("Owner") + value(t.OwnerID),
		label("Deadline") + value(t.Deadline.Format(time.RFC3339)),
	}
	if t.ParentID != nil {
		lines = append(lines, label("Parent")+value(*t.ParentID))
	}
	lines = append(lines,
		label("Subtasks")+value(fmt.Sprintf("%d", len(t.ChildIDs))),
		label("Updated")+value(t.Updated.Format(time.RFC3339)),
	)
	if t.Description != "" {
		lines = append(lines, m.styles.DetailDesc.Render(t.Description))
	}

	style := m.styles.Detail
	if m.width > 8 {
		style = style.Width(m.width - 8)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) viewConfirm() string {
	t := m.SelectedTask()
	if t == nil {
		return ""
	}

	var prompt string
	switch m.confirmAction {
	case ConfirmDelete:
		prompt = fmt.Sprintf("Delete %q?", t.Title)
		if len(t.ChildIDs) > 0 {
			if m.tasks.Policy() == domain.DeletePolicyCascade {
				prompt += fmt.Sprintf(" Its %d subtask(s) are deleted too.", len(t.ChildIDs))
			} else {
				prompt += fmt.Sprintf(" Its %d subtask(s) become root tasks.", len(t.ChildIDs))
			}
		}
	case ConfirmCancel:
		prompt = fmt.Sprintf("Cancel %q? This cannot be undone.", t.Title)
	case ConfirmNone:
		return ""
	}

	return m.styles.Dialog.Render(
		m.styles.DialogTitle.Render("Confirm "+m.confirmAction.String()) + "\n\n" + prompt + "  [y/N]",
	)
}

func (m *Model) viewMessage() string {
	if m.err != nil {
		return m.styles.ErrorMsg.Render("Error: " + m.err.Error())
	}
	if m.note != "" {
		return m.styles.NoteMsg.Render(m.note)
	}
	return ""
}
