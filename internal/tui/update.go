package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/tasktree/internal/domain"
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case MsgTasksLoaded:
		m.all = msg.Tasks
		m.rebuild()
		return m, nil

	case MsgTaskUpdated:
		m.err = nil
		m.note = msg.Note
		return m, m.loadTasks()

	case MsgTaskDeleted:
		m.err = nil
		m.note = fmt.Sprintf("Deleted %s (%s)", msg.TaskID, m.tasks.Policy())
		return m, m.loadTasks()

	case MsgError:
		m.err = msg.Err
		m.note = ""
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeConfirm:
		return m.handleConfirmMode(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Escape, m.keys.Quit) {
			m.mode = ModeNormal
		}
		return m, nil
	case ModeDetail:
		if key.Matches(msg, m.keys.Detail, m.keys.Escape) {
			m.mode = ModeNormal
			return m, nil
		}
	case ModeNormal:
	}

	return m.handleNormalMode(msg)
}

func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-len(m.rows))
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.rows))
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil
	case key.Matches(msg, m.keys.Detail):
		if m.SelectedTask() != nil {
			m.mode = ModeDetail
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.err = nil
		m.note = ""
		return m, m.loadTasks()
	case key.Matches(msg, m.keys.Mine):
		m.mineOnly = !m.mineOnly
		m.rebuild()
		return m, nil
	case key.Matches(msg, m.keys.ShowAll):
		m.showAll = !m.showAll
		m.rebuild()
		return m, nil
	}

	t := m.SelectedTask()
	if t == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Advance):
		return m, m.advance(t)
	case key.Matches(msg, m.keys.Block):
		return m, m.setStatus(t, domain.StatusBlocked)
	case key.Matches(msg, m.keys.Bump):
		return m, m.bumpPriority(t)
	case key.Matches(msg, m.keys.Cancel):
		m.mode = ModeConfirm
		m.confirmAction = ConfirmCancel
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		m.mode = ModeConfirm
		m.confirmAction = ConfirmDelete
		return m, nil
	}

	return m, nil
}

func (m *Model) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.confirmAction
	t := m.SelectedTask()

	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.mode = ModeNormal
		m.confirmAction = ConfirmNone
		if t == nil {
			return m, nil
		}
		switch action {
		case ConfirmDelete:
			return m, m.deleteTask(t.ID)
		case ConfirmCancel:
			return m, m.setStatus(t, domain.StatusCancelled)
		case ConfirmNone:
		}
		return m, nil
	case key.Matches(msg, m.keys.Decline):
		m.mode = ModeNormal
		m.confirmAction = ConfirmNone
		return m, nil
	}
	return m, nil
}
