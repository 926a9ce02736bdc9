package tui

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/hierarchy"
)

// TaskService is the part of the hierarchy engine the TUI drives.
type TaskService interface {
	List(ctx context.Context) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, in hierarchy.UpdateTaskInput) error
	SetPriority(ctx context.Context, id string, priority domain.Priority) error
	DeleteTask(ctx context.Context, id string) error
	Policy() domain.DeletePolicy
}

var _ TaskService = (*hierarchy.Engine)(nil)

// row is one visible line of the tree.
type row struct {
	task   *domain.Task
	prefix string // Box drawing prefix for the task's depth
}

// Model is the main bubbletea model for the TUI.
type Model struct {
	// Dependencies (pointers first for alignment)
	ctx   context.Context
	tasks TaskService
	now   func() time.Time
	err   error

	// State
	all  []*domain.Task
	rows []row

	// Components
	keys   KeyMap
	styles Styles
	help   help.Model

	owner      string
	note       string
	selectedID string

	// Numeric state (smaller types last)
	mode          Mode
	confirmAction ConfirmAction
	cursor        int
	width         int
	height        int
	mineOnly      bool
	showAll       bool
}

// New creates a new TUI Model over tasks for the acting owner.
func New(ctx context.Context, tasks TaskService, owner string) *Model {
	return &Model{
		ctx:     ctx,
		tasks:   tasks,
		now:     time.Now,
		owner:   owner,
		mode:    ModeNormal,
		keys:    DefaultKeyMap(),
		styles:  DefaultStyles(),
		help:    help.New(),
		showAll: true,
	}
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, tasks TaskService, owner string) error {
	p := tea.NewProgram(New(ctx, tasks, owner), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init initializes the model and returns the initial command.
func (m *Model) Init() tea.Cmd {
	return m.loadTasks()
}

// loadTasks returns a command that loads every task.
func (m *Model) loadTasks() tea.Cmd {
	return func() tea.Msg {
		tasks, err := m.tasks.List(m.ctx)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTasksLoaded{Tasks: tasks}
	}
}

// SelectedTask returns the task under the cursor, or nil if none.
func (m *Model) SelectedTask() *domain.Task {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].task
}

// rebuild recomputes the visible rows and keeps the cursor on the
// previously selected task when it is still visible.
func (m *Model) rebuild() {
	m.rows = buildRows(m.all, func(t *domain.Task) bool {
		if m.mineOnly && t.OwnerID != m.owner {
			return false
		}
		return m.showAll || !t.Status.IsTerminal()
	})

	for i, r := range m.rows {
		if r.task.ID == m.selectedID {
			m.cursor = i
			return
		}
	}
	m.cursor = max(0, min(m.cursor, len(m.rows)-1))
	if t := m.SelectedTask(); t != nil {
		m.selectedID = t.ID
	}
}

// moveCursor moves the cursor by delta, clamped to the visible rows.
func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = max(0, min(m.cursor+delta, len(m.rows)-1))
	m.selectedID = m.rows[m.cursor].task.ID
}

// buildRows flattens the visible tasks into depth-first tree order.
// A visible task whose parent is hidden or missing is shown at the top level.
func buildRows(tasks []*domain.Task, visible func(*domain.Task) bool) []row {
	byID := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		if visible(t) {
			byID[t.ID] = t
		}
	}

	var roots []*domain.Task
	for _, t := range byID {
		if t.ParentID == nil || byID[*t.ParentID] == nil {
			roots = append(roots, t)
		}
	}
	sortByCreated(roots)

	rows := make([]row, 0, len(byID))
	var walk func(t *domain.Task, prefix, childPrefix string)
	walk = func(t *domain.Task, prefix, childPrefix string) {
		rows = append(rows, row{task: t, prefix: prefix})

		children := make([]*domain.Task, 0, len(t.ChildIDs))
		for _, id := range t.ChildIDs {
			if c, ok := byID[id]; ok {
				children = append(children, c)
			}
		}
		sortByCreated(children)

		for i, c := range children {
			if i == len(children)-1 {
				walk(c, childPrefix+"└─ ", childPrefix+"   ")
			} else {
				walk(c, childPrefix+"├─ ", childPrefix+"│  ")
			}
		}
	}
	for _, r := range roots {
		walk(r, "", "")
	}
	return rows
}

func sortByCreated(tasks []*domain.Task) {
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// setStatus returns a command that moves t to status, keeping its other fields.
func (m *Model) setStatus(t *domain.Task, status domain.Status) tea.Cmd {
	in := hierarchy.UpdateTaskInput{
		Deadline:    t.Deadline,
		TaskID:      t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      status,
	}
	return func() tea.Msg {
		if err := m.tasks.UpdateTask(m.ctx, in); err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskUpdated{TaskID: in.TaskID, Note: fmt.Sprintf("%s: %s", in.Title, status.Display())}
	}
}

// advance returns a command that moves t along the main status path.
func (m *Model) advance(t *domain.Task) tea.Cmd {
	next, ok := t.Status.Next()
	if !ok {
		err := fmt.Errorf("%w: %s has no next status", domain.ErrInvalidTransition, t.Status)
		return func() tea.Msg { return MsgError{Err: err} }
	}
	return m.setStatus(t, next)
}

// bumpPriority returns a command that raises t's priority, wrapping from
// critical back to low.
func (m *Model) bumpPriority(t *domain.Task) tea.Cmd {
	next := nextPriority(t.Priority)
	id, title := t.ID, t.Title
	return func() tea.Msg {
		if err := m.tasks.SetPriority(m.ctx, id, next); err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskUpdated{TaskID: id, Note: fmt.Sprintf("%s: priority %s", title, next)}
	}
}

func nextPriority(p domain.Priority) domain.Priority {
	all := domain.AllPriorities()
	i := slices.Index(all, p)
	return all[(i+1)%len(all)]
}

// deleteTask returns a command that deletes the task with id.
func (m *Model) deleteTask(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.tasks.DeleteTask(m.ctx, id); err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskDeleted{TaskID: id}
	}
}
