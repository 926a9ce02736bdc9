package tui

import "github.com/runoshun/tasktree/internal/domain"

// Msg is the sealed interface for all TUI messages.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgTasksLoaded is sent when tasks are loaded from the engine.
type MsgTasksLoaded struct {
	Tasks []*domain.Task
}

func (MsgTasksLoaded) sealed() {}

// MsgTaskUpdated is sent after a status or priority change.
type MsgTaskUpdated struct {
	TaskID string
	Note   string // Shown in the status line
}

func (MsgTaskUpdated) sealed() {}

// MsgTaskDeleted is sent when a task is deleted.
type MsgTaskDeleted struct {
	TaskID string
}

func (MsgTaskDeleted) sealed() {}

// MsgError is sent when an operation fails.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}
