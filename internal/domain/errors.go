package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match these with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrCycle             = errors.New("move would create a cycle")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Domain errors.
var (
	ErrTaskNotFound    = fmt.Errorf("task %w", ErrNotFound)
	ErrParentNotFound  = fmt.Errorf("parent task %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrEmptyTitle      = fmt.Errorf("%w: title cannot be empty", ErrValidation)
	ErrEmptyOwner      = fmt.Errorf("%w: owner cannot be empty", ErrValidation)
	ErrMissingDeadline = fmt.Errorf("%w: deadline is required", ErrValidation)
	ErrInvalidStatus   = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrInvalidPriority = fmt.Errorf("%w: invalid priority", ErrValidation)
	ErrSelfParent      = fmt.Errorf("%w: task cannot be its own parent", ErrCycle)
	ErrCorruptedTree   = fmt.Errorf("%w: parent chain longer than task count", ErrCycle)
	ErrNotInitialized  = errors.New("tasktree not initialized (run 'tasktree init' first)")
	ErrAlreadyInit     = errors.New("tasktree already initialized")
	ErrConfigExists    = errors.New("config file already exists")
	ErrEmptyFile       = errors.New("file is empty")
	ErrNoTasksInFile   = errors.New("no tasks found in file")
	ErrUnknownStore    = errors.New("unknown store backend")
)
