package hierarchy

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/tasktree/internal/domain"
)

// CreateTaskInput contains the parameters for creating a root task.
// Fields are ordered to minimize memory padding.
type CreateTaskInput struct {
	Deadline    time.Time `validate:"required"` // Due date (required)
	Title       string    `validate:"notblank"` // Task title (required)
	Description string    // Task description (optional)
	OwnerID     string    `validate:"notblank"` // Owning user (required)
}

// CreateSubtaskInput contains the parameters for creating a subtask.
type CreateSubtaskInput struct {
	ParentID string // Parent task ID (must exist)
	CreateTaskInput
}

// CreateTask creates a root task in pending status with medium priority.
func (e *Engine) CreateTask(_ context.Context, in CreateTaskInput) (*domain.Task, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if err := e.checkOwner(in.OwnerID); err != nil {
		return nil, err
	}

	task := e.newTask(domain.NewTaskID(), in)
	if err := e.save(task); err != nil {
		return nil, err
	}

	e.log(task.ID, fmt.Sprintf("created: %q", task.Title))
	return task, nil
}

// CreateSubtask creates a task under an existing parent.
// The new record and the parent's child set are written while both are locked.
func (e *Engine) CreateSubtask(_ context.Context, in CreateSubtaskInput) (*domain.Task, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if err := e.checkOwner(in.OwnerID); err != nil {
		return nil, err
	}

	id := domain.NewTaskID()
	unlock := e.locks.lock(in.ParentID, id)
	defer unlock()

	parent, err := e.findParent(in.ParentID)
	if err != nil {
		return nil, err
	}

	task := e.newTask(id, in.CreateTaskInput)
	task.ParentID = domain.ParentRef(parent.ID)
	before := parent.Clone()
	parent.AddChild(id)
	parent.Updated = task.Created

	j := e.newJournal()
	if err := j.save(nil, task); err != nil {
		return nil, err
	}
	if err := j.save(before, parent); err != nil {
		return nil, err
	}

	e.log(task.ID, fmt.Sprintf("created: %q under %s", task.Title, parent.ID))
	return task, nil
}

func (e *Engine) newTask(id string, in CreateTaskInput) *domain.Task {
	now := e.clock.Now()
	return &domain.Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Deadline:    in.Deadline,
		Status:      domain.StatusPending,
		Priority:    domain.PriorityMedium,
		OwnerID:     in.OwnerID,
		Created:     now,
		Updated:     now,
	}
}
