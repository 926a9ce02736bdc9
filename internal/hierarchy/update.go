package hierarchy

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/tasktree/internal/domain"
)

// UpdateTaskInput contains the parameters for updating a task.
// Title, description and deadline are replaced; status must be reachable
// from the current status (or equal to it).
// Fields are ordered to minimize memory padding.
type UpdateTaskInput struct {
	Deadline    time.Time     `validate:"required"` // New due date (required)
	TaskID      string        // Task to update
	Title       string        `validate:"notblank"` // New title (required)
	Description string        // New description
	Status      domain.Status // New status
}

// UpdateTask replaces a task's fields and moves its status along the
// state machine. The record is unchanged on any error.
func (e *Engine) UpdateTask(_ context.Context, in UpdateTaskInput) error {
	if err := validate.Struct(in); err != nil {
		return validationError(err)
	}
	if !in.Status.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, in.Status)
	}

	unlock := e.locks.lock(in.TaskID)
	defer unlock()

	task, err := e.find(in.TaskID)
	if err != nil {
		return err
	}

	from := task.Status
	if in.Status != from && !from.CanTransitionTo(in.Status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, in.Status)
	}

	task.Title = in.Title
	task.Description = in.Description
	task.Deadline = in.Deadline
	task.Status = in.Status
	task.Updated = e.clock.Now()

	if err := e.save(task); err != nil {
		return err
	}

	if from != in.Status {
		e.log(task.ID, fmt.Sprintf("status: %s -> %s", from, in.Status))
	} else {
		e.log(task.ID, "updated")
	}
	return nil
}

// SetPriority changes a task's priority. Priority has no state machine.
func (e *Engine) SetPriority(_ context.Context, id string, priority domain.Priority) error {
	if !priority.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPriority, priority)
	}

	unlock := e.locks.lock(id)
	defer unlock()

	task, err := e.find(id)
	if err != nil {
		return err
	}
	if task.Priority == priority {
		return nil
	}

	from := task.Priority
	task.Priority = priority
	task.Updated = e.clock.Now()
	if err := e.save(task); err != nil {
		return err
	}

	e.log(task.ID, fmt.Sprintf("priority: %s -> %s", from, priority))
	return nil
}
