// Package hierarchy implements the task tree: creation, nesting,
// reparenting and deletion of tasks under per-record locking, with
// cycle detection on every move.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/runoshun/tasktree/internal/domain"
)

// validate is the shared validator for engine inputs.
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register validation for strings that are not empty once trimmed
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Options tunes engine policy.
type Options struct {
	// DeletePolicy decides what happens to the children of a deleted task.
	// Empty means orphan.
	DeletePolicy domain.DeletePolicy

	// ValidateOwner makes task creation fail for owners the user
	// directory does not know.
	ValidateOwner bool
}

// Engine owns every mutation of the task tree.
// It keeps no cache: each operation reads through the store, mutates
// copies, and writes them back while holding the locks of all records
// it touches.
type Engine struct {
	store  domain.TaskStore
	users  domain.UserDirectory
	clock  domain.Clock
	logger domain.Logger
	locks  lockTable
	opts   Options

	// moveMu serialises moves. Moves are the only operation that adds an
	// edge above a leaf, so two moves over disjoint lock sets could
	// otherwise close a cycle between them.
	moveMu sync.Mutex
}

// New creates an Engine. users and logger may be nil.
func New(store domain.TaskStore, users domain.UserDirectory, clock domain.Clock, logger domain.Logger, opts Options) *Engine {
	if clock == nil {
		clock = domain.RealClock{}
	}
	if opts.DeletePolicy == "" {
		opts.DeletePolicy = domain.DefaultDeletePolicy
	}
	return &Engine{
		store:  store,
		users:  users,
		clock:  clock,
		logger: logger,
		opts:   opts,
	}
}

// Policy returns the delete policy in effect.
func (e *Engine) Policy() domain.DeletePolicy {
	return e.opts.DeletePolicy
}

// GetTask returns the task with the given ID.
func (e *Engine) GetTask(_ context.Context, id string) (*domain.Task, error) {
	unlock := e.locks.lock(id)
	defer unlock()
	return e.find(id)
}

// ListByOwner returns the tasks owned by ownerID, in no particular order.
// The result is a store snapshot taken without record locks.
func (e *Engine) ListByOwner(_ context.Context, ownerID string) ([]*domain.Task, error) {
	tasks, err := e.store.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// List returns every task, in no particular order.
func (e *Engine) List(_ context.Context) ([]*domain.Task, error) {
	tasks, err := e.store.List()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Children returns the direct subtasks of id, ordered by ID.
func (e *Engine) Children(_ context.Context, id string) ([]*domain.Task, error) {
	// Holding the parent's lock pins the child set: detaching a child
	// always needs it.
	unlock := e.locks.lock(id)
	defer unlock()

	parent, err := e.find(id)
	if err != nil {
		return nil, err
	}

	children := make([]*domain.Task, 0, len(parent.ChildIDs))
	for _, childID := range parent.ChildIDs {
		child, err := e.find(childID)
		if err != nil {
			return nil, fmt.Errorf("get child %s: %w", childID, err)
		}
		children = append(children, child)
	}
	return children, nil
}

// find reads a task, returning domain.ErrTaskNotFound when absent.
func (e *Engine) find(id string) (*domain.Task, error) {
	if id == "" {
		return nil, domain.ErrTaskNotFound
	}
	task, err := e.store.Find(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return task, nil
}

// findParent is find with the parent-specific not-found error.
func (e *Engine) findParent(id string) (*domain.Task, error) {
	parent, err := e.find(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrParentNotFound, id)
	}
	return parent, err
}

func (e *Engine) save(task *domain.Task) error {
	if err := e.store.Save(task); err != nil {
		return fmt.Errorf("save task %s: %w", task.ID, err)
	}
	return nil
}

func (e *Engine) checkOwner(ownerID string) error {
	if !e.opts.ValidateOwner || e.users == nil {
		return nil
	}
	ok, err := e.users.Exists(ownerID)
	if err != nil {
		return fmt.Errorf("check owner: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, ownerID)
	}
	return nil
}

func (e *Engine) log(taskID, msg string) {
	if e.logger != nil {
		e.logger.Info(taskID, "task", msg)
	}
}

// validationError maps validator failures onto domain errors.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Title":
		return domain.ErrEmptyTitle
	case "Deadline":
		return domain.ErrMissingDeadline
	case "OwnerID":
		return domain.ErrEmptyOwner
	default:
		return fmt.Errorf("%w: %s failed %q", domain.ErrValidation, fe.Field(), fe.Tag())
	}
}
