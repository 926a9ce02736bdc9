// Package usecase contains application use cases that sit above the
// hierarchy engine: bulk import, data directory setup, config files and logs.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/hierarchy"
)

// ImportTasksInput contains the parameters for creating tasks from a file.
type ImportTasksInput struct {
	Content string // File content (Markdown with frontmatter)
	OwnerID string // Owner of every imported task
	DryRun  bool   // If true, parse and validate without creating tasks
}

// ImportedTask represents a task that was created from file input.
// In dry-run mode ID and ParentID hold 1-based file positions for tasks
// of the file, and real IDs for existing parents.
// Fields are ordered to minimize memory padding.
type ImportedTask struct {
	Deadline time.Time
	ID       string
	ParentID string
	Title    string
	Priority domain.Priority
}

// ImportTasksOutput contains the result of creating tasks from a file.
type ImportTasksOutput struct {
	Tasks []ImportedTask // Created tasks (or tasks that would be created in dry-run mode)
}

// ImportTasks is the use case for creating a batch of tasks from a file.
type ImportTasks struct {
	engine *hierarchy.Engine
	logger domain.Logger
}

// NewImportTasks creates a new ImportTasks use case.
func NewImportTasks(engine *hierarchy.Engine, logger domain.Logger) *ImportTasks {
	return &ImportTasks{
		engine: engine,
		logger: logger,
	}
}

// Execute creates tasks from the given file content in file order.
// Creation stops at the first failing task; tasks created before it are kept.
func (uc *ImportTasks) Execute(ctx context.Context, in ImportTasksInput) (*ImportTasksOutput, error) {
	drafts, err := domain.ParseTaskDrafts(in.Content)
	if err != nil {
		return nil, err
	}

	if in.DryRun {
		return uc.dryRun(ctx, drafts)
	}
	return uc.createTasks(ctx, drafts, in.OwnerID)
}

// dryRun validates parent references and returns tasks that would be created.
func (uc *ImportTasks) dryRun(ctx context.Context, drafts []domain.TaskDraft) (*ImportTasksOutput, error) {
	result := &ImportTasksOutput{
		Tasks: make([]ImportedTask, 0, len(drafts)),
	}

	// Relative indices map to themselves so earlier tasks resolve as positions
	positions := make(map[int]string, len(drafts))

	for i, draft := range drafts {
		parentID, err := domain.ResolveParentRef(draft.ParentRef, positions)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		if parentID != "" && !isPosition(parentID, positions) {
			if _, err := uc.engine.GetTask(ctx, parentID); err != nil {
				return nil, fmt.Errorf("task %d: %w", i+1, parentError(err))
			}
		}

		pos := strconv.Itoa(i + 1)
		positions[i+1] = pos
		result.Tasks = append(result.Tasks, importedTask(pos, parentID, draft))
	}

	return result, nil
}

// createTasks creates tasks from drafts through the engine.
func (uc *ImportTasks) createTasks(ctx context.Context, drafts []domain.TaskDraft, ownerID string) (*ImportTasksOutput, error) {
	result := &ImportTasksOutput{
		Tasks: make([]ImportedTask, 0, len(drafts)),
	}

	// Map of relative index (1-based) to created task ID
	createdIDs := make(map[int]string, len(drafts))

	for i, draft := range drafts {
		parentID, err := domain.ResolveParentRef(draft.ParentRef, createdIDs)
		if err != nil {
			return result, fmt.Errorf("task %d: %w", i+1, err)
		}

		in := hierarchy.CreateTaskInput{
			Title:       draft.Title,
			Description: draft.Description,
			Deadline:    draft.Deadline,
			OwnerID:     ownerID,
		}
		var task *domain.Task
		if parentID == "" {
			task, err = uc.engine.CreateTask(ctx, in)
		} else {
			task, err = uc.engine.CreateSubtask(ctx, hierarchy.CreateSubtaskInput{ParentID: parentID, CreateTaskInput: in})
		}
		if err != nil {
			return result, fmt.Errorf("task %d: %w", i+1, err)
		}

		if draft.Priority != task.Priority {
			if err := uc.engine.SetPriority(ctx, task.ID, draft.Priority); err != nil {
				return result, fmt.Errorf("task %d: set priority: %w", i+1, err)
			}
		}

		createdIDs[i+1] = task.ID
		result.Tasks = append(result.Tasks, importedTask(task.ID, parentID, draft))
	}

	if uc.logger != nil {
		uc.logger.Info("", "import", fmt.Sprintf("imported %d tasks for %s", len(result.Tasks), ownerID))
	}
	return result, nil
}

func importedTask(id, parentID string, draft domain.TaskDraft) ImportedTask {
	return ImportedTask{
		ID:       id,
		ParentID: parentID,
		Title:    draft.Title,
		Deadline: draft.Deadline,
		Priority: draft.Priority,
	}
}

func isPosition(id string, positions map[int]string) bool {
	n, err := strconv.Atoi(id)
	if err != nil {
		return false
	}
	_, ok := positions[n]
	return ok
}

// parentError reports a missing existing parent as ErrParentNotFound.
func parentError(err error) error {
	if errors.Is(err, domain.ErrTaskNotFound) {
		return domain.ErrParentNotFound
	}
	return err
}
