// Package workload derives read-only per-user views over stored tasks.
package workload

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/runoshun/tasktree/internal/domain"
)

// Summary holds the headline counts of a detailed workload.
type Summary struct {
	TotalRootTasks int `json:"totalRootTasks"`
	TotalSubtasks  int `json:"totalSubtasks"`
	Total          int `json:"total"`
}

// Detail is the full breakdown of one user's tasks.
// Only tasks owned by the user are considered, so a subtask whose parent
// belongs to someone else still appears under that parent's ID.
// Fields are ordered to minimize memory padding.
type Detail struct {
	TasksByParent map[string][]*domain.Task `json:"tasksByParent"`
	StatusCount   map[domain.Status]int     `json:"statusCount"`
	PriorityCount map[domain.Priority]int   `json:"priorityCount"`
	OwnerID       string                    `json:"ownerID"`
	RootTasks     []*domain.Task            `json:"rootTasks"`
	Subtasks      []*domain.Task            `json:"subtasks"`
	Summary       Summary                   `json:"summary"`
}

// Aggregator computes workload views from a task store.
// It never writes.
type Aggregator struct {
	tasks domain.TaskStore
	users domain.UserDirectory
}

// New creates an Aggregator.
func New(tasks domain.TaskStore, users domain.UserDirectory) *Aggregator {
	return &Aggregator{tasks: tasks, users: users}
}

// StatusHistogram counts the owner's tasks per status.
// Every status is present, with zero for statuses no task is in.
func (a *Aggregator) StatusHistogram(_ context.Context, ownerID string) (map[domain.Status]int, error) {
	tasks, err := a.ownerTasks(ownerID)
	if err != nil {
		return nil, err
	}
	return statusCount(tasks), nil
}

// Detailed partitions the owner's tasks into roots and subtasks, groups
// subtasks by parent, and counts them by status and priority.
// Task lists are ordered by creation time, then ID.
func (a *Aggregator) Detailed(_ context.Context, ownerID string) (*Detail, error) {
	tasks, err := a.ownerTasks(ownerID)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(tasks, func(x, y *domain.Task) int {
		if c := x.Created.Compare(y.Created); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})

	d := &Detail{
		OwnerID:       ownerID,
		RootTasks:     []*domain.Task{},
		Subtasks:      []*domain.Task{},
		TasksByParent: make(map[string][]*domain.Task),
		StatusCount:   statusCount(tasks),
		PriorityCount: make(map[domain.Priority]int, len(domain.AllPriorities())),
	}
	for _, p := range domain.AllPriorities() {
		d.PriorityCount[p] = 0
	}

	for _, t := range tasks {
		if t.Priority != "" {
			d.PriorityCount[t.Priority]++
		}
		if t.IsRoot() {
			d.RootTasks = append(d.RootTasks, t)
			continue
		}
		d.Subtasks = append(d.Subtasks, t)
		d.TasksByParent[*t.ParentID] = append(d.TasksByParent[*t.ParentID], t)
	}

	d.Summary = Summary{
		TotalRootTasks: len(d.RootTasks),
		TotalSubtasks:  len(d.Subtasks),
		Total:          len(tasks),
	}
	return d, nil
}

func (a *Aggregator) ownerTasks(ownerID string) ([]*domain.Task, error) {
	ok, err := a.users.Exists(ownerID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, ownerID)
	}

	tasks, err := a.tasks.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func statusCount(tasks []*domain.Task) map[domain.Status]int {
	counts := make(map[domain.Status]int, len(domain.AllStatuses()))
	for _, s := range domain.AllStatuses() {
		counts[s] = 0
	}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}
