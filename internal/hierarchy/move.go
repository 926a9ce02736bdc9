package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/tasktree/internal/domain"
)

// errStale signals that records changed between the unlocked snapshot
// and acquiring their locks; the operation starts over.
var errStale = errors.New("stale snapshot")

// MoveTask reparents a task. A nil newParentID makes it a root task.
// The move is rejected with domain.ErrCycle when the new parent is the
// task itself or one of its descendants. On success the old parent's
// child set, the new parent's child set and the task's parent are
// written under the locks of all three records.
func (e *Engine) MoveTask(_ context.Context, id string, newParentID *string) error {
	e.moveMu.Lock()
	defer e.moveMu.Unlock()

	for {
		err := e.tryMove(id, newParentID)
		if errors.Is(err, errStale) {
			continue
		}
		return err
	}
}

func (e *Engine) tryMove(id string, newParentID *string) error {
	snapshot, err := e.find(id)
	if err != nil {
		return err
	}
	if newParentID != nil && *newParentID == id {
		return fmt.Errorf("move %s: %w", id, domain.ErrSelfParent)
	}
	if samePtr(snapshot.ParentID, newParentID) {
		return nil
	}

	unlock := e.locks.lock(id, deref(snapshot.ParentID), deref(newParentID))
	defer unlock()

	task, err := e.find(id)
	if err != nil {
		return err
	}
	if !samePtr(task.ParentID, snapshot.ParentID) {
		return errStale
	}

	var newParent *domain.Task
	if newParentID != nil {
		newParent, err = e.findParent(*newParentID)
		if err != nil {
			return err
		}
		if err := e.checkAncestry(id, newParent); err != nil {
			return err
		}
	}

	var oldParent *domain.Task
	if task.ParentID != nil {
		oldParent, err = e.find(*task.ParentID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		// A missing old parent leaves nothing to detach from.
	}

	// All preconditions hold; start writing.
	now := e.clock.Now()
	j := e.newJournal()
	if oldParent != nil {
		before := oldParent.Clone()
		oldParent.RemoveChild(id)
		oldParent.Updated = now
		if err := j.save(before, oldParent); err != nil {
			return err
		}
	}
	if newParent != nil {
		before := newParent.Clone()
		newParent.AddChild(id)
		newParent.Updated = now
		if err := j.save(before, newParent); err != nil {
			return err
		}
	}
	before := task.Clone()
	task.ParentID = domain.ParentRef(deref(newParentID))
	task.Updated = now
	if err := j.save(before, task); err != nil {
		return err
	}

	e.log(id, fmt.Sprintf("moved: %s -> %s", parentLabel(snapshot.ParentID), parentLabel(newParentID)))
	return nil
}

// checkAncestry walks up from start and fails if id is reached.
// The walk is bounded by the number of stored tasks; a longer chain can
// only mean the stored tree already holds a cycle.
func (e *Engine) checkAncestry(id string, start *domain.Task) error {
	limit, err := e.store.Count()
	if err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}

	cur := start
	for visited := 1; ; visited++ {
		if cur.ID == id {
			return fmt.Errorf("move %s under %s: %w", id, start.ID, domain.ErrCycle)
		}
		if cur.ParentID == nil {
			return nil
		}
		if visited > limit {
			return fmt.Errorf("walk from %s: %w", start.ID, domain.ErrCorruptedTree)
		}
		next, err := e.store.Find(*cur.ParentID)
		if errors.Is(err, domain.ErrNotFound) {
			// Ancestor deleted concurrently: the chain ends here.
			return nil
		}
		if err != nil {
			return fmt.Errorf("get ancestor %s: %w", *cur.ParentID, err)
		}
		cur = next
	}
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func parentLabel(p *string) string {
	if p == nil {
		return "root"
	}
	return *p
}
