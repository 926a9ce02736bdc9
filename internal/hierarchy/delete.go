package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/runoshun/tasktree/internal/domain"
)

// DeleteTask removes a task and detaches it from its parent.
// Under the orphan policy its children become root tasks; under the
// cascade policy its whole subtree is removed.
func (e *Engine) DeleteTask(_ context.Context, id string) error {
	for {
		var err error
		if e.opts.DeletePolicy == domain.DeletePolicyCascade {
			err = e.tryDeleteCascade(id)
		} else {
			err = e.tryDeleteOrphan(id)
		}
		if errors.Is(err, errStale) {
			continue
		}
		return err
	}
}

func (e *Engine) tryDeleteOrphan(id string) error {
	snapshot, err := e.find(id)
	if err != nil {
		return err
	}

	lockIDs := append([]string{id, deref(snapshot.ParentID)}, snapshot.ChildIDs...)
	unlock := e.locks.lock(lockIDs...)
	defer unlock()

	task, err := e.find(id)
	if err != nil {
		return err
	}
	if !sameLinks(task, snapshot) {
		return errStale
	}

	parent, err := e.lockedParent(task)
	if err != nil {
		return err
	}
	children := make([]*domain.Task, 0, len(task.ChildIDs))
	for _, childID := range task.ChildIDs {
		child, err := e.find(childID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		children = append(children, child)
	}

	now := e.clock.Now()
	j := e.newJournal()
	for _, child := range children {
		if !child.HasParent(id) {
			continue
		}
		before := child.Clone()
		child.ParentID = nil
		child.Updated = now
		if err := j.save(before, child); err != nil {
			return err
		}
	}
	if err := e.detachAndDelete(j, task, parent); err != nil {
		return err
	}

	e.log(id, fmt.Sprintf("deleted: %q, %d children moved to root", task.Title, len(children)))
	return nil
}

func (e *Engine) tryDeleteCascade(id string) error {
	root, err := e.find(id)
	if err != nil {
		return err
	}
	snapshot, err := e.subtree(root)
	if err != nil {
		return err
	}

	lockIDs := make([]string, 0, len(snapshot)+1)
	lockIDs = append(lockIDs, deref(root.ParentID))
	for _, t := range snapshot {
		lockIDs = append(lockIDs, t.ID)
	}
	unlock := e.locks.lock(lockIDs...)
	defer unlock()

	// Every record of the subtree must be as it was when the lock set
	// was computed, otherwise a child may have been added outside it.
	current := make([]*domain.Task, 0, len(snapshot))
	for _, snap := range snapshot {
		t, err := e.find(snap.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errStale
			}
			return err
		}
		if !sameLinks(t, snap) {
			return errStale
		}
		current = append(current, t)
	}

	task := current[0]
	parent, err := e.lockedParent(task)
	if err != nil {
		return err
	}

	// Leaves first, so an interrupted run never leaves a child without its parent.
	j := e.newJournal()
	for i := len(current) - 1; i >= 1; i-- {
		if err := j.delete(current[i]); err != nil {
			return err
		}
	}
	if err := e.detachAndDelete(j, task, parent); err != nil {
		return err
	}

	e.log(id, fmt.Sprintf("deleted: %q with %d descendants", task.Title, len(current)-1))
	return nil
}

// subtree returns root followed by its descendants in breadth-first order.
func (e *Engine) subtree(root *domain.Task) ([]*domain.Task, error) {
	out := []*domain.Task{root}
	seen := map[string]bool{root.ID: true}
	for i := 0; i < len(out); i++ {
		for _, childID := range out[i].ChildIDs {
			if seen[childID] {
				return nil, fmt.Errorf("subtree of %s: %w", root.ID, domain.ErrCorruptedTree)
			}
			seen[childID] = true
			child, err := e.find(childID)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			out = append(out, child)
		}
	}
	return out, nil
}

// lockedParent reads the parent of task, which the caller has locked.
// A dangling parent reference yields nil.
func (e *Engine) lockedParent(task *domain.Task) (*domain.Task, error) {
	if task.ParentID == nil {
		return nil, nil
	}
	parent, err := e.find(*task.ParentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return parent, err
}

// detachAndDelete removes task from its parent's child set and from the store.
func (e *Engine) detachAndDelete(j *journal, task, parent *domain.Task) error {
	if parent != nil {
		before := parent.Clone()
		parent.RemoveChild(task.ID)
		parent.Updated = e.clock.Now()
		if err := j.save(before, parent); err != nil {
			return err
		}
	}
	return j.delete(task)
}

// sameLinks reports whether a and b agree on parent and children.
func sameLinks(a, b *domain.Task) bool {
	return samePtr(a.ParentID, b.ParentID) && slices.Equal(a.ChildIDs, b.ChildIDs)
}
