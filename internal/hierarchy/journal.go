package hierarchy

import (
	"fmt"

	"github.com/runoshun/tasktree/internal/domain"
)

// journal applies the writes of one operation and remembers how to undo
// them. When a write fails, every earlier write is reverted newest first,
// so a store error never leaves half of a parent/child link behind.
// Callers hold the locks of every record they pass in.
type journal struct {
	e    *Engine
	undo []func() error
}

func (e *Engine) newJournal() *journal {
	return &journal{e: e}
}

// save writes after. before is the record as it was read, or nil when
// after is a new record.
func (j *journal) save(before, after *domain.Task) error {
	if err := j.e.save(after); err != nil {
		return j.abort(err)
	}
	if before == nil {
		id := after.ID
		j.undo = append(j.undo, func() error { return j.e.store.Delete(id) })
	} else {
		j.undo = append(j.undo, func() error { return j.e.store.Save(before) })
	}
	return nil
}

// delete removes task, which must be the record as it was read.
func (j *journal) delete(task *domain.Task) error {
	if err := j.e.store.Delete(task.ID); err != nil {
		return j.abort(fmt.Errorf("delete task %s: %w", task.ID, err))
	}
	j.undo = append(j.undo, func() error { return j.e.store.Save(task) })
	return nil
}

// abort reverts the writes made so far and returns err.
// Revert failures are logged; err stays the reported cause.
func (j *journal) abort(err error) error {
	for i := len(j.undo) - 1; i >= 0; i-- {
		if rerr := j.undo[i](); rerr != nil && j.e.logger != nil {
			j.e.logger.Error("", "task", fmt.Sprintf("revert after %v: %v", err, rerr))
		}
	}
	j.undo = nil
	return err
}
