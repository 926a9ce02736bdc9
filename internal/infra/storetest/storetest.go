// Package storetest holds the behaviour every domain.TaskStore must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/tasktree/internal/domain"
)

// Factory returns a fresh, empty, initialized store.
type Factory func(t *testing.T) domain.TaskStore

var baseTime = time.Date(2026, time.January, 2, 15, 4, 5, 0, time.UTC)

// NewTask builds a task with every field populated.
func NewTask(id, owner string) *domain.Task {
	return &domain.Task{
		ID:          id,
		Title:       "Task " + id,
		Description: "Description of " + id,
		Deadline:    baseTime.Add(72 * time.Hour),
		Status:      domain.StatusPending,
		Priority:    domain.PriorityMedium,
		OwnerID:     owner,
		Created:     baseTime,
		Updated:     baseTime,
	}
}

// Run executes the contract suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("SaveAndFind", func(t *testing.T) {
		s := newStore(t)

		parent := NewTask("p", "alice")
		parent.ChildIDs = []string{"a", "b"}
		child := NewTask("a", "alice")
		child.ParentID = domain.ParentRef("p")
		child.Priority = domain.PriorityCritical
		child.Status = domain.StatusInReview

		require.NoError(t, s.Save(parent))
		require.NoError(t, s.Save(child))

		got, err := s.Find("p")
		require.NoError(t, err)
		assertTaskEqual(t, parent, got)

		got, err = s.Find("a")
		require.NoError(t, err)
		assertTaskEqual(t, child, got)
	})

	t.Run("FindMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Find("missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		s := newStore(t)

		task := NewTask("t", "alice")
		require.NoError(t, s.Save(task))

		task.Title = "Renamed"
		task.ChildIDs = []string{"c"}
		require.NoError(t, s.Save(task))

		got, err := s.Find("t")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, []string{"c"}, got.ChildIDs)

		n, err := s.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("NoAliasing", func(t *testing.T) {
		s := newStore(t)

		task := NewTask("t", "alice")
		task.ChildIDs = []string{"x"}
		require.NoError(t, s.Save(task))

		// Mutating the saved value must not reach the store.
		task.ChildIDs[0] = "mutated"
		task.Title = "mutated"

		got, err := s.Find("t")
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, got.ChildIDs)
		assert.Equal(t, "Task t", got.Title)

		// Nor may mutating a returned value.
		got.ChildIDs[0] = "mutated"
		again, err := s.Find("t")
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, again.ChildIDs)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Save(NewTask("t", "alice")))
		require.NoError(t, s.Delete("t"))

		_, err := s.Find("t")
		require.ErrorIs(t, err, domain.ErrNotFound)

		// Deleting a missing ID is not an error.
		require.NoError(t, s.Delete("t"))
	})

	t.Run("ListByOwner", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Save(NewTask("a1", "alice")))
		require.NoError(t, s.Save(NewTask("a2", "alice")))
		require.NoError(t, s.Save(NewTask("b1", "bob")))

		alice, err := s.ListByOwner("alice")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a1", "a2"}, ids(alice))

		nobody, err := s.ListByOwner("carol")
		require.NoError(t, err)
		assert.Empty(t, nobody)
	})

	t.Run("ListAndCount", func(t *testing.T) {
		s := newStore(t)

		n, err := s.Count()
		require.NoError(t, err)
		assert.Zero(t, n)

		for i := range 5 {
			require.NoError(t, s.Save(NewTask(fmt.Sprintf("t%d", i), "alice")))
		}

		all, err := s.List()
		require.NoError(t, err)
		assert.Len(t, all, 5)

		n, err = s.Count()
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})

	t.Run("ConcurrentSave", func(t *testing.T) {
		s := newStore(t)

		const workers, perWorker = 4, 10
		var wg sync.WaitGroup
		errs := make(chan error, workers*perWorker)
		for w := range workers {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := range perWorker {
					errs <- s.Save(NewTask(fmt.Sprintf("w%d-%d", w, i), "alice"))
				}
			}(w)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		n, err := s.Count()
		require.NoError(t, err)
		assert.Equal(t, workers*perWorker, n)
	})
}

func ids(tasks []*domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	sort.Strings(out)
	return out
}

// assertTaskEqual compares tasks with time.Time.Equal so that backends
// that normalise time zones still pass.
func assertTaskEqual(t *testing.T, want, got *domain.Task) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Priority, got.Priority)
	assert.Equal(t, want.OwnerID, got.OwnerID)
	assert.Equal(t, want.ParentID, got.ParentID)
	assert.Equal(t, want.ChildIDs, got.ChildIDs)
	assert.True(t, want.Deadline.Equal(got.Deadline), "deadline %v != %v", want.Deadline, got.Deadline)
	assert.True(t, want.Created.Equal(got.Created), "created %v != %v", want.Created, got.Created)
	assert.True(t, want.Updated.Equal(got.Updated), "updated %v != %v", want.Updated, got.Updated)
}
