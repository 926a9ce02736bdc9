package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/infra/memstore"
)

func newConcurrentEngine(opts Options) (*Engine, *memstore.Store) {
	store := memstore.New()
	return New(store, nil, nil, nil, opts), store
}

func TestConcurrentCreate(t *testing.T) {
	const goroutines, perGoroutine = 16, 50
	e, store := newConcurrentEngine(Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, goroutines*perGoroutine)
	for g := range goroutines {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range perGoroutine {
				_, err := e.CreateTask(ctx, CreateTaskInput{
					Title:    fmt.Sprintf("g%d-%d", g, i),
					Deadline: testDeadline,
					OwnerID:  "U1",
				})
				errs <- err
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	tasks, err := e.ListByOwner(ctx, "U1")
	require.NoError(t, err)
	assert.Len(t, tasks, goroutines*perGoroutine)

	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, goroutines*perGoroutine, n)
}

func TestConcurrentSubtasksUnderOneParent(t *testing.T) {
	const goroutines, perGoroutine = 8, 25
	e, store := newConcurrentEngine(Options{})
	ctx := context.Background()
	parent, err := e.CreateTask(ctx, rootInput("parent"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				_, err := e.CreateSubtask(ctx, CreateSubtaskInput{ParentID: parent.ID, CreateTaskInput: rootInput("child")})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	got, err := e.GetTask(ctx, parent.ID)
	require.NoError(t, err)
	assert.Len(t, got.ChildIDs, goroutines*perGoroutine)
	assertConsistent(t, store)
}

func TestConcurrentCrossMoves(t *testing.T) {
	// Two roots moved under each other at the same time: exactly one may win.
	for range 50 {
		e, store := newConcurrentEngine(Options{})
		ctx := context.Background()
		a, err := e.CreateTask(ctx, rootInput("A"))
		require.NoError(t, err)
		b, err := e.CreateTask(ctx, rootInput("B"))
		require.NoError(t, err)

		var wg sync.WaitGroup
		var cycles atomic.Int32
		move := func(id, parent string) {
			defer wg.Done()
			err := e.MoveTask(ctx, id, ptr(parent))
			if errors.Is(err, domain.ErrCycle) {
				cycles.Add(1)
				return
			}
			assert.NoError(t, err)
		}
		wg.Add(2)
		go move(a.ID, b.ID)
		go move(b.ID, a.ID)
		wg.Wait()

		assert.Equal(t, int32(1), cycles.Load())
		assertConsistent(t, store)
	}
}

func TestConcurrentMixedOperations(t *testing.T) {
	for _, policy := range []domain.DeletePolicy{domain.DeletePolicyOrphan, domain.DeletePolicyCascade} {
		t.Run(string(policy), func(t *testing.T) {
			e, store := newConcurrentEngine(Options{DeletePolicy: policy})
			ctx := context.Background()

			const seed = 40
			ids := make([]string, 0, seed)
			for i := range seed {
				task, err := e.CreateTask(ctx, rootInput(fmt.Sprintf("t%d", i)))
				require.NoError(t, err)
				ids = append(ids, task.ID)
			}

			// Errors that a racing caller can legitimately see.
			expected := func(err error) bool {
				return err == nil ||
					errors.Is(err, domain.ErrNotFound) ||
					errors.Is(err, domain.ErrCycle) ||
					errors.Is(err, domain.ErrInvalidTransition)
			}

			var wg sync.WaitGroup
			for g := range 8 {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for i := range 200 {
						x := ids[(g*31+i*7)%len(ids)]
						y := ids[(g*17+i*13)%len(ids)]
						var err error
						switch (g + i) % 6 {
						case 0, 1:
							err = e.MoveTask(ctx, x, ptr(y))
						case 2:
							err = e.MoveTask(ctx, x, nil)
						case 3:
							_, err = e.CreateSubtask(ctx, CreateSubtaskInput{ParentID: x, CreateTaskInput: rootInput("sub")})
						case 4:
							task, getErr := e.GetTask(ctx, x)
							if getErr != nil {
								err = getErr
								break
							}
							if next, ok := task.Status.Next(); ok {
								err = e.UpdateTask(ctx, updateInput(task, next))
							}
						case 5:
							if i%40 == 0 {
								err = e.DeleteTask(ctx, x)
							}
						}
						assert.True(t, expected(err), "unexpected error: %v", err)
					}
				}(g)
			}
			wg.Wait()

			assertConsistent(t, store)
		})
	}
}

func TestConcurrentTerminalStatusRace(t *testing.T) {
	// From in_review, completed and cancelled race; both are terminal, so
	// exactly one update succeeds.
	for range 50 {
		e, _ := newConcurrentEngine(Options{})
		ctx := context.Background()
		task, err := e.CreateTask(ctx, rootInput("T"))
		require.NoError(t, err)
		for _, s := range []domain.Status{domain.StatusInProgress, domain.StatusInReview} {
			require.NoError(t, e.UpdateTask(ctx, updateInput(task, s)))
		}

		var wg sync.WaitGroup
		var rejected atomic.Int32
		for _, s := range []domain.Status{domain.StatusCompleted, domain.StatusCancelled} {
			wg.Add(1)
			go func(s domain.Status) {
				defer wg.Done()
				err := e.UpdateTask(ctx, updateInput(task, s))
				if errors.Is(err, domain.ErrInvalidTransition) {
					rejected.Add(1)
					return
				}
				assert.NoError(t, err)
			}(s)
		}
		wg.Wait()

		assert.Equal(t, int32(1), rejected.Load())
		got, err := e.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.True(t, got.Status.IsTerminal())
	}
}

func TestLockTable_OrderAndDedup(t *testing.T) {
	var lt lockTable

	// Overlapping sets in opposite orders must not deadlock.
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var unlock func()
			if i%2 == 0 {
				unlock = lt.lock("a", "b", "c", "a", "")
			} else {
				unlock = lt.lock("c", "b", "a")
			}
			unlock()
		}(i)
	}
	wg.Wait()

	assert.Zero(t, lt.size())

	unlock := lt.lock("a", "b")
	assert.Equal(t, 2, lt.size())
	unlock()
	assert.Zero(t, lt.size())
}

func TestLockTable_WaiterKeepsEntry(t *testing.T) {
	var lt lockTable

	unlock := lt.lock("a")
	done := make(chan struct{})
	go func() {
		defer close(done)
		inner := lt.lock("a")
		inner()
	}()

	// The waiter must get the same mutex, so the entry survives the first release.
	unlock()
	<-done
	assert.Zero(t, lt.size())
}

func TestEngine_MissingIDsLeaveNoLocks(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	ctx := context.Background()
	root := mustCreate(t, e, "root")

	for i := range 1000 {
		id := fmt.Sprintf("missing-%d", i)
		_, err := e.GetTask(ctx, id)
		require.ErrorIs(t, err, domain.ErrTaskNotFound)
		_, err = e.Children(ctx, id)
		require.ErrorIs(t, err, domain.ErrTaskNotFound)
		require.ErrorIs(t, e.SetPriority(ctx, id, domain.PriorityHigh), domain.ErrTaskNotFound)
		require.ErrorIs(t, e.MoveTask(ctx, root.ID, ptr(id)), domain.ErrParentNotFound)
		_, err = e.CreateSubtask(ctx, CreateSubtaskInput{ParentID: id, CreateTaskInput: rootInput("x")})
		require.ErrorIs(t, err, domain.ErrParentNotFound)
	}
	child := mustSubtask(t, e, root.ID, "child")
	require.NoError(t, e.DeleteTask(ctx, child.ID))

	assert.Zero(t, e.locks.size())
}
