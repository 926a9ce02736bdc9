package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/hierarchy"
	"github.com/runoshun/tasktree/internal/testutil"
)

func newImportFixture(t *testing.T) (*ImportTasks, *hierarchy.Engine, *testutil.MockTaskStore, *testutil.MockLogger) {
	t.Helper()
	store := testutil.NewMockTaskStore()
	logger := &testutil.MockLogger{}
	clock := &testutil.MockClock{NowTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	engine := hierarchy.New(store, nil, clock, logger, hierarchy.Options{})
	return NewImportTasks(engine, logger), engine, store, logger
}

const releasePlan = `---
title: Release 1.0
deadline: 2026-03-01
priority: high
---
Ship it.

---
title: Write changelog
deadline: 2026-02-20T12:00:00Z
parent: 1
---

---
title: Tag release
deadline: 2026-02-28
parent: 1
---
`

func TestImportTasks_Execute_SingleTask(t *testing.T) {
	uc, _, store, _ := newImportFixture(t)

	out, err := uc.Execute(context.Background(), ImportTasksInput{
		Content: "---\ntitle: Test Task\ndeadline: 2026-02-01\n---\nTask description here.",
		OwnerID: "alice",
	})

	require.NoError(t, err)
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, "Test Task", out.Tasks[0].Title)
	assert.Empty(t, out.Tasks[0].ParentID)

	task, err := store.Find(out.Tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Task description here.", task.Description)
	assert.Equal(t, "alice", task.OwnerID)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, time.Date(2026, 2, 1, 23, 59, 59, 0, time.UTC), task.Deadline)
	assert.True(t, task.IsRoot())
}

func TestImportTasks_Execute_Hierarchy(t *testing.T) {
	uc, _, store, logger := newImportFixture(t)

	out, err := uc.Execute(context.Background(), ImportTasksInput{Content: releasePlan, OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, out.Tasks, 3)

	rootID := out.Tasks[0].ID
	assert.Equal(t, rootID, out.Tasks[1].ParentID)
	assert.Equal(t, rootID, out.Tasks[2].ParentID)

	root, err := store.Find(rootID)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, root.Priority)
	assert.ElementsMatch(t, []string{out.Tasks[1].ID, out.Tasks[2].ID}, root.ChildIDs)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	entries := logger.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "imported 3 tasks for alice", entries[len(entries)-1].Msg)
}

func TestImportTasks_Execute_ExistingParent(t *testing.T) {
	uc, engine, store, _ := newImportFixture(t)
	parent, err := engine.CreateTask(context.Background(), hierarchy.CreateTaskInput{
		Title: "existing", Deadline: time.Now(), OwnerID: "alice",
	})
	require.NoError(t, err)

	content := "---\ntitle: child\ndeadline: 2026-02-01\nparent: \"#" + parent.ID + "\"\n---\n"
	out, err := uc.Execute(context.Background(), ImportTasksInput{Content: content, OwnerID: "bob"})
	require.NoError(t, err)
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, parent.ID, out.Tasks[0].ParentID)

	got, err := store.Find(parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{out.Tasks[0].ID}, got.ChildIDs)
}

func TestImportTasks_Execute_MissingParentStopsImport(t *testing.T) {
	uc, _, store, _ := newImportFixture(t)

	content := `---
title: first
deadline: 2026-02-01
---

---
title: orphan
deadline: 2026-02-01
parent: missing-id
---
`
	out, err := uc.Execute(context.Background(), ImportTasksInput{Content: content, OwnerID: "alice"})
	require.ErrorIs(t, err, domain.ErrParentNotFound)
	assert.Contains(t, err.Error(), "task 2")
	require.Len(t, out.Tasks, 1, "tasks created before the failure are reported")

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImportTasks_Execute_ForwardReference(t *testing.T) {
	uc, _, store, _ := newImportFixture(t)

	content := `---
title: child first
deadline: 2026-02-01
parent: 2
---

---
title: parent later
deadline: 2026-02-01
---
`
	_, err := uc.Execute(context.Background(), ImportTasksInput{Content: content, OwnerID: "alice"})
	require.ErrorIs(t, err, domain.ErrInvalidParentRef)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestImportTasks_Execute_ParseErrors(t *testing.T) {
	uc, _, _, _ := newImportFixture(t)

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty file", "  \n", domain.ErrEmptyFile},
		{"no frontmatter", "just text", domain.ErrNoTasksInFile},
		{"missing deadline", "---\ntitle: x\n---\n", domain.ErrMissingDeadline},
		{"bad priority", "---\ntitle: x\ndeadline: 2026-01-01\npriority: urgent\n---\n", domain.ErrInvalidPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), ImportTasksInput{Content: tt.content, OwnerID: "alice"})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestImportTasks_Execute_MissingOwner(t *testing.T) {
	uc, _, _, _ := newImportFixture(t)

	_, err := uc.Execute(context.Background(), ImportTasksInput{Content: releasePlan})
	require.ErrorIs(t, err, domain.ErrEmptyOwner)
}

func TestImportTasks_Execute_DryRun(t *testing.T) {
	uc, _, store, logger := newImportFixture(t)

	out, err := uc.Execute(context.Background(), ImportTasksInput{Content: releasePlan, OwnerID: "alice", DryRun: true})
	require.NoError(t, err)
	require.Len(t, out.Tasks, 3)

	assert.Equal(t, "1", out.Tasks[0].ID)
	assert.Equal(t, "2", out.Tasks[1].ID)
	assert.Equal(t, "1", out.Tasks[1].ParentID)
	assert.Equal(t, "1", out.Tasks[2].ParentID)
	assert.Equal(t, domain.PriorityHigh, out.Tasks[0].Priority)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, count, "dry run creates nothing")
	assert.Empty(t, logger.Entries())
}

func TestImportTasks_Execute_DryRunChecksExistingParent(t *testing.T) {
	uc, _, store, _ := newImportFixture(t)

	content := "---\ntitle: child\ndeadline: 2026-02-01\nparent: nope\n---\n"
	_, err := uc.Execute(context.Background(), ImportTasksInput{Content: content, OwnerID: "alice", DryRun: true})
	require.ErrorIs(t, err, domain.ErrParentNotFound)

	store.FindErr = errors.New("store down")
	_, err = uc.Execute(context.Background(), ImportTasksInput{Content: content, OwnerID: "alice", DryRun: true})
	require.ErrorContains(t, err, "store down")
}
