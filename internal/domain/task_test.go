package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskID(t *testing.T) {
	a := NewTaskID()
	b := NewTaskID()

	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestTask_IsRoot(t *testing.T) {
	root := &Task{ID: "a"}
	assert.True(t, root.IsRoot())

	child := &Task{ID: "b", ParentID: ParentRef("a")}
	assert.False(t, child.IsRoot())
	assert.True(t, child.HasParent("a"))
	assert.False(t, child.HasParent("c"))
	assert.False(t, root.HasParent(""))
}

func TestTask_AddChild(t *testing.T) {
	task := &Task{ID: "p"}

	task.AddChild("c")
	task.AddChild("a")
	task.AddChild("b")
	task.AddChild("a")

	assert.Equal(t, []string{"a", "b", "c"}, task.ChildIDs)
	assert.True(t, task.HasChild("b"))
	assert.False(t, task.HasChild("d"))
}

func TestTask_RemoveChild(t *testing.T) {
	task := &Task{ID: "p", ChildIDs: []string{"a", "b"}}

	task.RemoveChild("x")
	assert.Equal(t, []string{"a", "b"}, task.ChildIDs)

	task.RemoveChild("a")
	assert.Equal(t, []string{"b"}, task.ChildIDs)

	task.RemoveChild("b")
	assert.Nil(t, task.ChildIDs)
}

func TestTask_Clone(t *testing.T) {
	orig := &Task{
		ID:       "t",
		Title:    "Title",
		ParentID: ParentRef("p"),
		ChildIDs: []string{"a", "b"},
	}

	c := orig.Clone()
	require.Equal(t, orig, c)

	*c.ParentID = "other"
	c.ChildIDs[0] = "z"
	c.Title = "Changed"

	assert.Equal(t, "p", *orig.ParentID)
	assert.Equal(t, []string{"a", "b"}, orig.ChildIDs)
	assert.Equal(t, "Title", orig.Title)

	var nilTask *Task
	assert.Nil(t, nilTask.Clone())
}

func TestParentRef(t *testing.T) {
	assert.Nil(t, ParentRef(""))

	ref := ParentRef("abc")
	require.NotNil(t, ref)
	assert.Equal(t, "abc", *ref)
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, ErrTaskNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrParentNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrUserNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrEmptyTitle, ErrValidation)
	assert.ErrorIs(t, ErrMissingDeadline, ErrValidation)
	assert.ErrorIs(t, ErrSelfParent, ErrCycle)
	assert.ErrorIs(t, ErrCorruptedTree, ErrCycle)
	assert.NotErrorIs(t, ErrCycle, ErrValidation)
}
