// Package domain contains core business entities and interfaces.
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Task represents a work item in the hierarchy.
// Parent and children are plain ID values; only the store owns records.
// Fields are ordered to minimize memory padding.
type Task struct {
	Deadline    time.Time `json:"deadline"`              // Due date (required)
	Created     time.Time `json:"created"`               // Creation time
	Updated     time.Time `json:"updated"`               // Last mutation time
	ParentID    *string   `json:"parentID"`              // Parent task ID (nil = root task)
	ID          string    `json:"id"`                    // Task ID (immutable)
	Title       string    `json:"title"`                 // Title (required)
	Description string    `json:"description,omitempty"` // Description (optional)
	OwnerID     string    `json:"ownerID"`               // Owning user
	Status      Status    `json:"status"`                // Current status
	Priority    Priority  `json:"priority"`              // Current priority
	ChildIDs    []string  `json:"childIDs,omitempty"`    // Direct children, kept sorted
}

// NewTaskID returns a fresh task identifier.
// UUIDv7 keeps IDs roughly ordered by creation time.
func NewTaskID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsRoot returns true if this is a root task (no parent).
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}

// HasParent returns true if the task's parent is the given ID.
func (t *Task) HasParent(id string) bool {
	return t.ParentID != nil && *t.ParentID == id
}

// HasChild returns true if id is in the child set.
func (t *Task) HasChild(id string) bool {
	_, found := slices.BinarySearch(t.ChildIDs, id)
	return found
}

// AddChild inserts id into the child set, keeping it sorted and unique.
func (t *Task) AddChild(id string) {
	i, found := slices.BinarySearch(t.ChildIDs, id)
	if found {
		return
	}
	t.ChildIDs = slices.Insert(t.ChildIDs, i, id)
}

// RemoveChild deletes id from the child set. It is a no-op if absent.
func (t *Task) RemoveChild(id string) {
	i, found := slices.BinarySearch(t.ChildIDs, id)
	if !found {
		return
	}
	t.ChildIDs = slices.Delete(t.ChildIDs, i, i+1)
	if len(t.ChildIDs) == 0 {
		t.ChildIDs = nil
	}
}

// Clone returns a deep copy of the task.
// Stores hand out clones so callers never alias the canonical record.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.ParentID != nil {
		p := *t.ParentID
		c.ParentID = &p
	}
	if t.ChildIDs != nil {
		c.ChildIDs = slices.Clone(t.ChildIDs)
	}
	return &c
}

// ParentRef returns a pointer to a copy of id, or nil for an empty id.
// Used to build optional parent references.
func ParentRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
