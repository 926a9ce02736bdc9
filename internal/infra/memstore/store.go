// Package memstore provides an in-memory implementation of domain.TaskStore.
package memstore

import (
	"sync"

	"github.com/runoshun/tasktree/internal/domain"
)

// Store keeps tasks in a map guarded by a RWMutex.
// Records are cloned on the way in and out so callers never share
// the canonical copy.
type Store struct {
	tasks map[string]*domain.Task
	mu    sync.RWMutex
}

// New creates an empty Store.
func New() *Store {
	return &Store{tasks: make(map[string]*domain.Task)}
}

// Save creates or replaces a task.
func (s *Store) Save(task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task.Clone()
	return nil
}

// Find retrieves a task by ID.
func (s *Store) Find(id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return t.Clone(), nil
}

// Delete removes a task by ID.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	return nil
}

// ListByOwner returns every task owned by ownerID.
func (s *Store) ListByOwner(ownerID string) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tasks []*domain.Task
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			tasks = append(tasks, t.Clone())
		}
	}
	return tasks, nil
}

// List returns every task.
func (s *Store) List() ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]*domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t.Clone())
	}
	return tasks, nil
}

// Count returns the number of stored tasks.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks), nil
}

// Initialize is a no-op; a memory store is always ready.
func (s *Store) Initialize() error {
	return nil
}

// IsInitialized always returns true.
func (s *Store) IsInitialized() bool {
	return true
}

var (
	_ domain.TaskStore        = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)
