// Package jsonstore provides a JSON file-based implementation of domain.TaskStore.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/runoshun/tasktree/internal/domain"
)

// storeData represents the JSON file structure.
type storeData struct {
	Tasks map[string]*domain.Task `json:"tasks"`
	Meta  meta                    `json:"meta"`
}

// meta contains store metadata.
type meta struct {
	Version int `json:"version"`
}

const formatVersion = 1

// Store implements domain.TaskStore using a single JSON file.
// Reads take a shared flock and writes an exclusive one, so several
// processes may use the same file.
type Store struct {
	path     string
	lockPath string
}

// New creates a new Store for the given file path.
// The file must be created with Initialize before use.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// Save creates or replaces a task.
func (s *Store) Save(task *domain.Task) error {
	return s.update(func(data *storeData) error {
		data.Tasks[task.ID] = task.Clone()
		return nil
	})
}

// Find retrieves a task by ID.
func (s *Store) Find(id string) (*domain.Task, error) {
	var task *domain.Task
	err := s.view(func(data *storeData) error {
		t, ok := data.Tasks[id]
		if !ok {
			return domain.ErrTaskNotFound
		}
		task = t
		task.ID = id
		return nil
	})
	return task, err
}

// Delete removes a task by ID.
func (s *Store) Delete(id string) error {
	return s.update(func(data *storeData) error {
		delete(data.Tasks, id)
		return nil
	})
}

// ListByOwner returns every task owned by ownerID.
func (s *Store) ListByOwner(ownerID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.view(func(data *storeData) error {
		for id, t := range data.Tasks {
			if t.OwnerID != ownerID {
				continue
			}
			t.ID = id
			tasks = append(tasks, t)
		}
		return nil
	})
	return tasks, err
}

// List returns every task.
func (s *Store) List() ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.view(func(data *storeData) error {
		tasks = make([]*domain.Task, 0, len(data.Tasks))
		for id, t := range data.Tasks {
			t.ID = id
			tasks = append(tasks, t)
		}
		return nil
	})
	return tasks, err
}

// Count returns the number of stored tasks.
func (s *Store) Count() (int, error) {
	var n int
	err := s.view(func(data *storeData) error {
		n = len(data.Tasks)
		return nil
	})
	return n, err
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates an empty store file if it doesn't exist.
func (s *Store) Initialize() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	if s.IsInitialized() {
		return nil
	}

	return s.persist(&storeData{
		Meta:  meta{Version: formatVersion},
		Tasks: make(map[string]*domain.Task),
	})
}

// view runs fn against a freshly decoded copy of the file while holding a
// shared flock. Values handed to fn are never shared with other callers.
func (s *Store) view(fn func(*storeData) error) error {
	return s.transact(syscall.LOCK_SH, fn)
}

// update runs fn under an exclusive flock and persists the result when fn
// succeeds.
func (s *Store) update(fn func(*storeData) error) error {
	return s.transact(syscall.LOCK_EX, func(data *storeData) error {
		if err := fn(data); err != nil {
			return err
		}
		return s.persist(data)
	})
}

func (s *Store) transact(how int, fn func(*storeData) error) error {
	unlock, err := s.flock(how)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	return fn(data)
}

// flock locks the sidecar lock file and returns the matching unlock func.
func (s *Store) flock(how int) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("lock %s: %w", s.lockPath, err)
	}

	return func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		_ = f.Close()
	}, nil
}

func (s *Store) load() (*storeData, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	data := &storeData{}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if data.Meta.Version > formatVersion {
		return nil, fmt.Errorf("%s: unsupported format version %d", s.path, data.Meta.Version)
	}
	if data.Tasks == nil {
		data.Tasks = make(map[string]*domain.Task)
	}
	return data, nil
}

// persist replaces the store file atomically via a sibling temp file.
func (s *Store) persist(data *storeData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

var (
	_ domain.TaskStore        = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)
