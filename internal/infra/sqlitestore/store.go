// Package sqlitestore provides a SQLite-backed implementation of domain.TaskStore.
package sqlitestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/runoshun/tasktree/internal/domain"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store implements domain.TaskStore on a single "tasks" table.
// ChildIDs are kept as a JSON array column.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (and creates if needed) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// database/sql hands out several connections; for ":memory:" each
	// would be a separate database, and for files SQLite serialises
	// writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.Initialize(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the schema if it doesn't exist.
func (s *Store) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		deadline TEXT NOT NULL,
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		parent_id TEXT,
		child_ids TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks(owner_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// IsInitialized reports whether the database file exists.
func (s *Store) IsInitialized() bool {
	if s.path == MemoryPath {
		return true
	}
	_, err := os.Stat(s.path)
	return err == nil
}

// Save creates or replaces a task.
func (s *Store) Save(task *domain.Task) error {
	childJSON, err := json.Marshal(task.ChildIDs)
	if err != nil {
		return fmt.Errorf("marshal child ids: %w", err)
	}

	var parentID any
	if task.ParentID != nil {
		parentID = *task.ParentID
	}

	_, err = s.db.Exec(`
		INSERT INTO tasks (
			id, title, description, deadline, status, priority,
			owner_id, parent_id, child_ids, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			deadline = excluded.deadline,
			status = excluded.status,
			priority = excluded.priority,
			owner_id = excluded.owner_id,
			parent_id = excluded.parent_id,
			child_ids = excluded.child_ids,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, task.ID, task.Title, task.Description, formatTime(task.Deadline),
		string(task.Status), string(task.Priority), task.OwnerID, parentID,
		string(childJSON), formatTime(task.Created), formatTime(task.Updated))
	if err != nil {
		return fmt.Errorf("save task %s: %w", task.ID, err)
	}
	return nil
}

const selectColumns = `
	SELECT id, title, description, deadline, status, priority,
		owner_id, parent_id, child_ids, created_at, updated_at
	FROM tasks`

// Find retrieves a task by ID.
func (s *Store) Find(id string) (*domain.Task, error) {
	row := s.db.QueryRow(selectColumns+" WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}
	return task, nil
}

// Delete removes a task by ID.
func (s *Store) Delete(id string) error {
	if _, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// ListByOwner returns every task owned by ownerID.
func (s *Store) ListByOwner(ownerID string) ([]*domain.Task, error) {
	return s.query(selectColumns+" WHERE owner_id = ?", ownerID)
}

// List returns every task.
func (s *Store) List() ([]*domain.Task, error) {
	return s.query(selectColumns)
}

// Count returns the number of stored tasks.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (s *Store) query(q string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task                         domain.Task
		status, priority             string
		parentID                     sql.NullString
		childJSON                    string
		deadline, created, updatedAt string
	)
	err := row.Scan(&task.ID, &task.Title, &task.Description, &deadline,
		&status, &priority, &task.OwnerID, &parentID, &childJSON, &created, &updatedAt)
	if err != nil {
		return nil, err
	}

	task.Status = domain.Status(status)
	task.Priority = domain.Priority(priority)
	if parentID.Valid {
		task.ParentID = domain.ParentRef(parentID.String)
	}
	if err := json.Unmarshal([]byte(childJSON), &task.ChildIDs); err != nil {
		return nil, fmt.Errorf("parse child ids: %w", err)
	}
	if len(task.ChildIDs) == 0 {
		task.ChildIDs = nil
	}
	if task.Deadline, err = parseTime(deadline); err != nil {
		return nil, err
	}
	if task.Created, err = parseTime(created); err != nil {
		return nil, err
	}
	if task.Updated, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &task, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

var (
	_ domain.TaskStore        = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)
