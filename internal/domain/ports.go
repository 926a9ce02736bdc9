package domain

import "time"

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error

	// IsInitialized reports whether the store already exists.
	IsInitialized() bool
}

// TaskStore is the keyed table that owns task records.
// It performs no validation and no hierarchy bookkeeping.
// Implementations must be safe for concurrent use and must not let
// callers alias stored records.
type TaskStore interface {
	// Save creates or replaces the task with the same ID.
	Save(task *Task) error

	// Find retrieves a task by ID. Returns ErrTaskNotFound if absent.
	Find(id string) (*Task, error)

	// Delete removes a task by ID. Deleting a missing ID is not an error.
	Delete(id string) error

	// ListByOwner returns every task owned by ownerID, in no particular order.
	ListByOwner(ownerID string) ([]*Task, error)

	// List returns every task, in no particular order.
	List() ([]*Task, error)

	// Count returns the number of stored tasks.
	Count() (int, error)
}

// UserDirectory answers whether a user exists.
// Credentials and profiles live elsewhere.
type UserDirectory interface {
	Exists(userID string) (bool, error)
}

// Logger writes operational log entries.
// taskID may be empty for entries that are not tied to a task.
type Logger interface {
	Info(taskID, category, msg string)
	Debug(taskID, category, msg string)
	Warn(taskID, category, msg string)
	Error(taskID, category, msg string)
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (default + global + repo).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)

	// LoadWithOptions returns the merged configuration, skipping ignored sources.
	LoadWithOptions(opts LoadConfigOptions) (*Config, error)
}

// LoadConfigOptions selects which config sources are read.
type LoadConfigOptions struct {
	IgnoreGlobal bool // Skip the global config file
	IgnoreRepo   bool // Skip the data directory config file
}

// ConfigManager manages configuration files.
type ConfigManager interface {
	// GetRepoConfigInfo returns information about the data directory config file.
	GetRepoConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitRepoConfig creates the data directory config file from the template.
	InitRepoConfig() error

	// InitGlobalConfig creates the global config file from the template.
	InitGlobalConfig() error
}

// ConfigInfo describes a configuration file on disk.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
