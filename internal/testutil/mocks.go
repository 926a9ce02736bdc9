// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/infra/memstore"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockTaskStore is an in-memory domain.TaskStore with injectable errors.
// Fields are ordered to minimize memory padding.
type MockTaskStore struct {
	*memstore.Store
	SaveErr       error
	FindErr       error
	DeleteErr     error
	ListErr       error
	CountErr      error
	SaveFailAfter   int // Saves that succeed before SaveErr applies (0 = none)
	SaveFailCount   int // Saves that fail once SaveErr applies (0 = all)
	DeleteFailAfter int // Deletes that succeed before DeleteErr applies (0 = none)
	saves           int
	deletes         int
	mu              sync.Mutex
}

// NewMockTaskStore creates an empty MockTaskStore.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{Store: memstore.New()}
}

// Ensure MockTaskStore implements domain.TaskStore interface.
var _ domain.TaskStore = (*MockTaskStore)(nil)

// Save stores the task unless SaveErr applies.
func (m *MockTaskStore) Save(task *domain.Task) error {
	m.mu.Lock()
	m.saves++
	fail := m.SaveErr != nil && m.saves > m.SaveFailAfter &&
		(m.SaveFailCount == 0 || m.saves <= m.SaveFailAfter+m.SaveFailCount)
	m.mu.Unlock()
	if fail {
		return m.SaveErr
	}
	return m.Store.Save(task)
}

// Find returns FindErr if set.
func (m *MockTaskStore) Find(id string) (*domain.Task, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	return m.Store.Find(id)
}

// Delete removes the task unless DeleteErr applies.
func (m *MockTaskStore) Delete(id string) error {
	m.mu.Lock()
	m.deletes++
	fail := m.DeleteErr != nil && m.deletes > m.DeleteFailAfter
	m.mu.Unlock()
	if fail {
		return m.DeleteErr
	}
	return m.Store.Delete(id)
}

// ListByOwner returns ListErr if set.
func (m *MockTaskStore) ListByOwner(ownerID string) ([]*domain.Task, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Store.ListByOwner(ownerID)
}

// List returns ListErr if set.
func (m *MockTaskStore) List() ([]*domain.Task, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Store.List()
}

// Count returns CountErr if set.
func (m *MockTaskStore) Count() (int, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return m.Store.Count()
}

// Put writes a task directly, bypassing error injection.
// Used to build trees the engine would never produce.
func (m *MockTaskStore) Put(tasks ...*domain.Task) {
	for _, t := range tasks {
		_ = m.Store.Save(t)
	}
}

// MockUserDirectory is a test double for domain.UserDirectory.
type MockUserDirectory struct {
	Users     map[string]bool
	ExistsErr error
}

// NewMockUserDirectory creates a directory knowing the given users.
func NewMockUserDirectory(users ...string) *MockUserDirectory {
	m := &MockUserDirectory{Users: make(map[string]bool, len(users))}
	for _, u := range users {
		m.Users[u] = true
	}
	return m
}

// Ensure MockUserDirectory implements domain.UserDirectory interface.
var _ domain.UserDirectory = (*MockUserDirectory)(nil)

// Exists reports whether the user was registered.
func (m *MockUserDirectory) Exists(userID string) (bool, error) {
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	return m.Users[userID], nil
}

// LogEntry is a single entry recorded by MockLogger.
type LogEntry struct {
	Level    string
	TaskID   string
	Category string
	Msg      string
}

// String formats the entry like the file logger does.
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] [%s] [%s] %s", e.Level, e.TaskID, e.Category, e.Msg)
}

// MockLogger is a test double for domain.Logger that records entries.
type MockLogger struct {
	entries []LogEntry
	mu      sync.Mutex
}

// Ensure MockLogger implements domain.Logger interface.
var _ domain.Logger = (*MockLogger)(nil)

func (m *MockLogger) add(level, taskID, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Info records an info entry.
func (m *MockLogger) Info(taskID, category, msg string) { m.add("INFO", taskID, category, msg) }

// Debug records a debug entry.
func (m *MockLogger) Debug(taskID, category, msg string) { m.add("DEBUG", taskID, category, msg) }

// Warn records a warn entry.
func (m *MockLogger) Warn(taskID, category, msg string) { m.add("WARN", taskID, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(taskID, category, msg string) { m.add("ERROR", taskID, category, msg) }

// Entries returns a copy of the recorded entries.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// MockConfigLoader is a test double for domain.ConfigLoader.
// Fields are ordered to minimize memory padding.
type MockConfigLoader struct {
	Config       *domain.Config
	GlobalConfig *domain.Config
	LoadErr      error
	GlobalErr    error
}

// NewMockConfigLoader creates a new MockConfigLoader with default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{
		Config: domain.NewDefaultConfig(),
	}
}

// Ensure MockConfigLoader implements domain.ConfigLoader interface.
var _ domain.ConfigLoader = (*MockConfigLoader)(nil)

// Load returns the configured config or error.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

// LoadWithOptions returns the configured config or error, ignoring opts.
func (m *MockConfigLoader) LoadWithOptions(_ domain.LoadConfigOptions) (*domain.Config, error) {
	return m.Load()
}

// LoadGlobal returns the configured config or error.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	if m.GlobalErr != nil {
		return nil, m.GlobalErr
	}
	if m.GlobalConfig != nil {
		return m.GlobalConfig, nil
	}
	return m.Config, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitRepoErr      error
	InitGlobalErr    error
	RepoConfigInfo   domain.ConfigInfo
	GlobalConfigInfo domain.ConfigInfo
	InitRepoCalled   bool
	InitGlobalCalled bool
}

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		RepoConfigInfo: domain.ConfigInfo{
			Path: "/test/.tasktree/config.toml",
		},
		GlobalConfigInfo: domain.ConfigInfo{
			Path: "/home/test/.config/tasktree/config.toml",
		},
	}
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// GetRepoConfigInfo returns the configured repo config info.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo {
	return m.RepoConfigInfo
}

// GetGlobalConfigInfo returns the configured global config info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalConfigInfo
}

// InitRepoConfig records the call and returns InitRepoErr.
func (m *MockConfigManager) InitRepoConfig() error {
	m.InitRepoCalled = true
	return m.InitRepoErr
}

// InitGlobalConfig records the call and returns InitGlobalErr.
func (m *MockConfigManager) InitGlobalConfig() error {
	m.InitGlobalCalled = true
	return m.InitGlobalErr
}
