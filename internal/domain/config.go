package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"text/template"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string    `toml:"-"`
	Users    UsersConfig `toml:"users"`
	Tasks    TasksConfig `toml:"tasks"`
	Log      LogConfig   `toml:"log"`
}

// TasksConfig holds settings for task storage and hierarchy policy from [tasks] section.
type TasksConfig struct {
	Store         string       `toml:"store,omitempty"`          // Storage backend: "json" (default), "sqlite" or "memory"
	DeletePolicy  DeletePolicy `toml:"delete_policy,omitempty"`  // What happens to children on delete
	ValidateOwner bool         `toml:"validate_owner,omitempty"` // Check the owner exists when creating tasks
}

// UsersConfig holds the known users from [users] section.
type UsersConfig struct {
	Known []string `toml:"known,omitempty"` // User IDs accepted by the directory
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// DeletePolicy decides what happens to the children of a deleted task.
type DeletePolicy string

const (
	DeletePolicyOrphan  DeletePolicy = "orphan"  // Children become root tasks
	DeletePolicyCascade DeletePolicy = "cascade" // Children are deleted recursively
)

// IsValid returns true if the policy is a known value.
func (p DeletePolicy) IsValid() bool {
	return p == DeletePolicyOrphan || p == DeletePolicyCascade
}

// Store backend names for [tasks] store.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Default configuration values.
const (
	DefaultLogLevel     = "info"
	DefaultStore        = StoreJSON
	DefaultDeletePolicy = DeletePolicyOrphan
)

// Directory and file names for tasktree.
const (
	DataDirName    = ".tasktree"   // Data directory created by 'tasktree init'
	AppDirName     = "tasktree"    // Directory name under the user config home
	ConfigFileName = "config.toml" // Config file name
	JSONStoreName  = "tasks.json"  // JSON store file name
	SQLiteDBName   = "tasks.db"    // SQLite store file name
)

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Tasks: TasksConfig{
			Store:        DefaultStore,
			DeletePolicy: DefaultDeletePolicy,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// RepoConfigPath returns the config path inside a data directory.
func RepoConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFileName)
}

// GlobalAppDir returns the global tasktree directory path.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalAppDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalAppDir(configHome), ConfigFileName)
}

// TaskLogPath returns the path to the task log file.
func TaskLogPath(dataDir, taskID string) string {
	return filepath.Join(dataDir, "logs", fmt.Sprintf("task-%s.log", taskID))
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "tasktree.log")
}

// templateData holds all data for rendering the config template.
type templateData struct {
	LogLevel     string
	Store        string
	DeletePolicy DeletePolicy
}

// RenderConfigTemplate renders the commented config file written by 'config init'.
func RenderConfigTemplate(cfg *Config) string {
	data := templateData{
		LogLevel:     cfg.Log.Level,
		Store:        cfg.Tasks.Store,
		DeletePolicy: cfg.Tasks.DeletePolicy,
	}

	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		// Should never happen with valid data
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}

	return buf.String()
}
