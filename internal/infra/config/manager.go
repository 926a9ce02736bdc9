package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/runoshun/tasktree/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager manages configuration files.
type Manager struct {
	dataDir       string // Path to the .tasktree data directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/tasktree)
}

// NewManager creates a new Manager.
func NewManager(dataDir string) *Manager {
	return &Manager{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(dataDir, globalConfDir string) *Manager {
	return &Manager{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// GetRepoConfigInfo returns information about the data directory config file.
func (m *Manager) GetRepoConfigInfo() domain.ConfigInfo {
	return getConfigInfo(domain.RepoConfigPath(m.dataDir))
}

// GetGlobalConfigInfo returns information about the global config file.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigInfo {
	if m.globalConfDir == "" {
		return domain.ConfigInfo{}
	}
	return getConfigInfo(filepath.Join(m.globalConfDir, domain.ConfigFileName))
}

// getConfigInfo reads a config file and returns its info.
func getConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ConfigInfo{Path: path}
	}
	return domain.ConfigInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitRepoConfig creates the data directory config file with the default template.
func (m *Manager) InitRepoConfig() error {
	if err := os.MkdirAll(m.dataDir, 0o750); err != nil {
		return err
	}
	return initConfig(domain.RepoConfigPath(m.dataDir))
}

// InitGlobalConfig creates the global config file with the default template.
func (m *Manager) InitGlobalConfig() error {
	if m.globalConfDir == "" {
		return errors.New("global config directory not available")
	}
	if err := os.MkdirAll(m.globalConfDir, 0o700); err != nil {
		return err
	}
	return initConfig(filepath.Join(m.globalConfDir, domain.ConfigFileName))
}

// initConfig writes the rendered template unless path already exists.
func initConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return domain.ErrConfigExists
	}
	content := domain.RenderConfigTemplate(domain.NewDefaultConfig())
	return os.WriteFile(path, []byte(content), 0o600)
}
