// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/tasktree/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	dataDir       string // Path to the .tasktree data directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/tasktree)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalAppDir(configHome)
}

// Load returns the merged configuration (default <- global <- repo).
func (l *Loader) Load() (*domain.Config, error) {
	return l.LoadWithOptions(domain.LoadConfigOptions{})
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// LoadRepo returns only the data directory configuration.
func (l *Loader) LoadRepo() (*domain.Config, error) {
	return l.loadFile(domain.RepoConfigPath(l.dataDir))
}

// LoadWithOptions returns the merged configuration with options to ignore sources.
// The result is validated: an unknown store or delete policy is an error.
func (l *Loader) LoadWithOptions(opts domain.LoadConfigOptions) (*domain.Config, error) {
	var global, repo *domain.Config
	var err error

	if !opts.IgnoreGlobal {
		global, err = l.LoadGlobal()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if !opts.IgnoreRepo {
		repo, err = l.LoadRepo()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	base := domain.NewDefaultConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if repo != nil {
		base = mergeConfigs(base, repo)
	}

	if err := validate(base); err != nil {
		return nil, err
	}
	return base, nil
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown key: %s", section))
			continue
		}
		switch section {
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					if s, ok := v.(string); ok {
						res.Log.Level = s
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [log]: %s", k))
				}
			}
		case "tasks":
			for k, v := range m {
				switch k {
				case "store":
					if s, ok := v.(string); ok {
						res.Tasks.Store = s
					}
				case "delete_policy":
					if s, ok := v.(string); ok {
						res.Tasks.DeletePolicy = domain.DeletePolicy(s)
					}
				case "validate_owner":
					if b, ok := v.(bool); ok {
						res.Tasks.ValidateOwner = b
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [tasks]: %s", k))
				}
			}
		case "users":
			for k, v := range m {
				switch k {
				case "known":
					res.Users.Known = stringList(v)
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [users]: %s", k))
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// stringList keeps the string elements of a TOML array.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := &domain.Config{
		Log:      base.Log,
		Tasks:    base.Tasks,
		Users:    domain.UsersConfig{Known: slices.Clone(base.Users.Known)},
		Warnings: slices.Clone(base.Warnings),
	}
	result.Warnings = append(result.Warnings, override.Warnings...)

	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}
	if override.Tasks.Store != "" {
		result.Tasks.Store = override.Tasks.Store
	}
	if override.Tasks.DeletePolicy != "" {
		result.Tasks.DeletePolicy = override.Tasks.DeletePolicy
	}
	if override.Tasks.ValidateOwner {
		result.Tasks.ValidateOwner = true
	}
	if len(override.Users.Known) > 0 {
		result.Users.Known = slices.Clone(override.Users.Known)
	}

	return result
}

// validate rejects values the rest of the program cannot act on.
func validate(cfg *domain.Config) error {
	switch cfg.Tasks.Store {
	case domain.StoreJSON, domain.StoreSQLite, domain.StoreMemory:
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownStore, cfg.Tasks.Store)
	}
	if !cfg.Tasks.DeletePolicy.IsValid() {
		return fmt.Errorf("%w: unknown delete policy %q", domain.ErrValidation, cfg.Tasks.DeletePolicy)
	}
	return nil
}
