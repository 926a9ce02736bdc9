package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/tasktree/internal/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o644))
}

func TestLoader_Load_RepoConfigOnly(t *testing.T) {
	dataDir := t.TempDir()
	globalDir := t.TempDir()

	writeConfig(t, dataDir, `
[tasks]
store = "sqlite"
delete_policy = "cascade"
validate_owner = true

[users]
known = ["alice", "bob"]

[log]
level = "debug"
`)

	cfg, err := NewLoaderWithGlobalDir(dataDir, globalDir).Load()
	require.NoError(t, err)

	assert.Equal(t, domain.StoreSQLite, cfg.Tasks.Store)
	assert.Equal(t, domain.DeletePolicyCascade, cfg.Tasks.DeletePolicy)
	assert.True(t, cfg.Tasks.ValidateOwner)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Users.Known)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Empty(t, cfg.Warnings)
}

func TestLoader_Load_GlobalConfigOnly(t *testing.T) {
	dataDir := t.TempDir()
	globalDir := t.TempDir()

	writeConfig(t, globalDir, `
[users]
known = ["carol"]
`)

	cfg, err := NewLoaderWithGlobalDir(dataDir, globalDir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"carol"}, cfg.Users.Known)
	assert.Equal(t, domain.DefaultStore, cfg.Tasks.Store)
}

func TestLoader_Load_MergeRepoOverridesGlobal(t *testing.T) {
	dataDir := t.TempDir()
	globalDir := t.TempDir()

	writeConfig(t, globalDir, `
[tasks]
store = "sqlite"
delete_policy = "cascade"

[users]
known = ["alice"]

[log]
level = "warn"
`)
	writeConfig(t, dataDir, `
[tasks]
delete_policy = "orphan"

[log]
level = "debug"
`)

	cfg, err := NewLoaderWithGlobalDir(dataDir, globalDir).Load()
	require.NoError(t, err)

	assert.Equal(t, domain.StoreSQLite, cfg.Tasks.Store, "global value kept when repo is silent")
	assert.Equal(t, domain.DeletePolicyOrphan, cfg.Tasks.DeletePolicy)
	assert.Equal(t, []string{"alice"}, cfg.Users.Known)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoader_Load_NoConfigFiles(t *testing.T) {
	cfg, err := NewLoaderWithGlobalDir(t.TempDir(), t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, domain.NewDefaultConfig(), cfg)
}

func TestLoader_LoadGlobal(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, "[log]\nlevel = \"error\"\n")

	cfg, err := NewLoaderWithGlobalDir(t.TempDir(), globalDir).LoadGlobal()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoader_LoadGlobal_NotFound(t *testing.T) {
	_, err := NewLoaderWithGlobalDir(t.TempDir(), t.TempDir()).LoadGlobal()
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewLoaderWithGlobalDir(t.TempDir(), "").LoadGlobal()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_LoadRepo(t *testing.T) {
	dataDir := t.TempDir()
	writeConfig(t, dataDir, "[tasks]\nstore = \"memory\"\n")

	cfg, err := NewLoaderWithGlobalDir(dataDir, t.TempDir()).LoadRepo()
	require.NoError(t, err)
	assert.Equal(t, domain.StoreMemory, cfg.Tasks.Store)

	_, err = NewLoaderWithGlobalDir(t.TempDir(), t.TempDir()).LoadRepo()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_Load_InvalidTOML(t *testing.T) {
	dataDir := t.TempDir()
	writeConfig(t, dataDir, "[tasks\nstore = ")

	_, err := NewLoaderWithGlobalDir(dataDir, t.TempDir()).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ConfigFileName)
}

func TestLoader_Load_InvalidValues(t *testing.T) {
	t.Run("unknown store", func(t *testing.T) {
		dataDir := t.TempDir()
		writeConfig(t, dataDir, "[tasks]\nstore = \"postgres\"\n")

		_, err := NewLoaderWithGlobalDir(dataDir, t.TempDir()).Load()
		require.ErrorIs(t, err, domain.ErrUnknownStore)
		assert.Contains(t, err.Error(), "postgres")
	})

	t.Run("unknown delete policy", func(t *testing.T) {
		dataDir := t.TempDir()
		writeConfig(t, dataDir, "[tasks]\ndelete_policy = \"shred\"\n")

		_, err := NewLoaderWithGlobalDir(dataDir, t.TempDir()).Load()
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "shred")
	})
}

func TestLoader_LoadWithOptions(t *testing.T) {
	dataDir := t.TempDir()
	globalDir := t.TempDir()
	writeConfig(t, globalDir, "[log]\nlevel = \"warn\"\n")
	writeConfig(t, dataDir, "[log]\nlevel = \"debug\"\n")
	loader := NewLoaderWithGlobalDir(dataDir, globalDir)

	tests := []struct {
		name string
		opts domain.LoadConfigOptions
		want string
	}{
		{"both", domain.LoadConfigOptions{}, "debug"},
		{"ignore global", domain.LoadConfigOptions{IgnoreGlobal: true}, "debug"},
		{"ignore repo", domain.LoadConfigOptions{IgnoreRepo: true}, "warn"},
		{"ignore both", domain.LoadConfigOptions{IgnoreGlobal: true, IgnoreRepo: true}, domain.DefaultLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loader.LoadWithOptions(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Log.Level)
		})
	}
}

func TestLoader_Load_UnknownKeys(t *testing.T) {
	dataDir := t.TempDir()
	globalDir := t.TempDir()

	writeConfig(t, globalDir, `
[workers]
default = "build"
`)
	writeConfig(t, dataDir, `
stray = 1

[tasks]
store = "json"
namespace = "x"

[users]
admins = ["root"]

[log]
format = "json"
`)

	cfg, err := NewLoaderWithGlobalDir(dataDir, globalDir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"unknown section: workers",
		"unknown key in [log]: format",
		"unknown key in [tasks]: namespace",
		"unknown key in [users]: admins",
		"unknown key: stray",
	}, cfg.Warnings)
}

func TestLoader_Load_RenderedTemplate(t *testing.T) {
	dataDir := t.TempDir()
	writeConfig(t, dataDir, domain.RenderConfigTemplate(domain.NewDefaultConfig()))

	cfg, err := NewLoaderWithGlobalDir(dataDir, t.TempDir()).Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Warnings)
	assert.Equal(t, domain.NewDefaultConfig(), cfg)
}
