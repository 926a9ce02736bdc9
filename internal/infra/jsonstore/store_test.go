package jsonstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/infra/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := New(filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, store.Initialize())
	return store
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.TaskStore {
		return newTestStore(t)
	})
}

func TestStore_Initialize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "tasks.json")

	store := New(path)
	assert.False(t, store.IsInitialized())

	require.NoError(t, store.Initialize())
	assert.True(t, store.IsInitialized())

	_, err := os.Stat(path)
	require.NoError(t, err)

	// Initialize again should be idempotent and keep existing data
	require.NoError(t, store.Save(storetest.NewTask("t", "alice")))
	require.NoError(t, store.Initialize())

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_NotInitialized(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "tasks.json"))

	_, err := store.Find("x")
	require.ErrorIs(t, err, domain.ErrNotInitialized)

	err = store.Save(storetest.NewTask("t", "alice"))
	require.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	first := New(path)
	require.NoError(t, first.Initialize())
	task := storetest.NewTask("t", "alice")
	task.ChildIDs = []string{"c1"}
	require.NoError(t, first.Save(task))

	second := New(path)
	got, err := second.Find("t")
	require.NoError(t, err)
	assert.Equal(t, "Task t", got.Title)
	assert.Equal(t, []string{"c1"}, got.ChildIDs)
}

func TestStore_FileFormat(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(storetest.NewTask("t", "alice")))

	content, err := os.ReadFile(store.path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(content, &raw))
	assert.Contains(t, raw, "tasks")
	assert.Contains(t, raw, "meta")

	// No temp file left behind
	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(store.path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStore_CorruptFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte("{not json"), 0o600))

	_, err := store.List()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestStore_NewerFormatVersion(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte(`{"tasks":{},"meta":{"version":99}}`), 0o600))

	_, err := store.Count()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format version 99")
}
