package sqlitestore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/infra/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.TaskStore {
		return newTestStore(t)
	})
}

func TestStore_InMemory(t *testing.T) {
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.True(t, s.IsInitialized())
	require.NoError(t, s.Save(storetest.NewTask("t", "alice")))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "tasks.db")

	first, err := Open(path)
	require.NoError(t, err)
	task := storetest.NewTask("t", "alice")
	task.ParentID = domain.ParentRef("p")
	require.NoError(t, first.Save(task))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	assert.True(t, second.IsInitialized())
	got, err := second.Find("t")
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, "p", *got.ParentID)
}

func TestStore_NormalisesTimesToUTC(t *testing.T) {
	s := newTestStore(t)

	zone := time.FixedZone("UTC+9", 9*60*60)
	task := storetest.NewTask("t", "alice")
	task.Deadline = time.Date(2026, time.June, 1, 9, 0, 0, 123, zone)
	require.NoError(t, s.Save(task))

	got, err := s.Find("t")
	require.NoError(t, err)
	assert.True(t, task.Deadline.Equal(got.Deadline))
	assert.Equal(t, time.UTC, got.Deadline.Location())
}
