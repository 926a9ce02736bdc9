package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/infra/storetest"
)

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.TaskStore {
		return New()
	})
}

func TestStore_AlwaysInitialized(t *testing.T) {
	s := New()
	assert.True(t, s.IsInitialized())
	assert.NoError(t, s.Initialize())
}
