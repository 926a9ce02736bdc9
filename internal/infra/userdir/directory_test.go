package userdir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/tasktree/internal/domain"
)

func TestDirectory_Known(t *testing.T) {
	d := FromConfig(domain.UsersConfig{Known: []string{"alice", " bob ", ""}})

	ok, err := d.Exists("alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = d.Exists("bob")
	assert.True(t, ok)

	ok, _ = d.Exists("carol")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"alice", "bob"}, d.Users())
}

func TestDirectory_Open(t *testing.T) {
	d := New()

	ok, err := d.Exists("anyone")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = d.Exists("   ")
	assert.False(t, ok, "blank IDs never exist")
	assert.Empty(t, d.Users())
}

func TestDirectory_AddClosesOpenDirectory(t *testing.T) {
	d := New()
	d.Add("alice")

	ok, _ := d.Exists("alice")
	assert.True(t, ok)

	ok, _ = d.Exists("bob")
	assert.False(t, ok)
}
