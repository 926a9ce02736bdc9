// Package userdir provides the user existence check consumed by the engine
// and the workload aggregator.
package userdir

import (
	"strings"
	"sync"

	"github.com/runoshun/tasktree/internal/domain"
)

// Directory is a set of known user IDs.
// An open directory (no users configured) accepts every non-blank ID.
type Directory struct {
	users map[string]struct{}
	mu    sync.RWMutex
	open  bool
}

// New creates a directory holding the given users.
// With no users it is open.
func New(users ...string) *Directory {
	d := &Directory{users: make(map[string]struct{}, len(users))}
	for _, u := range users {
		if u = strings.TrimSpace(u); u != "" {
			d.users[u] = struct{}{}
		}
	}
	d.open = len(d.users) == 0
	return d
}

// FromConfig builds a directory from the [users] section.
func FromConfig(cfg domain.UsersConfig) *Directory {
	return New(cfg.Known...)
}

// Add registers a user. The directory stops being open once a user is added.
func (d *Directory) Add(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[userID] = struct{}{}
	d.open = false
}

// Exists reports whether userID is known.
func (d *Directory) Exists(userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.open {
		return true, nil
	}
	_, ok := d.users[userID]
	return ok, nil
}

// Users returns the known user IDs. Empty for an open directory.
func (d *Directory) Users() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.users))
	for u := range d.users {
		out = append(out, u)
	}
	return out
}

var _ domain.UserDirectory = (*Directory)(nil)
