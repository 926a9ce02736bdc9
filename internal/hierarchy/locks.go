package hierarchy

import (
	"slices"
	"sync"
)

// lockTable hands out one mutex per task ID.
// Entries are reference counted: an entry exists only while some caller
// holds or waits for it, so lookups of unknown IDs leave nothing behind.
type lockTable struct {
	entries map[string]*lockEntry
	mu      sync.Mutex
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (lt *lockTable) acquire(id string) *lockEntry {
	lt.mu.Lock()
	if lt.entries == nil {
		lt.entries = make(map[string]*lockEntry)
	}
	ent, ok := lt.entries[id]
	if !ok {
		ent = &lockEntry{}
		lt.entries[id] = ent
	}
	ent.refs++
	lt.mu.Unlock()

	ent.mu.Lock()
	return ent
}

func (lt *lockTable) release(id string, ent *lockEntry) {
	ent.mu.Unlock()

	lt.mu.Lock()
	ent.refs--
	if ent.refs == 0 {
		delete(lt.entries, id)
	}
	lt.mu.Unlock()
}

// lock acquires the mutexes for ids in ascending order and returns a
// function that releases them. Empty and duplicate IDs are ignored.
// The fixed order keeps two callers with overlapping sets from deadlocking.
func (lt *lockTable) lock(ids ...string) (unlock func()) {
	sorted := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			sorted = append(sorted, id)
		}
	}
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]*lockEntry, 0, len(sorted))
	for _, id := range sorted {
		held = append(held, lt.acquire(id))
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			lt.release(sorted[i], held[i])
		}
	}
}

// size reports how many IDs currently have an entry.
func (lt *lockTable) size() int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return len(lt.entries)
}
