package logic

import (
	"sort"
	"time"
)

// Table tracks at most one pending update per output.
// Not safe for concurrent use; the coalescing loop is its only owner.
type Table struct {
	window  time.Duration
	pending map[string]PendingUpdate
}

// NewTable creates an empty table with the given debounce window.
func NewTable(window time.Duration) *Table {
	return &Table{
		window:  window,
		pending: make(map[string]PendingUpdate),
	}
}

// Window returns the debounce window.
func (t *Table) Window() time.Duration {
	return t.window
}

// Upsert records path as the desired wallpaper for output.
// The window restarts only when path differs from what is already pending,
// so a steady stream of identical observations cannot postpone the update.
func (t *Table) Upsert(output, path string, now time.Time) UpsertResult {
	cur, ok := t.pending[output]
	switch {
	case !ok:
		t.pending[output] = PendingUpdate{Output: output, Path: path, QueuedAt: now}
		return Inserted
	case cur.Path != path:
		t.pending[output] = PendingUpdate{Output: output, Path: path, QueuedAt: now}
		return Replaced
	default:
		return Unchanged
	}
}

// Due returns every update whose window has elapsed at now, oldest first.
func (t *Table) Due(now time.Time) []PendingUpdate {
	var due []PendingUpdate
	for _, p := range t.pending {
		if p.Remaining(t.window, now) <= 0 {
			due = append(due, p)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].QueuedAt.Equal(due[j].QueuedAt) {
			return due[i].Output < due[j].Output
		}
		return due[i].QueuedAt.Before(due[j].QueuedAt)
	})
	return due
}

// Remove drops the pending update for output, if any.
func (t *Table) Remove(output string) {
	delete(t.pending, output)
}

// EarliestWait returns the smallest remaining wait across all pending
// updates. ok is false when the table is empty.
func (t *Table) EarliestWait(now time.Time) (wait time.Duration, ok bool) {
	for _, p := range t.pending {
		r := p.Remaining(t.window, now)
		if !ok || r < wait {
			wait = r
			ok = true
		}
	}
	return wait, ok
}

// Get returns the pending update for output.
func (t *Table) Get(output string) (PendingUpdate, bool) {
	p, ok := t.pending[output]
	return p, ok
}

// Len returns the number of pending updates.
func (t *Table) Len() int {
	return len(t.pending)
}
