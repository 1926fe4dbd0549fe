// Package logic contains the pure coalescing logic for wallpaper updates.
// This package has NO external dependencies (no processes, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// DefaultDebounce is how long an output's desired wallpaper must stay
// unchanged before it is applied.
const DefaultDebounce = 30 * time.Millisecond

// Observation is one report from the status source: output Output is
// currently showing the tags in FocusedTags.
type Observation struct {
	Output      string
	FocusedTags uint64
}

// PendingUpdate is a wallpaper change waiting out its debounce window.
type PendingUpdate struct {
	Output string
	// Path is the wallpaper to apply once the window elapses.
	Path string
	// QueuedAt is when Path became the pending value for Output.
	QueuedAt time.Time
}

// Remaining returns how much of the window is left at now.
// Zero or negative means the update is due.
func (p PendingUpdate) Remaining(window time.Duration, now time.Time) time.Duration {
	return window - now.Sub(p.QueuedAt)
}

// UpsertResult describes what Table.Upsert did with an observation.
type UpsertResult int

const (
	// Inserted means the output had no pending update.
	Inserted UpsertResult = iota
	// Replaced means the pending path changed and the window restarted.
	Replaced
	// Unchanged means the same path was already pending; the window kept running.
	Unchanged
)

func (r UpsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	case Unchanged:
		return "unchanged"
	}
	return "unknown"
}

// Applied records a wallpaper that was handed to the applier.
type Applied struct {
	Timestamp time.Time
	Output    string
	Path      string
	Err       error
}
