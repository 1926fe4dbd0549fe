// Package status provides a thread-safe status tracker for the river-swww daemon.
// It is written by the coalescing loop and read by the HTTP server and the
// MQTT heartbeat.
package status

import (
	"sort"
	"sync"
	"time"

	"github.com/sweeney/river-swww/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	ConfigPath  string
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	Default     string
	Tags        int // number of mapped tags
}

// Counts tracks loop activity since startup.
type Counts struct {
	Observations int // observations folded into the table
	Coalesced    int // observations that matched the pending wallpaper
	Restarted    int // observations that changed a pending wallpaper
	Applied      int // wallpapers handed to swww
	ApplyFailed  int // swww could not be started or exited non-zero
}

// Output is the last wallpaper applied to one output.
type Output struct {
	Name      string
	Path      string
	AppliedAt time.Time
	Error     string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Outputs       []Output // sorted by name
	Pending       int
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	outputs map[string]Output
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		outputs: make(map[string]Output),
	}
}

// Observed records one observation folded into the table and the table
// size afterwards.
func (t *Tracker) Observed(res logic.UpsertResult, pending int) {
	t.mu.Lock()
	t.snap.Counts.Observations++
	switch res {
	case logic.Unchanged:
		t.snap.Counts.Coalesced++
	case logic.Replaced:
		t.snap.Counts.Restarted++
	}
	t.snap.Pending = pending
	t.mu.Unlock()
}

// Applied records a flushed update and the table size afterwards.
// A non-nil a.Err marks the apply as failed.
func (t *Tracker) Applied(a logic.Applied, pending int) {
	t.mu.Lock()
	o := Output{Name: a.Output, Path: a.Path, AppliedAt: a.Timestamp}
	if a.Err != nil {
		o.Error = a.Err.Error()
		t.snap.Counts.ApplyFailed++
	} else {
		t.snap.Counts.Applied++
	}
	t.outputs[a.Output] = o
	t.snap.Pending = pending
	t.mu.Unlock()
}

// ExitFailed records an swww process that started but then failed.
func (t *Tracker) ExitFailed(output string, err error) {
	t.mu.Lock()
	t.snap.Counts.ApplyFailed++
	if o, ok := t.outputs[output]; ok {
		o.Error = err.Error()
		t.outputs[output] = o
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Outputs = make([]Output, 0, len(t.outputs))
	for _, o := range t.outputs {
		s.Outputs = append(s.Outputs, o)
	}
	t.mu.RUnlock()

	sort.Slice(s.Outputs, func(i, j int) bool { return s.Outputs[i].Name < s.Outputs[j].Name })
	s.Now = time.Now()
	return s
}
