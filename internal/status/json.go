package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Outputs       []OutputJSON `json:"outputs"`
	Pending       int          `json:"pending"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Config        ConfigJSON   `json:"config"`
}

// OutputJSON is the JSON representation of one output.
type OutputJSON struct {
	Name      string `json:"name"`
	Wallpaper string `json:"wallpaper"`
	AppliedAt string `json:"applied_at"`
	Error     string `json:"error,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of loop counters.
type CountsJSON struct {
	Observations int `json:"observations"`
	Coalesced    int `json:"coalesced"`
	Restarted    int `json:"restarted"`
	Applied      int `json:"applied"`
	ApplyFailed  int `json:"apply_failed"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	ConfigPath  string `json:"config_path"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker,omitempty"`
	HTTPAddr    string `json:"http_addr,omitempty"`
	Default     string `json:"default"`
	Tags        int    `json:"tags"`
}

func buildInner(snap Snapshot) StatusInner {
	outputs := make([]OutputJSON, 0, len(snap.Outputs))
	for _, o := range snap.Outputs {
		outputs = append(outputs, OutputJSON{
			Name:      o.Name,
			Wallpaper: o.Path,
			AppliedAt: o.AppliedAt.UTC().Format(time.RFC3339),
			Error:     o.Error,
		})
	}

	return StatusInner{
		Outputs:       outputs,
		Pending:       snap.Pending,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Observations: snap.Counts.Observations,
			Coalesced:    snap.Counts.Coalesced,
			Restarted:    snap.Counts.Restarted,
			Applied:      snap.Counts.Applied,
			ApplyFailed:  snap.Counts.ApplyFailed,
		},
		Config: ConfigJSON{
			ConfigPath:  snap.Config.ConfigPath,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			Default:     snap.Config.Default,
			Tags:        snap.Config.Tags,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
