// Package mqtt publishes wallpaper changes and daemon lifecycle events to an
// MQTT broker, with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/river-swww/internal/logic"
)

// Topic is the MQTT topic for applied wallpapers.
const Topic = "desktop/river-swww/wallpaper"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "desktop/river-swww/system"

// Lifecycle event names.
const (
	EventStartup     = "STARTUP"
	EventShutdown    = "SHUTDOWN"
	EventHeartbeat   = "HEARTBEAT"
	EventReconnected = "RECONNECTED"
	EventOffline     = "OFFLINE"
)

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish reports a wallpaper handed to swww.
	// It must not block the caller on the network.
	Publish(event logic.Applied) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // e.g. "SIGTERM" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// Payload is the message published for an applied wallpaper.
type Payload struct {
	Wallpaper WallpaperPayload `json:"wallpaper"`
}

// WallpaperPayload contains the wallpaper change details.
type WallpaperPayload struct {
	Timestamp string `json:"timestamp"`
	Output    string `json:"output"`
	Path      string `json:"path"`
	Error     string `json:"error,omitempty"`
}

// FormatPayload creates the JSON payload for an applied wallpaper.
func FormatPayload(event logic.Applied) ([]byte, error) {
	p := Payload{
		Wallpaper: WallpaperPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Output:    event.Output,
			Path:      event.Path,
		},
	}
	if event.Err != nil {
		p.Wallpaper.Error = event.Err.Error()
	}
	return json.Marshal(p)
}

// SystemPayload is the payload for events that don't carry a full status
// snapshot (LWT, RECONNECTED).
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// WillPayload is the last-will message the broker publishes if the daemon
// disappears without a SHUTDOWN.
func WillPayload() []byte {
	data, _ := json.Marshal(SystemPayload{
		System: SystemPayloadInner{Event: EventOffline, Reason: "connection lost"},
	})
	return data
}
