package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweeney/river-swww/internal/logic"
)

func TestTopics(t *testing.T) {
	assert.Equal(t, "desktop/river-swww/wallpaper", Topic)
	assert.Equal(t, "desktop/river-swww/system", TopicSystem)
}

func TestFormatPayload(t *testing.T) {
	event := logic.Applied{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Output:    "DP-1",
		Path:      "/walls/one.png",
	}

	payload, err := FormatPayload(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{"wallpaper":{"timestamp":"2026-02-02T22:18:12Z","output":"DP-1","path":"/walls/one.png"}}`, string(payload))
}

func TestFormatPayloadWithError(t *testing.T) {
	event := logic.Applied{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Output:    "DP-1",
		Path:      "/walls/one.png",
		Err:       errors.New("start swww: executable file not found in $PATH"),
	}

	payload, err := FormatPayload(event)
	require.NoError(t, err)

	var parsed Payload
	require.NoError(t, json.Unmarshal(payload, &parsed))
	assert.Equal(t, "start swww: executable file not found in $PATH", parsed.Wallpaper.Error)
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	event := logic.Applied{Timestamp: time.Date(2026, 2, 2, 23, 0, 0, 0, loc), Output: "DP-1", Path: "/a.png"}

	payload, err := FormatPayload(event)
	require.NoError(t, err)

	var parsed Payload
	require.NoError(t, json.Unmarshal(payload, &parsed))
	assert.Equal(t, "2026-02-02T22:00:00Z", parsed.Wallpaper.Timestamp)
}

func TestFormatSystemPayload(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Event:     EventShutdown,
		Reason:    "SIGTERM",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"SHUTDOWN","reason":"SIGTERM"}}`, string(payload))
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Event:     EventReconnected,
	})
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "reason")
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"HEARTBEAT"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: EventHeartbeat, RawPayload: raw})
	require.NoError(t, err)
	assert.Equal(t, raw, payload)
}

func TestWillPayload(t *testing.T) {
	var parsed SystemPayload
	require.NoError(t, json.Unmarshal(WillPayload(), &parsed))
	assert.Equal(t, EventOffline, parsed.System.Event)
	assert.Equal(t, "connection lost", parsed.System.Reason)
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	ev := logic.Applied{Timestamp: time.Unix(0, 0), Output: "DP-1", Path: "/a.png"}

	require.NoError(t, f.Publish(ev))
	require.NoError(t, f.PublishSystem(SystemEvent{Event: EventStartup, Retained: true}))

	assert.Equal(t, []logic.Applied{ev}, f.Events())
	require.Len(t, f.Payloads(), 1)
	assert.Contains(t, string(f.Payloads()[0]), `"output":"DP-1"`)

	require.Len(t, f.SystemEvents(), 1)
	assert.True(t, f.SystemEvents()[0].Retained)
	assert.Len(t, f.SystemPayloads(), 1)
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("publish down")
	f.PublishSystemError = errors.New("system down")

	assert.EqualError(t, f.Publish(logic.Applied{}), "publish down")
	assert.EqualError(t, f.PublishSystem(SystemEvent{}), "system down")
	assert.Empty(t, f.Events())
	assert.Empty(t, f.SystemEvents())
}

func TestFakePublisherCloseAndReset(t *testing.T) {
	f := NewFakePublisher()
	f.Connected = true
	require.NoError(t, f.Publish(logic.Applied{Output: "DP-1"}))
	require.NoError(t, f.Close())
	assert.True(t, f.Closed())
	assert.True(t, f.IsConnected())

	f.Reset()
	assert.False(t, f.Closed())
	assert.False(t, f.IsConnected())
	assert.Empty(t, f.Events())

	require.NoError(t, f.Publish(logic.Applied{Output: "DP-2"}))
	assert.Len(t, f.Events(), 1, "reusable after reset")
}

func TestNewRealPublisherRejectsBadBroker(t *testing.T) {
	log, _ := test.NewNullLogger()
	for _, broker := range []string{"", "localhost", "://nope"} {
		_, err := NewRealPublisher(broker, log.WithField("component", "mqtt"))
		assert.Error(t, err, "broker %q", broker)
	}
}
