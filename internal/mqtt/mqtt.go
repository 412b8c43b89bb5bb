// Package mqtt publishes signal-health transitions and lifecycle events,
// with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/rc-lights/internal/channel"
	"github.com/sweeney/rc-lights/internal/logic"
)

// TopicSignal is the MQTT topic for signal-health transitions.
const TopicSignal = "rc/lights/signal"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "rc/lights/system"

// Signal event names.
const (
	EventSignalLost     = "SIGNAL_LOST"
	EventSignalRestored = "SIGNAL_RESTORED"
)

// Publisher publishes diagnostics to MQTT.
// Publishing never blocks the caller on the network and a failure must not
// crash the process.
type Publisher interface {
	// PublishSignal sends a signal-health transition.
	PublishSignal(event SignalEvent) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SignalEvent reports the receiver signal being lost or restored.
type SignalEvent struct {
	Timestamp time.Time
	Event     string // EventSignalLost or EventSignalRestored
	Mode      logic.Mode
	Widths    []uint32 // last published width per channel
}

// NewSignalEvent builds the event for a health transition. It returns false
// if tr does not change the health level.
func NewSignalEvent(ts time.Time, tr logic.HealthTransition, mode logic.Mode, samples []channel.Sample) (SignalEvent, bool) {
	if tr.From == tr.To {
		return SignalEvent{}, false
	}
	name := EventSignalRestored
	if tr.To == logic.HealthLost {
		name = EventSignalLost
	}
	widths := make([]uint32, len(samples))
	for i, s := range samples {
		widths[i] = s.Width
	}
	return SignalEvent{Timestamp: ts, Event: name, Mode: mode, Widths: widths}, true
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SignalPayload is the JSON body published on TopicSignal.
type SignalPayload struct {
	Signal SignalPayloadInner `json:"signal"`
}

// SignalPayloadInner contains the transition details.
type SignalPayloadInner struct {
	Timestamp string   `json:"timestamp"`
	Event     string   `json:"event"`
	Mode      string   `json:"mode"`
	Widths    []uint32 `json:"widths"`
}

// FormatSignalPayload creates the JSON payload for a signal event.
func FormatSignalPayload(event SignalEvent) ([]byte, error) {
	widths := event.Widths
	if widths == nil {
		widths = []uint32{}
	}
	return json.Marshal(SignalPayload{
		Signal: SignalPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Mode:      string(event.Mode),
			Widths:    widths,
		},
	})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
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

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
