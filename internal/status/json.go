package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/rc-lights/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Mode          string        `json:"mode"`
	Health        string        `json:"health"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Channels      []ChannelJSON `json:"channels"`
	Commands      []CommandJSON `json:"commands"`
	Counts        CountsJSON    `json:"counts"`
	Failing       []string      `json:"failing,omitempty"`
	Config        ConfigJSON    `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ChannelJSON is the JSON representation of one receiver channel.
type ChannelJSON struct {
	Index    int    `json:"index"`
	Width    uint32 `json:"width_us"`
	Captured bool   `json:"captured"`
	Fresh    bool   `json:"fresh"`
	Accepted uint64 `json:"accepted"`
	Rejected uint64 `json:"rejected"`
}

// CommandJSON is the JSON representation of an actuator command. Only the
// field matching Kind is present.
type CommandJSON struct {
	Actuator string    `json:"actuator"`
	Kind     string    `json:"kind"`
	On       *bool     `json:"on,omitempty"`
	Level    *uint8    `json:"level,omitempty"`
	RGB      *[3]uint8 `json:"rgb,omitempty"`
}

// CountsJSON is the JSON representation of cycle counters.
type CountsJSON struct {
	Ticks           uint64 `json:"ticks"`
	FailsafeEntries uint64 `json:"failsafe_entries"`
	FailsafeTicks   uint64 `json:"failsafe_ticks"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs       int64  `json:"tick_ms"`
	TimeoutMs    int64  `json:"timeout_ms"`
	ReportMs     int64  `json:"report_ms"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
	GlitchFilter bool   `json:"glitch_filter"`
	ValidLow     uint32 `json:"valid_low_us"`
	ValidHigh    uint32 `json:"valid_high_us"`
}

// CommandToJSON converts a command to its kind-specific JSON form.
func CommandToJSON(c logic.Command) CommandJSON {
	out := CommandJSON{Actuator: c.Actuator, Kind: string(c.Kind)}
	switch c.Kind {
	case logic.KindBinary:
		on := c.On
		out.On = &on
	case logic.KindLevel:
		lvl := c.Level
		out.Level = &lvl
	case logic.KindRGB:
		out.RGB = &[3]uint8{c.RGB.R, c.RGB.G, c.RGB.B}
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func buildInner(snap Snapshot) StatusInner {
	channels := make([]ChannelJSON, len(snap.Channels))
	for i, c := range snap.Channels {
		channels[i] = ChannelJSON{
			Index:    i,
			Width:    c.Width,
			Captured: c.Captured,
			Fresh:    c.Fresh,
			Accepted: c.Accepted,
			Rejected: c.Rejected,
		}
	}
	commands := make([]CommandJSON, len(snap.Commands))
	for i, c := range snap.Commands {
		commands[i] = CommandToJSON(c)
	}

	return StatusInner{
		Mode:          orUnknown(string(snap.Mode)),
		Health:        orUnknown(string(snap.Health)),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Channels:      channels,
		Commands:      commands,
		Counts: CountsJSON{
			Ticks:           snap.Counts.Ticks,
			FailsafeEntries: snap.Counts.FailsafeEntries,
			FailsafeTicks:   snap.Counts.FailsafeTicks,
		},
		Failing: snap.Failing,
		Config: ConfigJSON{
			TickMs:       snap.Config.TickMs,
			TimeoutMs:    snap.Config.TimeoutMs,
			ReportMs:     snap.Config.ReportMs,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
			GlitchFilter: snap.Config.GlitchFilter,
			ValidLow:     snap.Config.ValidLow,
			ValidHigh:    snap.Config.ValidHigh,
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
