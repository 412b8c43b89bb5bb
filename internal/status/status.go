// Package status provides a thread-safe status tracker for the rc-lights daemon.
// It is written by the run loop and read by HTTP handlers and the MQTT heartbeat.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/rc-lights/internal/channel"
	"github.com/sweeney/rc-lights/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	TickMs       int64
	TimeoutMs    int64
	ReportMs     int64
	HeartbeatMs  int64
	Broker       string
	HTTPAddr     string
	GlitchFilter bool
	ValidLow     uint32
	ValidHigh    uint32
}

// ChannelInfo is the diagnostic view of one receiver channel.
type ChannelInfo struct {
	Width    uint32
	Captured bool // a pulse has been accepted since startup
	Fresh    bool // the latest pulse is within the failsafe timeout
	Accepted uint64
	Rejected uint64
}

// Channels combines samples and capture counters into ChannelInfo values.
// fresh decides per sample whether it is recent enough.
func Channels(samples []channel.Sample, counts []channel.Counts, fresh func(channel.Sample) bool) []ChannelInfo {
	out := make([]ChannelInfo, len(samples))
	for i, s := range samples {
		out[i] = ChannelInfo{Width: s.Width, Captured: s.Captured, Fresh: fresh(s)}
		if i < len(counts) {
			out[i].Accepted = counts[i].Accepted
			out[i].Rejected = counts[i].Rejected
		}
	}
	return out
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released. Its slices
// are never modified after being stored.
type Snapshot struct {
	Mode          logic.Mode
	Health        logic.Health
	Channels      []ChannelInfo
	Commands      []logic.Command
	Counts        logic.Counts
	Failing       []string // actuators whose last write failed
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
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the outcome of an actuation tick.
func (t *Tracker) Update(frame logic.Frame, health logic.Health, counts logic.Counts, channels []ChannelInfo) {
	cmds := append([]logic.Command(nil), frame.Commands...)
	chans := append([]ChannelInfo(nil), channels...)

	t.mu.Lock()
	t.snap.Mode = frame.Mode
	t.snap.Health = health
	t.snap.Commands = cmds
	t.snap.Channels = chans
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetFailing records which actuators are currently failing.
func (t *Tracker) SetFailing(names []string) {
	names = append([]string(nil), names...)
	t.mu.Lock()
	t.snap.Failing = names
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
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
