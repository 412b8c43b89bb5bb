// Package logic contains the pure core of the RC actuation pipeline: pulse
// width mapping, signal health, and the periodic actuation cycle.
// This package has NO hardware, MQTT, OS, or sleep dependencies.
// Time is always injected as a monotonic time.Duration.
package logic

import (
	"time"

	"github.com/sweeney/rc-lights/internal/channel"
)

// Class is a three-way classification of a pulse width around a center.
type Class int

const (
	Below Class = iota
	Within
	Above
)

func (c Class) String() string {
	switch c {
	case Below:
		return "BELOW"
	case Within:
		return "WITHIN"
	case Above:
		return "ABOVE"
	}
	return "UNKNOWN"
}

// ParseClass converts "BELOW", "WITHIN" or "ABOVE" into a Class.
func ParseClass(s string) (Class, bool) {
	switch s {
	case "BELOW":
		return Below, true
	case "WITHIN":
		return Within, true
	case "ABOVE":
		return Above, true
	}
	return 0, false
}

// Health is the receiver signal condition.
type Health string

const (
	HealthValid Health = "VALID"
	HealthLost  Health = "LOST"
)

// Mode is the actuation cycle state.
type Mode string

const (
	ModeLive     Mode = "LIVE"
	ModeFailsafe Mode = "FAILSAFE"
)

// Kind is the shape of an actuator command.
type Kind string

const (
	KindBinary Kind = "binary"
	KindLevel  Kind = "level"
	KindRGB    Kind = "rgb"
)

// RGB is a colour triple with 0-255 components.
type RGB struct {
	R, G, B uint8
}

// Command is the directive for one actuator on one tick.
// Only the field matching Kind is meaningful.
type Command struct {
	Actuator string
	Kind     Kind
	On       bool
	Level    uint8
	RGB      RGB
}

// HealthTransition records a change of signal health.
type HealthTransition struct {
	From Health
	To   Health
	At   time.Duration
}

// Frame is the outcome of one actuation tick.
type Frame struct {
	At          time.Duration
	Mode        Mode
	ModeChanged bool
	Commands    []Command
	Samples     []channel.Sample
	Transition  *HealthTransition // nil unless health changed on this tick
}

// Counts tracks cycle activity since startup.
type Counts struct {
	Ticks           uint64
	FailsafeEntries uint64
	FailsafeTicks   uint64
}
