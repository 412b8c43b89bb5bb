package logic

import (
	"time"

	"github.com/sweeney/rc-lights/internal/channel"
)

// Source is the read side of the shared channel store.
type Source interface {
	LastValidSource
	Snapshot(dst []channel.Sample) []channel.Sample
}

// Cycle is the periodic actuation state machine. It starts LIVE; each Step
// consults signal health and either maps every role or emits the safe
// command set. It is owned by the cooperative loop and not safe for
// concurrent use.
type Cycle struct {
	roles   []Role
	src     Source
	health  *Monitor
	mode    Mode
	toggles []Toggle
	counts  Counts
}

// NewCycle creates a cycle over roles reading from src, with failsafe after
// timeout without accepted pulses.
func NewCycle(roles []Role, src Source, timeout time.Duration) *Cycle {
	return &Cycle{
		roles:   append([]Role(nil), roles...),
		src:     src,
		health:  NewMonitor(src, timeout),
		mode:    ModeLive,
		toggles: make([]Toggle, len(roles)),
	}
}

// Step runs one tick at the monotonic time now and returns the commands to
// emit. Exactly one command is produced per role.
func (c *Cycle) Step(now time.Duration) Frame {
	c.counts.Ticks++

	samples := c.src.Snapshot(nil)
	level, tr := c.health.Check(now)

	frame := Frame{
		At:         now,
		Samples:    samples,
		Transition: tr,
		Commands:   make([]Command, 0, len(c.roles)),
	}

	if level == HealthLost {
		if c.mode != ModeFailsafe {
			c.mode = ModeFailsafe
			c.counts.FailsafeEntries++
			frame.ModeChanged = true
			for i := range c.toggles {
				c.toggles[i].Reset()
			}
		}
		c.counts.FailsafeTicks++
		frame.Mode = c.mode
		frame.Commands = append(frame.Commands, c.SafeCommands()...)
		return frame
	}

	if c.mode != ModeLive {
		c.mode = ModeLive
		frame.ModeChanged = true
	}
	frame.Mode = c.mode
	for i, r := range c.roles {
		width := r.Center
		if r.Channel >= 0 && r.Channel < len(samples) {
			width = int(samples[r.Channel].Width)
		}
		frame.Commands = append(frame.Commands, r.command(width, &c.toggles[i]))
	}
	return frame
}

// SafeCommands returns the failsafe command for every role.
func (c *Cycle) SafeCommands() []Command {
	out := make([]Command, len(c.roles))
	for i, r := range c.roles {
		out[i] = r.SafeCommand()
	}
	return out
}

// Mode returns the current state.
func (c *Cycle) Mode() Mode {
	return c.mode
}

// Health returns the signal level seen on the last Step.
func (c *Cycle) Health() Health {
	return c.health.Level()
}

// Monitor exposes the health monitor for diagnostics.
func (c *Cycle) Monitor() *Monitor {
	return c.health
}

// Counts returns a copy of the activity counters.
func (c *Cycle) Counts() Counts {
	return c.counts
}

// Roles returns a copy of the role table.
func (c *Cycle) Roles() []Role {
	return append([]Role(nil), c.roles...)
}
