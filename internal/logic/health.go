package logic

import "time"

// LastValidSource reports the timestamp of the newest accepted pulse.
// *channel.Store implements it.
type LastValidSource interface {
	LastValid() (at time.Duration, ok bool)
}

// Monitor derives signal health from the last accepted capture.
type Monitor struct {
	src     LastValidSource
	timeout time.Duration
	level   Health
}

// NewMonitor creates a monitor that reports LOST once no pulse has been
// accepted for timeout. The assumed starting level is VALID, so a receiver
// that is silent from boot produces a VALID->LOST transition on the first
// Check.
func NewMonitor(src LastValidSource, timeout time.Duration) *Monitor {
	return &Monitor{src: src, timeout: timeout, level: HealthValid}
}

// IsValid reports whether a pulse was accepted less than timeout before now.
// A pulse stamped after now (the edge landed between reading the clock and
// this call) counts as current.
func (m *Monitor) IsValid(now time.Duration) bool {
	last, ok := m.src.LastValid()
	if !ok {
		return false
	}
	if last >= now {
		return true
	}
	return now-last < m.timeout
}

// Check evaluates health at now and returns the level. The transition is
// non-nil only when the level differs from the previous Check.
func (m *Monitor) Check(now time.Duration) (Health, *HealthTransition) {
	next := HealthLost
	if m.IsValid(now) {
		next = HealthValid
	}
	if next == m.level {
		return next, nil
	}
	tr := &HealthTransition{From: m.level, To: next, At: now}
	m.level = next
	return next, tr
}

// Level returns the level seen by the most recent Check.
func (m *Monitor) Level() Health {
	return m.level
}

// Timeout returns the configured staleness limit.
func (m *Monitor) Timeout() time.Duration {
	return m.timeout
}

// SampleFresh reports whether a single channel's sample is younger than the
// timeout. It is diagnostic only; failsafe is decided on the system level.
func (m *Monitor) SampleFresh(captured bool, at, now time.Duration) bool {
	if !captured {
		return false
	}
	return at >= now || now-at < m.timeout
}
