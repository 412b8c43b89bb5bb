// Package channel captures receiver pulse widths from edge events and
// publishes them to a store shared with the actuation cycle.
//
// Capture runs in the edge-event context (on Linux, the gpiocdev watcher
// goroutine) and may interleave with the cooperative loop at any point.
// Everything crossing that boundary is a single-word atomic: a pointer to an
// immutable Sample, a timestamp, or a counter. Readers never see a width from
// one pulse paired with the timestamp of another.
package channel

import (
	"sync/atomic"
	"time"
)

// Sample is the most recently published pulse for one channel.
// It is immutable once published.
type Sample struct {
	Width    uint32        // pulse width in microseconds
	At       time.Duration // monotonic timestamp of the falling edge
	Captured bool          // false until the first accepted pulse
}

// Counts reports how many pulses a channel accepted and rejected.
type Counts struct {
	Accepted uint64
	Rejected uint64
}

type slot struct {
	sample   atomic.Pointer[Sample]
	start    atomic.Int64 // rising edge timestamp + 1, 0 when no pulse is open
	accepted atomic.Uint64
	rejected atomic.Uint64
}

// Store holds per-channel state written by Capture and read by the
// actuation cycle, the health monitor and diagnostics.
type Store struct {
	slots     []slot
	lastValid atomic.Int64 // timestamp + 1 of the newest accepted pulse, 0 = never
}

// NewStore creates a store with one channel per entry in centers. Each
// channel starts out publishing its center width with Captured unset.
func NewStore(centers []uint32) *Store {
	s := &Store{slots: make([]slot, len(centers))}
	for i, c := range centers {
		s.slots[i].sample.Store(&Sample{Width: c})
	}
	return s
}

// Len returns the number of channels.
func (s *Store) Len() int {
	return len(s.slots)
}

// Sample returns the latest published sample for channel ch.
// An out-of-range channel yields the zero Sample.
func (s *Store) Sample(ch int) Sample {
	if ch < 0 || ch >= len(s.slots) {
		return Sample{}
	}
	return *s.slots[ch].sample.Load()
}

// Snapshot appends the latest sample of every channel to dst and returns
// the extended slice.
func (s *Store) Snapshot(dst []Sample) []Sample {
	for i := range s.slots {
		dst = append(dst, *s.slots[i].sample.Load())
	}
	return dst
}

// LastValid returns the timestamp of the newest accepted pulse on any
// channel. ok is false if no pulse has ever been accepted.
func (s *Store) LastValid() (at time.Duration, ok bool) {
	v := s.lastValid.Load()
	if v == 0 {
		return 0, false
	}
	return time.Duration(v - 1), true
}

// Counts returns the accept/reject counters for channel ch.
func (s *Store) Counts(ch int) Counts {
	if ch < 0 || ch >= len(s.slots) {
		return Counts{}
	}
	return Counts{
		Accepted: s.slots[ch].accepted.Load(),
		Rejected: s.slots[ch].rejected.Load(),
	}
}

// AllCounts returns the counters of every channel in index order.
func (s *Store) AllCounts() []Counts {
	out := make([]Counts, len(s.slots))
	for i := range s.slots {
		out[i] = s.Counts(i)
	}
	return out
}

func (s *Store) publish(ch int, width uint32, at time.Duration) {
	sl := &s.slots[ch]
	sl.sample.Store(&Sample{Width: width, At: at, Captured: true})
	sl.accepted.Add(1)

	// Channels may be served by different watchers; keep the newest.
	v := int64(at) + 1
	for {
		cur := s.lastValid.Load()
		if cur >= v || s.lastValid.CompareAndSwap(cur, v) {
			return
		}
	}
}
