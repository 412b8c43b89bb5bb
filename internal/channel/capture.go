package channel

import "time"

// Filter bounds the pulse widths Capture will publish.
// With Enabled unset every completed pulse is published, glitches included.
type Filter struct {
	Enabled bool
	Low     uint32 // microseconds, inclusive
	High    uint32 // microseconds, inclusive
}

// DefaultFilter accepts 900-2100µs, a margin around the nominal 1000-2000µs.
func DefaultFilter() Filter {
	return Filter{Enabled: true, Low: 900, High: 2100}
}

// Accepts reports whether a width passes the filter.
func (f Filter) Accepts(width uint32) bool {
	if !f.Enabled {
		return true
	}
	return width >= f.Low && width <= f.High
}

// Capture turns level transitions into pulse-width samples.
type Capture struct {
	store  *Store
	filter Filter
}

// NewCapture creates a Capture publishing into store.
func NewCapture(store *Store, filter Filter) *Capture {
	return &Capture{store: store, filter: filter}
}

// HandleEdge records one level transition on channel ch at the monotonic
// timestamp at. A rising edge opens a pulse; a falling edge closes it and
// publishes the width if the filter accepts it.
//
// HandleEdge never blocks, allocates only the published Sample, and must not
// be extended to log or drive outputs.
func (c *Capture) HandleEdge(ch int, high bool, at time.Duration) {
	if ch < 0 || ch >= len(c.store.slots) {
		return
	}
	sl := &c.store.slots[ch]

	if high {
		sl.start.Store(int64(at) + 1)
		return
	}

	start := sl.start.Swap(0)
	if start == 0 {
		// Falling edge without a rising edge: we started mid-pulse.
		return
	}
	begin := time.Duration(start - 1)
	if at < begin {
		return
	}

	width := uint32((at - begin) / time.Microsecond)
	if !c.filter.Accepts(width) {
		sl.rejected.Add(1)
		return
	}
	c.store.publish(ch, width, at)
}
