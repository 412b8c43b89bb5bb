package gpio

import (
	"errors"
	"sync"
	"time"
)

// Edge is one scripted level transition.
type Edge struct {
	Channel int
	High    bool
	At      time.Duration
}

// Pulse returns the rising and falling edges of a width-µs pulse on
// channel ch starting at start.
func Pulse(ch int, start time.Duration, width int) []Edge {
	return []Edge{
		{Channel: ch, High: true, At: start},
		{Channel: ch, High: false, At: start + time.Duration(width)*time.Microsecond},
	}
}

// FakeEdgeSource is a test double that delivers scripted edges on demand.
type FakeEdgeSource struct {
	mu      sync.Mutex
	handler EdgeHandler

	// StartError, if set, will be returned by Start.
	StartError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeEdgeSource creates an idle FakeEdgeSource.
func NewFakeEdgeSource() *FakeEdgeSource {
	return &FakeEdgeSource{}
}

// Start records the handler.
func (f *FakeEdgeSource) Start(h EdgeHandler) error {
	if f.StartError != nil {
		return f.StartError
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handler != nil {
		return errors.New("fake edge source already started")
	}
	f.handler = h
	return nil
}

// Emit delivers edges to the handler in order. It returns an error if
// Start has not been called.
func (f *FakeEdgeSource) Emit(edges ...Edge) error {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h == nil {
		return errors.New("fake edge source not started")
	}
	for _, e := range edges {
		h(e.Channel, e.High, e.At)
	}
	return nil
}

// Close marks the source as closed.
func (f *FakeEdgeSource) Close() error {
	f.Closed = true
	return nil
}

// FakeBinary records every value written to it.
type FakeBinary struct {
	Values []bool

	// SetError, if set, will be returned by Set.
	SetError error

	Closed bool
}

// Set records on.
func (f *FakeBinary) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Values = append(f.Values, on)
	return nil
}

// Last returns the most recent value, or false if none was written.
func (f *FakeBinary) Last() bool {
	if len(f.Values) == 0 {
		return false
	}
	return f.Values[len(f.Values)-1]
}

// Close marks the output as closed.
func (f *FakeBinary) Close() error {
	f.Closed = true
	return nil
}

// FakeLevel records every intensity written to it.
type FakeLevel struct {
	Values []uint8

	// SetError, if set, will be returned by SetLevel.
	SetError error

	Closed bool
}

// SetLevel records level.
func (f *FakeLevel) SetLevel(level uint8) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Values = append(f.Values, level)
	return nil
}

// Last returns the most recent level, or 0 if none was written.
func (f *FakeLevel) Last() uint8 {
	if len(f.Values) == 0 {
		return 0
	}
	return f.Values[len(f.Values)-1]
}

// Close marks the output as closed.
func (f *FakeLevel) Close() error {
	f.Closed = true
	return nil
}
