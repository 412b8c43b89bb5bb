//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealEdgeSource watches receiver channel lines for both edges using the
// GPIO character device. Line offsets are given in channel order.
type RealEdgeSource struct {
	chip    string
	offsets []int
	lines   *gpiocdev.Lines
}

// NewRealEdgeSource creates an edge source for the given line offsets.
// No lines are requested until Start.
func NewRealEdgeSource(chip string, offsets []int) *RealEdgeSource {
	return &RealEdgeSource{chip: chip, offsets: append([]int(nil), offsets...)}
}

// Start requests the lines and begins delivering edges to h. The kernel
// stamps each event with CLOCK_MONOTONIC.
func (s *RealEdgeSource) Start(h EdgeHandler) error {
	if s.lines != nil {
		return errors.New("edge source already started")
	}
	index := make(map[int]int, len(s.offsets))
	for ch, off := range s.offsets {
		index[off] = ch
	}

	handler := func(evt gpiocdev.LineEvent) {
		ch, ok := index[evt.Offset]
		if !ok {
			return
		}
		h(ch, evt.Type == gpiocdev.LineEventRisingEdge, evt.Timestamp)
	}

	// Pull-down keeps an unplugged receiver input from floating into
	// phantom pulses.
	lines, err := gpiocdev.RequestLines(s.chip, s.offsets,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(handler))
	if err != nil {
		return fmt.Errorf("request receiver lines %v: %w", s.offsets, err)
	}
	s.lines = lines
	return nil
}

// Close releases the receiver lines.
func (s *RealEdgeSource) Close() error {
	if s.lines == nil {
		return nil
	}
	err := s.lines.Close()
	s.lines = nil
	if err != nil {
		return fmt.Errorf("close receiver lines: %w", err)
	}
	return nil
}

// DigitalOut drives one line high or low.
type DigitalOut struct {
	offset int
	line   *gpiocdev.Line
}

// NewDigitalOut requests offset as an output, initially low.
func NewDigitalOut(chip string, offset int) (*DigitalOut, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", offset, err)
	}
	return &DigitalOut{offset: offset, line: line}, nil
}

// Set drives the line.
func (d *DigitalOut) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := d.line.SetValue(v); err != nil {
		return fmt.Errorf("set pin %d: %w", d.offset, err)
	}
	return nil
}

// Close drives the line low and returns it to an input with pull-down,
// matching Pi boot defaults, before releasing it.
func (d *DigitalOut) Close() error {
	var errs []error
	if err := d.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear pin %d: %w", d.offset, err))
	}
	if err := d.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", d.offset, err))
	}
	if err := d.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin %d: %w", d.offset, err))
	}
	return errors.Join(errs...)
}
