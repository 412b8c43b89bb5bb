//go:build !linux

package gpio

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealEdgeSource is not available on non-Linux platforms.
type RealEdgeSource struct{}

// NewRealEdgeSource returns a source whose Start always fails.
func NewRealEdgeSource(chip string, offsets []int) *RealEdgeSource {
	return &RealEdgeSource{}
}

// Start is not implemented on non-Linux platforms.
func (s *RealEdgeSource) Start(h EdgeHandler) error { return errUnsupported }

// Close is a no-op on non-Linux platforms.
func (s *RealEdgeSource) Close() error { return nil }

// DigitalOut is not available on non-Linux platforms.
type DigitalOut struct{}

// NewDigitalOut returns an error on non-Linux platforms.
func NewDigitalOut(chip string, offset int) (*DigitalOut, error) { return nil, errUnsupported }

// Set is not implemented on non-Linux platforms.
func (d *DigitalOut) Set(on bool) error { return errUnsupported }

// Close is a no-op on non-Linux platforms.
func (d *DigitalOut) Close() error { return nil }

// SoftPWM is not available on non-Linux platforms.
type SoftPWM struct{}

// NewSoftPWM returns an error on non-Linux platforms.
func NewSoftPWM(chip string, offset int, period time.Duration) (*SoftPWM, error) {
	return nil, errUnsupported
}

// SetLevel is not implemented on non-Linux platforms.
func (p *SoftPWM) SetLevel(level uint8) error { return errUnsupported }

// Close is a no-op on non-Linux platforms.
func (p *SoftPWM) Close() error { return nil }

// HardPWM is not available on non-Linux platforms.
type HardPWM struct{}

// NewHardPWM returns an error on non-Linux platforms.
func NewHardPWM(pin, freq int) (*HardPWM, error) { return nil, errUnsupported }

// SetLevel is not implemented on non-Linux platforms.
func (h *HardPWM) SetLevel(level uint8) error { return errUnsupported }

// Close is a no-op on non-Linux platforms.
func (h *HardPWM) Close() error { return nil }
