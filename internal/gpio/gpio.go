// Package gpio connects the receiver and the actuators to hardware.
// The real implementations use the Linux GPIO character device and, for
// hardware PWM on a Raspberry Pi, the BCM283x register interface.
// The fake implementations allow testing without hardware.
package gpio

import "time"

// EdgeHandler receives one level transition. channel is the receiver
// channel index, high the new level and at the kernel event timestamp.
// It is called from the edge-event context and must not block.
type EdgeHandler func(channel int, high bool, at time.Duration)

// EdgeSource delivers receiver level transitions.
type EdgeSource interface {
	// Start begins delivering transitions to h. It must be called once.
	Start(h EdgeHandler) error

	// Close stops delivery and releases the lines.
	Close() error
}

// Binary is an on/off output.
type Binary interface {
	Set(on bool) error
	Close() error
}

// Level is a 0-255 intensity output.
type Level interface {
	SetLevel(level uint8) error
	Close() error
}

// Default pin assignment (BCM numbering) for the three-channel LED rig.
const (
	DefaultChip = "gpiochip0"

	PinCH0 = 17 // brightness channel input
	PinCH1 = 27 // colour channel input
	PinCH2 = 22 // power channel input

	PinBrightness = 18 // hardware PWM0
	PinRed        = 23
	PinGreen      = 24
	PinBlue       = 25
	PinPower      = 5
)

// DefaultSoftPWMPeriod gives a 100Hz software PWM, flicker-free for LEDs.
const DefaultSoftPWMPeriod = 10 * time.Millisecond

// DefaultHardPWMFreq is the hardware PWM frequency in Hz.
const DefaultHardPWMFreq = 1000

var (
	_ EdgeSource = (*RealEdgeSource)(nil)
	_ EdgeSource = (*FakeEdgeSource)(nil)
	_ Binary     = (*DigitalOut)(nil)
	_ Binary     = (*FakeBinary)(nil)
	_ Level      = (*SoftPWM)(nil)
	_ Level      = (*HardPWM)(nil)
	_ Level      = (*FakeLevel)(nil)
)
