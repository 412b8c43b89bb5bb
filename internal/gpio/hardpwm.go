//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// The BCM register map is process-wide; share it between outputs.
var (
	rpioMu   sync.Mutex
	rpioRefs int
)

func acquireRPIO() error {
	rpioMu.Lock()
	defer rpioMu.Unlock()
	if rpioRefs == 0 {
		if err := rpio.Open(); err != nil {
			return fmt.Errorf("open bcm registers: %w", err)
		}
	}
	rpioRefs++
	return nil
}

func releaseRPIO() error {
	rpioMu.Lock()
	defer rpioMu.Unlock()
	rpioRefs--
	if rpioRefs > 0 {
		return nil
	}
	rpioRefs = 0
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close bcm registers: %w", err)
	}
	return nil
}

// HardPWM drives a Raspberry Pi hardware PWM pin (BCM 12, 13, 18 or 19).
// Duty updates are single register writes.
type HardPWM struct {
	pin rpio.Pin
}

// NewHardPWM configures pin for hardware PWM at freq Hz with 256 steps,
// starting at 0.
func NewHardPWM(pin, freq int) (*HardPWM, error) {
	switch pin {
	case 12, 13, 18, 19:
	default:
		return nil, fmt.Errorf("pin %d has no hardware pwm", pin)
	}
	if freq <= 0 {
		freq = DefaultHardPWMFreq
	}
	if err := acquireRPIO(); err != nil {
		return nil, err
	}
	p := rpio.Pin(pin)
	p.Mode(rpio.Pwm)
	p.Freq(freq * 255)
	p.DutyCycle(0, 255)
	return &HardPWM{pin: p}, nil
}

// SetLevel sets the duty cycle to level/255.
func (h *HardPWM) SetLevel(level uint8) error {
	h.pin.DutyCycle(uint32(level), 255)
	return nil
}

// Close zeroes the duty cycle and returns the pin to an input with pull-down.
func (h *HardPWM) Close() error {
	h.pin.DutyCycle(0, 255)
	h.pin.Input()
	h.pin.PullDown()
	return releaseRPIO()
}
