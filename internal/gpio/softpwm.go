//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// SoftPWM bit-bangs a duty cycle on an ordinary line from its own
// goroutine. SetLevel only stores the new duty and never waits on the
// output loop.
type SoftPWM struct {
	offset int
	line   *gpiocdev.Line
	period time.Duration
	level  atomic.Uint32
	stop   chan struct{}
	done   sync.WaitGroup
}

// NewSoftPWM requests offset as an output and starts the PWM loop at 0.
func NewSoftPWM(chip string, offset int, period time.Duration) (*SoftPWM, error) {
	if period <= 0 {
		period = DefaultSoftPWMPeriod
	}
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request pwm pin %d: %w", offset, err)
	}
	p := &SoftPWM{
		offset: offset,
		line:   line,
		period: period,
		stop:   make(chan struct{}),
	}
	p.done.Add(1)
	go p.loop()
	return p, nil
}

// SetLevel sets the duty cycle to level/255.
func (p *SoftPWM) SetLevel(level uint8) error {
	p.level.Store(uint32(level))
	return nil
}

func (p *SoftPWM) loop() {
	defer p.done.Done()
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		high := p.period * time.Duration(p.level.Load()) / 255
		low := p.period - high

		if high > 0 {
			p.line.SetValue(1)
			if !p.wait(timer, high) {
				return
			}
		}
		if low > 0 {
			p.line.SetValue(0)
			if !p.wait(timer, low) {
				return
			}
		}
	}
}

func (p *SoftPWM) wait(timer *time.Timer, d time.Duration) bool {
	timer.Reset(d)
	select {
	case <-p.stop:
		return false
	case <-timer.C:
		return true
	}
}

// Close stops the loop, drives the line low and releases it.
func (p *SoftPWM) Close() error {
	close(p.stop)
	p.done.Wait()

	var errs []error
	if err := p.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear pwm pin %d: %w", p.offset, err))
	}
	if err := p.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pwm pin %d: %w", p.offset, err))
	}
	if err := p.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pwm pin %d: %w", p.offset, err))
	}
	return errors.Join(errs...)
}
