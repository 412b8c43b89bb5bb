// Package actuator dispatches actuator commands to named outputs.
package actuator

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/sweeney/rc-lights/internal/gpio"
	"github.com/sweeney/rc-lights/internal/logic"
)

var (
	// ErrUnknownActuator is returned for a command naming no registered output.
	ErrUnknownActuator = errors.New("unknown actuator")
	// ErrKindMismatch is returned when a command's shape does not fit its output.
	ErrKindMismatch = errors.New("command kind does not match output")
	// ErrDuplicate is returned when an actuator name is registered twice.
	ErrDuplicate = errors.New("actuator already registered")
)

type output struct {
	kind   logic.Kind
	binary gpio.Binary
	levels []gpio.Level // one for KindLevel, red/green/blue for KindRGB
	failed bool
}

// Bank holds the outputs the actuation cycle drives. It is used from the
// cooperative loop only and is not safe for concurrent use.
type Bank struct {
	outputs map[string]*output
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{outputs: make(map[string]*output)}
}

// AddBinary registers an on/off output.
func (b *Bank) AddBinary(name string, out gpio.Binary) error {
	return b.add(name, &output{kind: logic.KindBinary, binary: out})
}

// AddLevel registers a 0-255 intensity output.
func (b *Bank) AddLevel(name string, out gpio.Level) error {
	return b.add(name, &output{kind: logic.KindLevel, levels: []gpio.Level{out}})
}

// AddRGB registers a colour output built from three intensity outputs.
func (b *Bank) AddRGB(name string, r, g, bl gpio.Level) error {
	return b.add(name, &output{kind: logic.KindRGB, levels: []gpio.Level{r, g, bl}})
}

func (b *Bank) add(name string, o *output) error {
	if _, ok := b.outputs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	b.outputs[name] = o
	return nil
}

// Names returns the registered actuator names, sorted.
func (b *Bank) Names() []string {
	names := make([]string, 0, len(b.outputs))
	for n := range b.outputs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply writes one command to its output.
func (b *Bank) Apply(cmd logic.Command) error {
	o, ok := b.outputs[cmd.Actuator]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActuator, cmd.Actuator)
	}
	if o.kind != cmd.Kind {
		return fmt.Errorf("%w: %s is %s, got %s", ErrKindMismatch, cmd.Actuator, o.kind, cmd.Kind)
	}

	switch cmd.Kind {
	case logic.KindBinary:
		return o.binary.Set(cmd.On)
	case logic.KindLevel:
		return o.levels[0].SetLevel(cmd.Level)
	}

	var errs []error
	for i, v := range []uint8{cmd.RGB.R, cmd.RGB.G, cmd.RGB.B} {
		if err := o.levels[i].SetLevel(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ApplyAll writes a frame's commands. A failing output does not stop the
// others. Failures are logged when an output starts failing and again when
// it recovers, not on every tick.
func (b *Bank) ApplyAll(cmds []logic.Command) error {
	var errs []error
	for _, cmd := range cmds {
		err := b.Apply(cmd)
		o := b.outputs[cmd.Actuator]
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cmd.Actuator, err))
			if o != nil && !o.failed {
				o.failed = true
				log.Printf("actuator: %s failing: %v", cmd.Actuator, err)
			}
			continue
		}
		if o.failed {
			o.failed = false
			log.Printf("actuator: %s recovered", cmd.Actuator)
		}
	}
	return errors.Join(errs...)
}

// Failing returns the names of outputs whose last write failed, sorted.
func (b *Bank) Failing() []string {
	var names []string
	for n, o := range b.outputs {
		if o.failed {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Close releases every output.
func (b *Bank) Close() error {
	var errs []error
	for _, name := range b.Names() {
		o := b.outputs[name]
		if o.binary != nil {
			if err := o.binary.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", name, err))
			}
		}
		for _, l := range o.levels {
			if err := l.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}
