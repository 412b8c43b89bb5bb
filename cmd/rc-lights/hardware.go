package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/sweeney/rc-lights/internal/actuator"
	"github.com/sweeney/rc-lights/internal/config"
	"github.com/sweeney/rc-lights/internal/gpio"
	"github.com/sweeney/rc-lights/internal/logic"
)

// outputOpener creates the hardware behind each driver. Tests swap it for fakes.
type outputOpener struct {
	digital func(chip string, pin int) (gpio.Binary, error)
	softPWM func(chip string, pin int) (gpio.Level, error)
	hardPWM func(pin int) (gpio.Level, error)
}

var hardware = outputOpener{
	digital: func(chip string, pin int) (gpio.Binary, error) {
		return gpio.NewDigitalOut(chip, pin)
	},
	softPWM: func(chip string, pin int) (gpio.Level, error) {
		return gpio.NewSoftPWM(chip, pin, gpio.DefaultSoftPWMPeriod)
	},
	hardPWM: func(pin int) (gpio.Level, error) {
		return gpio.NewHardPWM(pin, gpio.DefaultHardPWMFreq)
	},
}

// openBank opens every role's output pins and registers them under the
// role name. On failure everything opened so far is released.
func openBank(cfg config.Config, chip string) (*actuator.Bank, error) {
	return hardware.openBank(cfg, chip)
}

func (h outputOpener) openBank(cfg config.Config, chip string) (*actuator.Bank, error) {
	roles, err := cfg.Mapping()
	if err != nil {
		return nil, err
	}

	bank := actuator.NewBank()
	for i, r := range roles {
		rs := cfg.Roles[i]
		if err := h.addRole(bank, r, rs, chip); err != nil {
			return nil, errors.Join(fmt.Errorf("%s: %w", r.Name, err), bank.Close())
		}
	}
	return bank, nil
}

func (h outputOpener) addRole(bank *actuator.Bank, r logic.Role, rs config.RoleSpec, chip string) error {
	driver := config.DriverFor(rs)

	if r.CommandKind() == logic.KindBinary {
		out, err := h.digital(chip, rs.Pins[0])
		if err != nil {
			return fmt.Errorf("pin %d: %w", rs.Pins[0], err)
		}
		if err := bank.AddBinary(r.Name, out); err != nil {
			return errors.Join(err, out.Close())
		}
		return nil
	}

	levels := make([]gpio.Level, 0, len(rs.Pins))
	release := func(err error) error {
		errs := []error{err}
		for _, l := range levels {
			errs = append(errs, l.Close())
		}
		return errors.Join(errs...)
	}
	for _, pin := range rs.Pins {
		var out gpio.Level
		var err error
		if driver == config.DriverHardPWM {
			out, err = h.hardPWM(pin)
		} else {
			out, err = h.softPWM(chip, pin)
		}
		if err != nil {
			return release(fmt.Errorf("pin %d: %w", pin, err))
		}
		levels = append(levels, out)
	}

	var err error
	if r.CommandKind() == logic.KindRGB {
		err = bank.AddRGB(r.Name, levels[0], levels[1], levels[2])
	} else {
		err = bank.AddLevel(r.Name, levels[0])
	}
	if err != nil {
		return release(err)
	}
	return nil
}

// encodeRoles renders the effective role table for the status server.
func encodeRoles(cfg config.Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := cfg.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode roles: %w", err)
	}
	return buf.Bytes(), nil
}
