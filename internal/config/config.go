// Package config loads the channel-to-role table: which receiver pin feeds
// each channel, how each channel's pulse width is mapped, and which output
// pins the resulting actuator drives.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sweeney/rc-lights/internal/gpio"
	"github.com/sweeney/rc-lights/internal/logic"
)

// Output drivers.
const (
	DriverDigital = "digital" // on/off GPIO line
	DriverSoftPWM = "softpwm" // software PWM on a GPIO line
	DriverHardPWM = "hwpwm"   // Raspberry Pi PWM peripheral
)

var (
	ErrNoInputs        = errors.New("no receiver inputs")
	ErrNoRoles         = errors.New("no roles")
	ErrNoChannel       = errors.New("channel has no receiver input")
	ErrDuplicateRole   = errors.New("duplicate role name")
	ErrUnknownRole     = errors.New("unknown role kind")
	ErrUnknownPolicy   = errors.New("unknown switch policy")
	ErrUnknownClass    = errors.New("unknown classification")
	ErrUnknownDriver   = errors.New("unknown output driver")
	ErrDriverMismatch  = errors.New("driver cannot serve role")
	ErrPinCount        = errors.New("wrong number of output pins")
	ErrEmptyInput      = errors.New("input range is empty")
	ErrOutputRange     = errors.New("output range out of bounds")
	ErrBadDeadband     = errors.New("deadband is negative")
	ErrColors          = errors.New("select role needs three colours with 0-255 components")
	ErrFailsafeOutside = errors.New("failsafe colour component out of 0-255")
)

// Failsafe is the command a role's actuator receives while the signal is lost.
type Failsafe struct {
	On    bool    `json:"on,omitempty"`
	Level uint8   `json:"level,omitempty"`
	RGB   *[3]int `json:"rgb,omitempty"`
}

// RoleSpec is one entry of the role table as written in JSON.
type RoleSpec struct {
	Name     string    `json:"name"`
	Channel  int       `json:"channel"`
	Kind     string    `json:"kind"`
	Input    *[2]int   `json:"input,omitempty"`
	Output   *[2]int   `json:"output,omitempty"`
	Center   int       `json:"center,omitempty"`
	Deadband *int      `json:"deadband,omitempty"`
	Policy   string    `json:"policy,omitempty"`
	Active   string    `json:"active,omitempty"`
	Colors   [][3]int  `json:"colors,omitempty"`
	Failsafe *Failsafe `json:"failsafe,omitempty"`
	Driver   string    `json:"driver,omitempty"`
	Pins     []int     `json:"pins"`
}

// Config is the complete role table.
type Config struct {
	// Inputs lists the receiver input pin of each channel; the index is the
	// channel number.
	Inputs []int      `json:"inputs"`
	Roles  []RoleSpec `json:"roles"`
}

func intp(v int) *int { return &v }

// Default returns the three-channel LED rig.
func Default() Config {
	return Config{
		Inputs: []int{gpio.PinCH0, gpio.PinCH1, gpio.PinCH2},
		Roles: []RoleSpec{
			{
				Name:     "brightness",
				Channel:  0,
				Kind:     string(logic.RoleLevel),
				Input:    &[2]int{logic.DefaultInputLo, logic.DefaultInputHi},
				Output:   &[2]int{255, 0},
				Center:   logic.DefaultCenter,
				Deadband: intp(logic.DefaultDeadband),
				Driver:   DriverHardPWM,
				Pins:     []int{gpio.PinBrightness},
			},
			{
				Name:     "color",
				Channel:  1,
				Kind:     string(logic.RoleHue),
				Input:    &[2]int{logic.DefaultInputLo, logic.DefaultInputHi},
				Output:   &[2]int{0, 359},
				Center:   logic.DefaultCenter,
				Deadband: intp(logic.DefaultDeadband),
				Driver:   DriverSoftPWM,
				Pins:     []int{gpio.PinRed, gpio.PinGreen, gpio.PinBlue},
			},
			{
				Name:     "power",
				Channel:  2,
				Kind:     string(logic.RoleSwitch),
				Input:    &[2]int{logic.DefaultInputLo, logic.DefaultInputHi},
				Center:   logic.DefaultCenter,
				Deadband: intp(logic.DefaultDeadband),
				Policy:   string(logic.PolicyPositional),
				Active:   logic.Below.String(),
				Driver:   DriverDigital,
				Pins:     []int{gpio.PinPower},
			},
		},
	}
}

// Load decodes and validates a role table. Unknown fields are rejected.
func Load(r io.Reader) (Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode role table: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadFile reads a role table from path.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open role table: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Write encodes the table as indented JSON.
func (c Config) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// Validate checks every role and returns the first problem found.
func (c Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInputs
	}
	if len(c.Roles) == 0 {
		return ErrNoRoles
	}
	seen := make(map[string]bool, len(c.Roles))
	for i, rs := range c.Roles {
		if seen[rs.Name] {
			return fmt.Errorf("role %d: %w: %q", i, ErrDuplicateRole, rs.Name)
		}
		seen[rs.Name] = true
		if _, err := c.role(rs); err != nil {
			return fmt.Errorf("role %d (%s): %w", i, rs.Name, err)
		}
	}
	return nil
}

// Mapping converts the table into the roles the actuation cycle runs.
func (c Config) Mapping() ([]logic.Role, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	roles := make([]logic.Role, 0, len(c.Roles))
	for _, rs := range c.Roles {
		r, _ := c.role(rs)
		roles = append(roles, r)
	}
	return roles, nil
}

// Centers returns the idle width of every channel: the center of the first
// role reading it, or the standard center for channels no role reads.
func (c Config) Centers() []uint32 {
	centers := make([]uint32, len(c.Inputs))
	for i := range centers {
		centers[i] = logic.DefaultCenter
	}
	for i := len(c.Roles) - 1; i >= 0; i-- {
		rs := c.Roles[i]
		if rs.Channel < 0 || rs.Channel >= len(centers) {
			continue
		}
		if rs.Center > 0 {
			centers[rs.Channel] = uint32(rs.Center)
		}
	}
	return centers
}

// DriverFor returns the driver a role uses, applying the per-kind default.
func DriverFor(rs RoleSpec) string {
	if rs.Driver != "" {
		return rs.Driver
	}
	if logic.RoleKind(rs.Kind) == logic.RoleSwitch {
		return DriverDigital
	}
	return DriverSoftPWM
}

func (c Config) role(rs RoleSpec) (logic.Role, error) {
	r := logic.Role{
		Name:     rs.Name,
		Channel:  rs.Channel,
		Kind:     logic.RoleKind(rs.Kind),
		Input:    logic.Range{Lo: logic.DefaultInputLo, Hi: logic.DefaultInputHi},
		Center:   logic.DefaultCenter,
		Deadband: logic.DefaultDeadband,
	}
	if rs.Channel < 0 || rs.Channel >= len(c.Inputs) {
		return r, fmt.Errorf("%w: %d", ErrNoChannel, rs.Channel)
	}
	if rs.Input != nil {
		r.Input = logic.Range{Lo: rs.Input[0], Hi: rs.Input[1]}
	}
	if r.Input.Lo == r.Input.Hi {
		return r, ErrEmptyInput
	}
	if rs.Center > 0 {
		r.Center = rs.Center
	}
	if rs.Deadband != nil {
		if *rs.Deadband < 0 {
			return r, ErrBadDeadband
		}
		r.Deadband = *rs.Deadband
	}

	switch r.Kind {
	case logic.RoleLevel:
		r.Output = logic.Range{Lo: 0, Hi: 255}
		if rs.Output != nil {
			r.Output = logic.Range{Lo: rs.Output[0], Hi: rs.Output[1]}
		}
		if !within(r.Output, 0, 255) {
			return r, fmt.Errorf("%w: level must stay in 0-255", ErrOutputRange)
		}
	case logic.RoleHue:
		r.Output = logic.Range{Lo: 0, Hi: 359}
		if rs.Output != nil {
			r.Output = logic.Range{Lo: rs.Output[0], Hi: rs.Output[1]}
		}
		if !within(r.Output, 0, 359) {
			return r, fmt.Errorf("%w: hue must stay in 0-359", ErrOutputRange)
		}
	case logic.RoleSwitch:
		r.Policy = logic.PolicyPositional
		if rs.Policy != "" {
			r.Policy = logic.Policy(rs.Policy)
		}
		if r.Policy != logic.PolicyPositional && r.Policy != logic.PolicyToggle {
			return r, fmt.Errorf("%w: %q", ErrUnknownPolicy, rs.Policy)
		}
		if rs.Active != "" {
			cl, ok := logic.ParseClass(rs.Active)
			if !ok {
				return r, fmt.Errorf("%w: %q", ErrUnknownClass, rs.Active)
			}
			r.Active = cl
		}
	case logic.RoleSelect:
		if len(rs.Colors) != 3 {
			return r, ErrColors
		}
		for i, col := range rs.Colors {
			rgb, ok := toRGB(col)
			if !ok {
				return r, ErrColors
			}
			r.Colors[i] = rgb
		}
	default:
		return r, fmt.Errorf("%w: %q", ErrUnknownRole, rs.Kind)
	}

	if err := checkDriver(r.CommandKind(), DriverFor(rs), len(rs.Pins)); err != nil {
		return r, err
	}

	if rs.Failsafe != nil {
		cmd := logic.Command{On: rs.Failsafe.On, Level: rs.Failsafe.Level}
		if rs.Failsafe.RGB != nil {
			rgb, ok := toRGB(*rs.Failsafe.RGB)
			if !ok {
				return r, ErrFailsafeOutside
			}
			cmd.RGB = rgb
		}
		r.Failsafe = &cmd
	}
	return r, nil
}

func checkDriver(kind logic.Kind, driver string, pins int) error {
	want := 1
	switch driver {
	case DriverDigital:
		if kind != logic.KindBinary {
			return fmt.Errorf("%w: %s drives on/off only", ErrDriverMismatch, driver)
		}
	case DriverSoftPWM, DriverHardPWM:
		if kind == logic.KindBinary {
			return fmt.Errorf("%w: switch roles use %s", ErrDriverMismatch, DriverDigital)
		}
		if kind == logic.KindRGB {
			want = 3
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if pins != want {
		return fmt.Errorf("%w: got %d, want %d", ErrPinCount, pins, want)
	}
	return nil
}

func within(r logic.Range, lo, hi int) bool {
	return r.Lo >= lo && r.Lo <= hi && r.Hi >= lo && r.Hi <= hi
}

func toRGB(c [3]int) (logic.RGB, bool) {
	for _, v := range c {
		if v < 0 || v > 255 {
			return logic.RGB{}, false
		}
	}
	return logic.RGB{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2])}, true
}
