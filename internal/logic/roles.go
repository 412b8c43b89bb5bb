package logic

// RoleKind selects how a channel drives its actuator.
type RoleKind string

const (
	// RoleLevel maps the width linearly onto a 0-255 intensity.
	RoleLevel RoleKind = "level"
	// RoleHue maps the width onto a hue and drives an RGB actuator.
	RoleHue RoleKind = "hue"
	// RoleSwitch drives a binary actuator from a classification.
	RoleSwitch RoleKind = "switch"
	// RoleSelect picks one of three colours from a classification.
	RoleSelect RoleKind = "select"
)

// Policy decides how a switch role turns its classification into on/off.
type Policy string

const (
	// PolicyPositional: on while the stick is in the active zone.
	PolicyPositional Policy = "positional"
	// PolicyToggle: flip on each entry into the active zone.
	PolicyToggle Policy = "toggle"
)

// Range is a closed integer interval. Lo may exceed Hi for an inverted output.
type Range struct {
	Lo, Hi int
}

// Role binds one receiver channel to one actuator.
type Role struct {
	Name     string // actuator name
	Channel  int
	Kind     RoleKind
	Input    Range // valid pulse-width domain in microseconds
	Output   Range // level: intensity range; hue: hue range in degrees
	Center   int
	Deadband int
	Policy   Policy
	Active   Class
	Colors   [3]RGB // select: colour per Class
	Failsafe *Command
}

// CommandKind returns the command shape the role produces.
func (r Role) CommandKind() Kind {
	switch r.Kind {
	case RoleSwitch:
		return KindBinary
	case RoleHue, RoleSelect:
		return KindRGB
	}
	return KindLevel
}

// SafeCommand returns the command emitted while in failsafe: the role's
// configured failsafe command, or off / zero.
func (r Role) SafeCommand() Command {
	cmd := Command{}
	if r.Failsafe != nil {
		cmd = *r.Failsafe
	}
	cmd.Actuator = r.Name
	cmd.Kind = r.CommandKind()
	return cmd
}

// command maps one pulse width. toggle is the role's latch and is only
// consulted by toggle-policy switches.
func (r Role) command(width int, toggle *Toggle) Command {
	cmd := Command{Actuator: r.Name, Kind: r.CommandKind()}
	switch r.Kind {
	case RoleLevel:
		cmd.Level = level(MapRange(width, r.Input.Lo, r.Input.Hi, r.Output.Lo, r.Output.Hi))
	case RoleHue:
		cmd.RGB = HueToRGB(MapRange(width, r.Input.Lo, r.Input.Hi, r.Output.Lo, r.Output.Hi))
	case RoleSwitch:
		active := Classify(width, r.Center, r.Deadband) == r.Active
		if r.Policy == PolicyToggle {
			cmd.On = toggle.Update(active)
		} else {
			cmd.On = active
		}
	case RoleSelect:
		cmd.RGB = r.Colors[Classify(width, r.Center, r.Deadband)]
	}
	return cmd
}

// Standard pulse geometry of the receiver the default table was built for.
const (
	DefaultCenter   = 1500
	DefaultDeadband = 200
	DefaultInputLo  = 1050
	DefaultInputHi  = 1950
)

// DefaultRoles is the three-channel LED rig: brightness on channel 0
// (higher width dims), hue on channel 1, and a power LED on channel 2 that
// is on while the stick sits below the deadband.
func DefaultRoles() []Role {
	in := Range{Lo: DefaultInputLo, Hi: DefaultInputHi}
	return []Role{
		{
			Name:     "brightness",
			Channel:  0,
			Kind:     RoleLevel,
			Input:    in,
			Output:   Range{Lo: 255, Hi: 0},
			Center:   DefaultCenter,
			Deadband: DefaultDeadband,
		},
		{
			Name:     "color",
			Channel:  1,
			Kind:     RoleHue,
			Input:    in,
			Output:   Range{Lo: 0, Hi: 359},
			Center:   DefaultCenter,
			Deadband: DefaultDeadband,
		},
		{
			Name:     "power",
			Channel:  2,
			Kind:     RoleSwitch,
			Input:    in,
			Center:   DefaultCenter,
			Deadband: DefaultDeadband,
			Policy:   PolicyPositional,
			Active:   Below,
		},
	}
}
