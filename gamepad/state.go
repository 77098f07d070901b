// Package gamepad defines the canonical controller model shared by the whole
// bridge: device identity, the normalized controller state, and the events
// published on the state bus.
package gamepad

// Button identifies one digital input as a bit in the canonical state's
// button field. Names are position-based (south/east/west/north) so the same
// canonical state works for PlayStation and Xbox style pads.
type Button uint32

const (
	ButtonSouth Button = 0x0001 // cross / A
	ButtonEast  Button = 0x0002 // circle / B
	ButtonWest  Button = 0x0004 // square / X
	ButtonNorth Button = 0x0008 // triangle / Y

	ButtonDPadUp    Button = 0x0010
	ButtonDPadDown  Button = 0x0020
	ButtonDPadLeft  Button = 0x0040
	ButtonDPadRight Button = 0x0080

	ButtonBumperLeft  Button = 0x0100
	ButtonBumperRight Button = 0x0200
	ButtonStickLeft   Button = 0x0400 // left stick pressed
	ButtonStickRight  Button = 0x0800 // right stick pressed

	ButtonSelect   Button = 0x1000 // create / share / back
	ButtonStart    Button = 0x2000 // options / menu
	ButtonLogo     Button = 0x4000
	ButtonTouchpad Button = 0x8000
)

// Axis identifies one analog input of the canonical state.
type Axis uint8

const (
	AxisLeftX Axis = iota
	AxisLeftY
	AxisRightX
	AxisRightY
	AxisLeftTrigger
	AxisRightTrigger
)

// State is the canonical, schema-independent controller snapshot. Every
// field is always present: inputs a physical device does not have stay at
// their neutral value (zero), so consumers never branch on schema variance.
//
// Axes are normalized signed values. Sticks are centered (0 is neutral,
// negative is left/up), triggers rest at 0 and reach 32767 fully pressed.
type State struct {
	Buttons Button

	LX, LY int16
	RX, RY int16
	LT, RT int16

	// CanRumble reports whether the originating device accepts rumble
	// output commands.
	CanRumble bool
}

// Pressed reports whether every button in mask is currently pressed.
func (s State) Pressed(mask Button) bool { return s.Buttons&mask == mask }

// AxisValue returns the value of the given axis.
func (s State) AxisValue(a Axis) int16 {
	switch a {
	case AxisLeftX:
		return s.LX
	case AxisLeftY:
		return s.LY
	case AxisRightX:
		return s.RX
	case AxisRightY:
		return s.RY
	case AxisLeftTrigger:
		return s.LT
	case AxisRightTrigger:
		return s.RT
	}
	return 0
}

// SetAxis sets the value of the given axis.
func (s *State) SetAxis(a Axis, v int16) {
	switch a {
	case AxisLeftX:
		s.LX = v
	case AxisLeftY:
		s.LY = v
	case AxisRightX:
		s.RX = v
	case AxisRightY:
		s.RY = v
	case AxisLeftTrigger:
		s.LT = v
	case AxisRightTrigger:
		s.RT = v
	}
}
