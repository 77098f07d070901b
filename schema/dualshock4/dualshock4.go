// Package dualshock4 provides the report schema for the Sony DualShock 4
// (PS4) controller, USB report layout.
package dualshock4

import (
	"github.com/robertosw/gamepad-bridge/gamepad"
	"github.com/robertosw/gamepad-bridge/schema"
)

const (
	VendorSony      = 0x054c
	ProductDS4      = 0x05c4
	ProductDS4Slim  = 0x09cc
	InputReportID   = 0x01
	MinReportLen    = 10
	OutputReportID  = 0x05
	OutputReportLen = 32
)

// Schema is the DualShock 4 report table. Sticks sit at bytes 1-4, byte 5
// packs the hat nibble with the face buttons, byte 6 the shoulder/stick/
// share/options bits, byte 7 the PS and touchpad buttons, bytes 8-9 the
// trigger axes.
var Schema = &schema.Schema{
	Name:         "DualShock 4",
	ReportID:     InputReportID,
	MinReportLen: MinReportLen,
	Hats: []schema.HatMap{
		{Byte: 5, Mask: 0x0f},
	},
	Buttons: []schema.ButtonMap{
		{Button: gamepad.ButtonWest, Byte: 5, Mask: 0x10},
		{Button: gamepad.ButtonSouth, Byte: 5, Mask: 0x20},
		{Button: gamepad.ButtonEast, Byte: 5, Mask: 0x40},
		{Button: gamepad.ButtonNorth, Byte: 5, Mask: 0x80},

		{Button: gamepad.ButtonBumperLeft, Byte: 6, Mask: 0x01},
		{Button: gamepad.ButtonBumperRight, Byte: 6, Mask: 0x02},
		{Button: gamepad.ButtonSelect, Byte: 6, Mask: 0x10},
		{Button: gamepad.ButtonStart, Byte: 6, Mask: 0x20},
		{Button: gamepad.ButtonStickLeft, Byte: 6, Mask: 0x40},
		{Button: gamepad.ButtonStickRight, Byte: 6, Mask: 0x80},

		{Button: gamepad.ButtonLogo, Byte: 7, Mask: 0x01},
		{Button: gamepad.ButtonTouchpad, Byte: 7, Mask: 0x02},
	},
	Axes: []schema.AxisMap{
		{Axis: gamepad.AxisLeftX, Byte: 1, Encoding: schema.AxisCenteredU8},
		{Axis: gamepad.AxisLeftY, Byte: 2, Encoding: schema.AxisCenteredU8},
		{Axis: gamepad.AxisRightX, Byte: 3, Encoding: schema.AxisCenteredU8},
		{Axis: gamepad.AxisRightY, Byte: 4, Encoding: schema.AxisCenteredU8},
		{Axis: gamepad.AxisLeftTrigger, Byte: 8, Encoding: schema.AxisTriggerU8},
		{Axis: gamepad.AxisRightTrigger, Byte: 9, Encoding: schema.AxisTriggerU8},
	},
	Rumble: &schema.RumbleLayout{
		ReportLen: OutputReportLen,
		ReportID:  OutputReportID,
		Preamble:  []byte{0xff, 0x04, 0x00},
		LeftByte:  5, // strong motor
		RightByte: 4, // weak motor
	},
}

func init() {
	schema.Register(VendorSony, ProductDS4, Schema)
	schema.Register(VendorSony, ProductDS4Slim, Schema)
}
