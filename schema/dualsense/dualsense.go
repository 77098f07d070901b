// Package dualsense provides the report schema for the Sony DualSense (PS5)
// controller.
package dualsense

import (
	"github.com/robertosw/gamepad-bridge/gamepad"
	"github.com/robertosw/gamepad-bridge/schema"
)

// Schema is the DualSense report table.
var Schema = &schema.Schema{
	Name:         "DualSense",
	ReportID:     InputReportID,
	MinReportLen: MinReportLen,
	Hats: []schema.HatMap{
		{Byte: ByteFace, Mask: HatMask},
	},
	Buttons: []schema.ButtonMap{
		{Button: gamepad.ButtonWest, Byte: ByteFace, Mask: MaskSquare},
		{Button: gamepad.ButtonSouth, Byte: ByteFace, Mask: MaskCross},
		{Button: gamepad.ButtonEast, Byte: ByteFace, Mask: MaskCircle},
		{Button: gamepad.ButtonNorth, Byte: ByteFace, Mask: MaskTriangl},

		{Button: gamepad.ButtonBumperLeft, Byte: ByteShoulder, Mask: MaskL1},
		{Button: gamepad.ButtonBumperRight, Byte: ByteShoulder, Mask: MaskR1},
		{Button: gamepad.ButtonSelect, Byte: ByteShoulder, Mask: MaskCreate},
		{Button: gamepad.ButtonStart, Byte: ByteShoulder, Mask: MaskOptions},
		{Button: gamepad.ButtonStickLeft, Byte: ByteShoulder, Mask: MaskL3},
		{Button: gamepad.ButtonStickRight, Byte: ByteShoulder, Mask: MaskR3},

		{Button: gamepad.ButtonLogo, Byte: ByteSpecial, Mask: MaskLogo},
		{Button: gamepad.ButtonTouchpad, Byte: ByteSpecial, Mask: MaskTouchpad},
	},
	Axes: []schema.AxisMap{
		{Axis: gamepad.AxisLeftX, Byte: ByteLX, Encoding: schema.AxisCenteredU8},
		{Axis: gamepad.AxisLeftY, Byte: ByteLY, Encoding: schema.AxisCenteredU8},
		{Axis: gamepad.AxisRightX, Byte: ByteRX, Encoding: schema.AxisCenteredU8},
		{Axis: gamepad.AxisRightY, Byte: ByteRY, Encoding: schema.AxisCenteredU8},
		{Axis: gamepad.AxisLeftTrigger, Byte: ByteL2, Encoding: schema.AxisTriggerU8},
		{Axis: gamepad.AxisRightTrigger, Byte: ByteR2, Encoding: schema.AxisTriggerU8},
	},
	Rumble: &schema.RumbleLayout{
		ReportLen: OutputReportLen,
		ReportID:  OutputReportID,
		// Enable flags: motor control + LED passthrough off.
		Preamble:  []byte{0x01, 0x02},
		LeftByte:  ByteRumbleLeft,
		RightByte: ByteRumbleRight,
	},
}

func init() {
	schema.Register(VendorSony, ProductDualSense, Schema)
}
