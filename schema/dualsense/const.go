package dualsense

// Sony DualSense (PS5) over Bluetooth, simple HID report (ID 0x01).
const (
	VendorSony       = 0x054c
	ProductDualSense = 0x0ce6
)

// Input report layout. The first two bytes are the report ID and a rolling
// counter; reports may carry extra vendor bytes past MinReportLen (touchpad,
// IMU) which this table does not interpret.
const (
	InputReportID = 0x01
	MinReportLen  = 12

	ByteLX = 2
	ByteLY = 3
	ByteRX = 4
	ByteRY = 5
	ByteL2 = 6
	ByteR2 = 7

	// Low nibble: d-pad hat. High nibble: face buttons.
	ByteFace    = 9
	HatMask     = 0x0f
	MaskSquare  = 0x10
	MaskCross   = 0x20
	MaskCircle  = 0x40
	MaskTriangl = 0x80

	// Shoulder buttons, stick clicks and the small specials.
	ByteShoulder = 10
	MaskL1       = 0x01
	MaskR1       = 0x02
	MaskCreate   = 0x10
	MaskOptions  = 0x20
	MaskL3       = 0x40
	MaskR3       = 0x80

	ByteSpecial  = 11
	MaskLogo     = 0x01
	MaskTouchpad = 0x02
)

// Output report layout (rumble).
const (
	OutputReportID  = 0x02
	OutputReportLen = 48

	ByteRumbleRight = 3
	ByteRumbleLeft  = 4
)
