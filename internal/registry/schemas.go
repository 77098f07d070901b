package registry

import (
	_ "github.com/robertosw/gamepad-bridge/schema/dualsense"   // Register DualSense schema
	_ "github.com/robertosw/gamepad-bridge/schema/dualshock4" // Register DualShock 4 schema
)
