package gamepad_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/robertosw/gamepad-bridge/gamepad"
)

func TestIdentity(t *testing.T) {
	id := gamepad.NewIdentity("usb-0000:00:14.0-2/input0", 0x054c, 0x0ce6, "a1b2c3")
	assert.Equal(t, gamepad.Identity("usb-0000:00:14.0-2/input0|054c:0ce6|a1b2c3"), id)

	// Same model on a different port stays distinct.
	other := gamepad.NewIdentity("usb-0000:00:14.0-4/input0", 0x054c, 0x0ce6, "a1b2c3")
	assert.NotEqual(t, id, other)

	// Missing serial still yields a stable identity.
	noSerial := gamepad.NewIdentity("usb-0000:00:14.0-2/input0", 0x054c, 0x0ce6, "")
	assert.Equal(t, noSerial, gamepad.NewIdentity("usb-0000:00:14.0-2/input0", 0x054c, 0x0ce6, ""))
}

func TestStatePressed(t *testing.T) {
	st := gamepad.State{Buttons: gamepad.ButtonSouth | gamepad.ButtonStart}
	assert.True(t, st.Pressed(gamepad.ButtonSouth))
	assert.True(t, st.Pressed(gamepad.ButtonSouth|gamepad.ButtonStart))
	assert.False(t, st.Pressed(gamepad.ButtonNorth))
	assert.False(t, st.Pressed(gamepad.ButtonSouth|gamepad.ButtonNorth))
}

func TestStateAxes(t *testing.T) {
	var st gamepad.State
	axes := []gamepad.Axis{
		gamepad.AxisLeftX, gamepad.AxisLeftY,
		gamepad.AxisRightX, gamepad.AxisRightY,
		gamepad.AxisLeftTrigger, gamepad.AxisRightTrigger,
	}
	for i, a := range axes {
		st.SetAxis(a, int16(i+1))
	}
	for i, a := range axes {
		assert.Equal(t, int16(i+1), st.AxisValue(a))
	}
}

func TestSessionStateStrings(t *testing.T) {
	assert.Equal(t, "connecting", gamepad.SessionConnecting.String())
	assert.Equal(t, "active", gamepad.SessionActive.String())
	assert.Equal(t, "degraded", gamepad.SessionDegraded.String())
	assert.Equal(t, "closed", gamepad.SessionClosed.String())

	assert.Equal(t, "state", gamepad.EventState.String())
	assert.Equal(t, "lifecycle", gamepad.EventLifecycle.String())
	assert.Equal(t, "dropped", gamepad.EventDropped.String())
}
