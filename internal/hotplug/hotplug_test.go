package hotplug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertosw/gamepad-bridge/gamepad"
)

func TestParseHidID(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantVendor  uint16
		wantProduct uint16
		wantErr     bool
	}{
		{name: "bluetooth dualsense", in: "0005:0000054C:00000CE6", wantVendor: 0x054c, wantProduct: 0x0ce6},
		{name: "usb dualshock4", in: "0003:0000054C:000005C4", wantVendor: 0x054c, wantProduct: 0x05c4},
		{name: "lowercase", in: "0003:0000054c:000009cc", wantVendor: 0x054c, wantProduct: 0x09cc},
		{name: "empty", in: "", wantErr: true},
		{name: "too few fields", in: "0003:054C", wantErr: true},
		{name: "garbage vendor", in: "0003:zzzz:0001", wantErr: true},
		{name: "garbage product", in: "0003:054C:board", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vendor, product, err := parseHidID(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantVendor, vendor)
			assert.Equal(t, tc.wantProduct, product)
		})
	}
}

func TestNewDescriptor(t *testing.T) {
	props := hidProperties{
		ID:   "0003:0000054C:00000CE6",
		Uniq: "a1:b2:c3:d4:e5:f6",
		Phys: "usb-0000:00:14.0-2/input0",
		Name: "DualSense Wireless Controller",
	}

	desc, err := newDescriptor("/dev/hidraw3", "/sys/devices/hidraw3", props)
	require.NoError(t, err)
	assert.Equal(t, gamepad.Identity("usb-0000:00:14.0-2/input0|054c:0ce6|a1:b2:c3:d4:e5:f6"), desc.ID)
	assert.Equal(t, uint16(0x054c), desc.VendorID)
	assert.Equal(t, uint16(0x0ce6), desc.ProductID)
	assert.Equal(t, "/dev/hidraw3", desc.Path)
	assert.Equal(t, "DualSense Wireless Controller", desc.Label)

	// The hidraw node index must never leak into the identity: indices are
	// reused across replugs and differ between discovery passes.
	renumbered, err := newDescriptor("/dev/hidraw7", "/sys/devices/hidraw7", props)
	require.NoError(t, err)
	assert.Equal(t, desc.ID, renumbered.ID)
	assert.Equal(t, "/dev/hidraw7", renumbered.Path)
}

func TestNewDescriptorPhysFallback(t *testing.T) {
	props := hidProperties{ID: "0005:0000054C:000009CC"}

	desc, err := newDescriptor("/dev/hidraw0", "/sys/devices/virtual/misc/uhid/0005:054C:09CC.0007", props)
	require.NoError(t, err)
	assert.Equal(t, gamepad.Identity("/sys/devices/virtual/misc/uhid/0005:054C:09CC.0007|054c:09cc|"), desc.ID)
}

func TestNewDescriptorMalformedHidID(t *testing.T) {
	_, err := newDescriptor("/dev/hidraw0", "/sys/devices/hidraw0", hidProperties{ID: "garbage"})
	assert.Error(t, err)
}
