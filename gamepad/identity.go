package gamepad

import "fmt"

// Identity is the stable key for one physically-connected controller. It is
// derived from the bus-level physical path plus vendor/product IDs and the
// serial number when the device reports one, so the same pad keeps its
// identity across reconnect attempts while two pads of the same model on
// different ports stay distinct.
type Identity string

// NewIdentity builds an Identity from the physical attachment point
// (e.g. the HID_PHYS uevent property), vendor/product IDs and serial.
func NewIdentity(phys string, vendorID, productID uint16, serial string) Identity {
	return Identity(fmt.Sprintf("%s|%04x:%04x|%s", phys, vendorID, productID, serial))
}

func (i Identity) String() string { return string(i) }

// Descriptor describes a discovered controller. It is created at discovery
// time and immutable for the lifetime of the device session it seeds.
type Descriptor struct {
	ID        Identity
	VendorID  uint16
	ProductID uint16
	// Path is the raw I/O device node (hidraw) the session opens.
	Path   string
	Serial string
	// Label is a human-readable product name for logs and the API.
	Label string
}
