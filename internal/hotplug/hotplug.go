// Package hotplug turns udev netlink notifications for the hidraw subsystem
// into device arrival/departure events keyed by stable device identity.
//
// The kernel's event stream is treated as unordered and possibly duplicated;
// deduplication is the registry's job. Devices connected before the monitor
// started are seeded from an initial enumeration pass.
package hotplug

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jochenvg/go-udev"

	"github.com/robertosw/gamepad-bridge/gamepad"
)

// EventType says whether a device appeared or went away.
type EventType uint8

const (
	DeviceArrived EventType = iota
	DeviceLeft
)

// Event is one hot-plug notification. For DeviceLeft only Device.ID is
// guaranteed to be populated.
type Event struct {
	Type   EventType
	Device gamepad.Descriptor
}

// UdevSource watches the hidraw subsystem over a udev netlink monitor.
type UdevSource struct {
	logger *slog.Logger
	events chan Event

	// byNode remembers identities per device node; udev remove events for
	// a detached device may no longer expose the parent HID properties.
	byNode map[string]gamepad.Identity
}

// NewUdev creates a source.
func NewUdev(logger *slog.Logger) *UdevSource {
	return &UdevSource{
		logger: logger.With("component", "hotplug"),
		events: make(chan Event, 16),
		byNode: make(map[string]gamepad.Identity),
	}
}

// Events returns the notification stream. It is closed when Run returns.
func (u *UdevSource) Events() <-chan Event { return u.events }

// Run blocks, forwarding udev events until ctx is cancelled.
func (u *UdevSource) Run(ctx context.Context) error {
	defer close(u.events)

	udevCtx := udev.Udev{}
	m := udevCtx.NewMonitorFromNetlink("udev")
	if m == nil {
		return fmt.Errorf("create udev netlink monitor")
	}
	if err := m.FilterAddMatchSubsystem("hidraw"); err != nil {
		return fmt.Errorf("add hidraw subsystem filter: %w", err)
	}
	ch, err := m.DeviceChan(ctx)
	if err != nil {
		return fmt.Errorf("start udev monitor: %w", err)
	}
	u.logger.Info("watching hidraw subsystem for hot-plug events")

	u.seed(ctx, &udevCtx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-ch:
			if !ok {
				return nil
			}
			u.handle(ctx, d)
		}
	}
}

// seed emits arrival events for hidraw devices that were connected before
// the monitor started. It goes through the same udev property source as the
// netlink events so both paths agree on device identity.
func (u *UdevSource) seed(ctx context.Context, udevCtx *udev.Udev) {
	e := udevCtx.NewEnumerate()
	if err := e.AddMatchSubsystem("hidraw"); err != nil {
		u.logger.Warn("initial device enumeration failed", "error", err)
		return
	}
	devices, err := e.Devices()
	if err != nil {
		u.logger.Warn("initial device enumeration failed", "error", err)
		return
	}
	for _, d := range devices {
		desc, err := describe(d)
		if err != nil {
			u.logger.Debug("skipping enumerated hidraw device", "node", d.Devnode(), "error", err)
			continue
		}
		u.byNode[desc.Path] = desc.ID
		select {
		case u.events <- Event{Type: DeviceArrived, Device: desc}:
		case <-ctx.Done():
			return
		}
	}
}

func (u *UdevSource) handle(ctx context.Context, d *udev.Device) {
	node := d.Devnode()
	switch d.Action() {
	case "add":
		desc, err := describe(d)
		if err != nil {
			u.logger.Debug("ignoring hidraw add event", "node", node, "error", err)
			return
		}
		u.byNode[desc.Path] = desc.ID
		select {
		case u.events <- Event{Type: DeviceArrived, Device: desc}:
		case <-ctx.Done():
		}
	case "remove":
		id, ok := u.byNode[node]
		if !ok {
			if desc, err := describe(d); err == nil {
				id = desc.ID
				ok = true
			}
		}
		if !ok {
			u.logger.Debug("remove event for unknown node", "node", node)
			return
		}
		delete(u.byNode, node)
		select {
		case u.events <- Event{Type: DeviceLeft, Device: gamepad.Descriptor{ID: id, Path: node}}:
		case <-ctx.Done():
		}
	}
}

// describe builds a descriptor from the hidraw device's parent HID node.
// The HID_ID uevent property has the form <bustype>:<vendor>:<product>,
// e.g. "0005:0000054C:00000CE6" for a Bluetooth DualSense.
func describe(d *udev.Device) (gamepad.Descriptor, error) {
	node := d.Devnode()
	if node == "" {
		return gamepad.Descriptor{}, fmt.Errorf("hidraw device has no device node")
	}
	parent := d.ParentWithSubsystemDevtype("hid", "")
	if parent == nil {
		return gamepad.Descriptor{}, fmt.Errorf("no hid parent for %s", node)
	}
	return newDescriptor(node, d.Syspath(), hidProperties{
		ID:   parent.PropertyValue("HID_ID"),
		Uniq: parent.PropertyValue("HID_UNIQ"),
		Phys: parent.PropertyValue("HID_PHYS"),
		Name: parent.PropertyValue("HID_NAME"),
	})
}

// hidProperties are the uevent properties of a hid parent device.
type hidProperties struct {
	ID   string
	Uniq string
	Phys string
	Name string
}

// newDescriptor derives a descriptor, and with it the device identity, from
// the hid parent's uevent properties. HID_PHYS is the stable physical
// attachment point; the syspath stands in when a transport does not set it.
func newDescriptor(node, syspath string, props hidProperties) (gamepad.Descriptor, error) {
	vendor, product, err := parseHidID(props.ID)
	if err != nil {
		return gamepad.Descriptor{}, err
	}
	phys := props.Phys
	if phys == "" {
		phys = syspath
	}
	return gamepad.Descriptor{
		ID:        gamepad.NewIdentity(phys, vendor, product, props.Uniq),
		VendorID:  vendor,
		ProductID: product,
		Path:      node,
		Serial:    props.Uniq,
		Label:     props.Name,
	}, nil
}

func parseHidID(s string) (vendor, product uint16, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, fmt.Errorf("malformed HID_ID %q", s)
	}
	v, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed HID_ID vendor %q: %w", parts[1], err)
	}
	p, err := strconv.ParseUint(parts[2], 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed HID_ID product %q: %w", parts[2], err)
	}
	return uint16(v), uint16(p), nil
}
