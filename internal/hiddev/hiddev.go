// Package hiddev wraps raw HID device I/O (hidapi via sstallion/go-hid)
// behind a small interface so sessions can be exercised without hardware.
package hiddev

import (
	"errors"
	"fmt"
	"time"

	"github.com/sstallion/go-hid"

	"github.com/robertosw/gamepad-bridge/gamepad"
)

// ErrReadTimeout is returned by Device.Read when no report arrived within
// the timeout. It is not a device fault.
var ErrReadTimeout = errors.New("hid read timeout")

// Device is one open HID handle.
type Device interface {
	// Read blocks until the next input report or the timeout and returns
	// the number of bytes read. A timeout yields ErrReadTimeout.
	Read(p []byte, timeout time.Duration) (int, error)
	// Write sends an output report.
	Write(p []byte) (int, error)
	Close() error
}

// OpenFunc opens the raw I/O handle for a discovered device. Sessions hold
// one of these so tests can substitute fakes.
type OpenFunc func(desc gamepad.Descriptor) (Device, error)

// Init initializes the hidapi library. Call once before any Open.
func Init() error { return hid.Init() }

// Exit releases the hidapi library.
func Exit() error { return hid.Exit() }

// Open opens the hidraw node named by the descriptor.
func Open(desc gamepad.Descriptor) (Device, error) {
	d, err := hid.OpenPath(desc.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", desc.Path, err)
	}
	return &hidDevice{d: d}, nil
}

type hidDevice struct{ d *hid.Device }

func (h *hidDevice) Read(p []byte, timeout time.Duration) (int, error) {
	n, err := h.d.ReadWithTimeout(p, timeout)
	if err != nil {
		return n, err
	}
	if n == 0 {
		// hid_read_timeout signals a timeout with a zero-byte read.
		return 0, ErrReadTimeout
	}
	return n, nil
}

func (h *hidDevice) Write(p []byte) (int, error) { return h.d.Write(p) }

func (h *hidDevice) Close() error { return h.d.Close() }
