// Package testing holds fakes shared by the session, bridge and API tests.
package testing

import (
	"errors"
	"sync"
	"time"

	"github.com/robertosw/gamepad-bridge/gamepad"
	"github.com/robertosw/gamepad-bridge/internal/hiddev"
)

// ErrClosed is returned by a fake device after Close.
var ErrClosed = errors.New("device closed")

// ReadStep scripts one Read call on a FakeDevice.
type ReadStep struct {
	// Data is copied into the read buffer when Err is nil.
	Data []byte
	// Err is returned instead of data. Use hiddev.ErrReadTimeout to
	// simulate a quiet device.
	Err error
}

// FakeDevice is a scripted hiddev.Device. Reads consume the script in order;
// once the script is exhausted every Read reports a timeout until the device
// is closed, so a session under test keeps polling without producing events.
type FakeDevice struct {
	mu     sync.Mutex
	script []ReadStep
	writes [][]byte
	closed bool

	// WriteErr, when set, is returned by Write.
	WriteErr error
}

// NewFakeDevice creates a device that will serve the given reads in order.
func NewFakeDevice(script ...ReadStep) *FakeDevice {
	return &FakeDevice{script: script}
}

// Feed appends more scripted reads. Safe to call while a session is reading.
func (f *FakeDevice) Feed(steps ...ReadStep) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, steps...)
}

func (f *FakeDevice) Read(p []byte, timeout time.Duration) (int, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return 0, ErrClosed
	}
	if len(f.script) == 0 {
		f.mu.Unlock()
		// Mimic a real blocking read so the reader loop does not spin.
		time.Sleep(time.Millisecond)
		return 0, hiddev.ErrReadTimeout
	}
	step := f.script[0]
	f.script = f.script[1:]
	f.mu.Unlock()

	if step.Err != nil {
		return 0, step.Err
	}
	n := copy(p, step.Data)
	return n, nil
}

func (f *FakeDevice) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, ErrClosed
	}
	if f.WriteErr != nil {
		return 0, f.WriteErr
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	f.writes = append(f.writes, buf)
	return len(p), nil
}

func (f *FakeDevice) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Writes returns a copy of everything written to the device so far.
func (f *FakeDevice) Writes() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

// Closed reports whether Close has been called.
func (f *FakeDevice) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Opener hands out fake devices keyed by device path and records open
// attempts. A path with no device configured fails to open.
type Opener struct {
	mu      sync.Mutex
	devices map[string]*FakeDevice
	opens   map[string]int
}

func NewOpener() *Opener {
	return &Opener{devices: make(map[string]*FakeDevice), opens: make(map[string]int)}
}

// Add registers the device served for desc.Path.
func (o *Opener) Add(path string, dev *FakeDevice) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.devices[path] = dev
}

// Open implements hiddev.OpenFunc.
func (o *Opener) Open(desc gamepad.Descriptor) (hiddev.Device, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens[desc.Path]++
	dev, ok := o.devices[desc.Path]
	if !ok {
		return nil, errors.New("open " + desc.Path + ": no such device")
	}
	return dev, nil
}

// OpenCount reports how many times the path was opened.
func (o *Opener) OpenCount(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens[path]
}
