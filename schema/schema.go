// Package schema implements the report codec: pure, table-driven decoding of
// raw HID input reports into canonical controller state, and encoding of
// output commands (rumble) into raw output reports.
//
// A Schema is plain data. Adding support for a new controller means writing a
// new table and registering it for its vendor/product IDs; the session and
// registry logic never changes.
package schema

import (
	"errors"
	"fmt"

	"github.com/robertosw/gamepad-bridge/gamepad"
)

var (
	// ErrMalformedReport is returned for reports that are shorter than the
	// schema's layout, carry the wrong report ID, or contain an
	// out-of-range enumerated value. The frame is dropped; prior state
	// stays authoritative.
	ErrMalformedReport = errors.New("malformed report")

	// ErrUnsupportedDevice is returned by Lookup for vendor/product IDs
	// with no registered schema.
	ErrUnsupportedDevice = errors.New("unsupported device")

	// ErrUnsupportedCommand is returned when encoding an output command the
	// schema has no layout for (e.g. rumble on a pad without motors).
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// AxisEncoding selects how a raw axis field maps onto the normalized signed
// range. Every encoding is deterministic and rounds toward zero, so tests can
// assert exact outputs for known input bytes.
type AxisEncoding uint8

const (
	// AxisCenteredU8 maps an unsigned byte with 0x80 neutral onto the full
	// signed range: value = (int16(raw) - 0x80) << 8. 0x80 is exactly 0.
	AxisCenteredU8 AxisEncoding = iota
	// AxisTriggerU8 maps an unsigned byte onto 0..32767:
	// value = int16(int32(raw) * 32767 / 255) (integer division truncates).
	AxisTriggerU8
	// AxisI16LE takes a little-endian int16 already in the signed range.
	AxisI16LE
)

// ButtonMap sets a canonical button when the masked bits of one report byte
// are all set.
type ButtonMap struct {
	Button gamepad.Button
	Byte   int
	Mask   byte
}

// HatMap decodes a d-pad hat nibble. The masked, shifted value enumerates the
// eight directions clockwise from north; 8 means released. Values above 8 are
// out of range and make the whole report malformed.
type HatMap struct {
	Byte  int
	Mask  byte
	Shift uint8
}

// AxisMap decodes one analog field.
type AxisMap struct {
	Axis     gamepad.Axis
	Byte     int
	Encoding AxisEncoding
}

// RumbleLayout describes the output report carrying rumble motor strengths.
type RumbleLayout struct {
	ReportLen int
	ReportID  byte
	// Preamble is copied verbatim starting at byte 1 (enable flags and the
	// like, device-specific).
	Preamble  []byte
	LeftByte  int
	RightByte int
}

// Schema is the full report layout for one controller model.
type Schema struct {
	Name string

	// ReportID is the expected first byte of every input report.
	ReportID byte
	// MinReportLen is the number of leading bytes the layout needs. Longer
	// reports carry vendor tail bytes and are accepted; shorter ones are
	// malformed.
	MinReportLen int

	Buttons []ButtonMap
	Hats    []HatMap
	Axes    []AxisMap

	// Rumble is nil for pads without force feedback.
	Rumble *RumbleLayout
}

// hat direction -> dpad buttons, clockwise from north.
var hatButtons = [8]gamepad.Button{
	gamepad.ButtonDPadUp,
	gamepad.ButtonDPadUp | gamepad.ButtonDPadRight,
	gamepad.ButtonDPadRight,
	gamepad.ButtonDPadRight | gamepad.ButtonDPadDown,
	gamepad.ButtonDPadDown,
	gamepad.ButtonDPadDown | gamepad.ButtonDPadLeft,
	gamepad.ButtonDPadLeft,
	gamepad.ButtonDPadLeft | gamepad.ButtonDPadUp,
}

const hatReleased = 8

// Decode turns one raw input report into canonical controller state. It is
// pure and stateless: identical input always yields identical output.
func (s *Schema) Decode(raw []byte) (gamepad.State, error) {
	var st gamepad.State
	if len(raw) < s.MinReportLen {
		return st, fmt.Errorf("%w: got %d bytes, layout needs %d", ErrMalformedReport, len(raw), s.MinReportLen)
	}
	if len(raw) > 0 && raw[0] != s.ReportID {
		return st, fmt.Errorf("%w: report ID 0x%02x, expected 0x%02x", ErrMalformedReport, raw[0], s.ReportID)
	}

	for _, h := range s.Hats {
		v := (raw[h.Byte] & h.Mask) >> h.Shift
		if v > hatReleased {
			return gamepad.State{}, fmt.Errorf("%w: hat value %d out of range", ErrMalformedReport, v)
		}
		if v != hatReleased {
			st.Buttons |= hatButtons[v]
		}
	}
	for _, b := range s.Buttons {
		if raw[b.Byte]&b.Mask == b.Mask {
			st.Buttons |= b.Button
		}
	}
	for _, a := range s.Axes {
		switch a.Encoding {
		case AxisCenteredU8:
			st.SetAxis(a.Axis, (int16(raw[a.Byte])-0x80)<<8)
		case AxisTriggerU8:
			st.SetAxis(a.Axis, int16(int32(raw[a.Byte])*32767/255))
		case AxisI16LE:
			if a.Byte+1 >= len(raw) {
				return gamepad.State{}, fmt.Errorf("%w: axis field at byte %d past report end", ErrMalformedReport, a.Byte)
			}
			st.SetAxis(a.Axis, int16(uint16(raw[a.Byte])|uint16(raw[a.Byte+1])<<8))
		}
	}

	st.CanRumble = s.Rumble != nil
	return st, nil
}

// EncodeRumble builds the raw output report for a rumble command.
func (s *Schema) EncodeRumble(cmd gamepad.OutputCommand) ([]byte, error) {
	if s.Rumble == nil {
		return nil, fmt.Errorf("%w: %s has no rumble output", ErrUnsupportedCommand, s.Name)
	}
	r := s.Rumble
	b := make([]byte, r.ReportLen)
	b[0] = r.ReportID
	copy(b[1:], r.Preamble)
	b[r.LeftByte] = cmd.LeftMotor
	b[r.RightByte] = cmd.RightMotor
	return b, nil
}
