// Package apitypes defines the wire DTOs of the gamepad-bridge TCP API.
package apitypes

import (
	"fmt"
	"time"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// Device is one live controller session.
type Device struct {
	ID      string `json:"id"`
	Vendor  string `json:"vendor"`
	Product string `json:"product"`
	Label   string `json:"label,omitempty"`
	Serial  string `json:"serial,omitempty"`
	State   string `json:"state"`
	Seq     uint64 `json:"seq"`
}

type DevicesListResponse struct {
	Devices []Device `json:"devices"`
}

// SchemaInfo is one supported vendor/product pair.
type SchemaInfo struct {
	Vendor  string `json:"vendor"`
	Product string `json:"product"`
	Name    string `json:"name"`
}

type SchemasListResponse struct {
	Schemas []SchemaInfo `json:"schemas"`
}

type RumbleRequest struct {
	Left  uint8 `json:"left"`
	Right uint8 `json:"right"`
}

type RumbleResponse struct {
	ID string `json:"id"`
}

// ControllerState is the canonical controller snapshot on the wire. Every
// field is always present; inputs the pad does not have stay neutral.
type ControllerState struct {
	Buttons   uint32 `json:"buttons"`
	LX        int16  `json:"lx"`
	LY        int16  `json:"ly"`
	RX        int16  `json:"rx"`
	RY        int16  `json:"ry"`
	LT        int16  `json:"lt"`
	RT        int16  `json:"rt"`
	CanRumble bool   `json:"canRumble"`
}

// Event is one line of the subscribe stream. Kind is "state", "lifecycle"
// or "dropped"; the matching payload fields are set, the rest omitted.
type Event struct {
	Kind    string           `json:"kind"`
	Device  string           `json:"device,omitempty"`
	Time    time.Time        `json:"time"`
	Seq     uint64           `json:"seq,omitempty"`
	State   *ControllerState `json:"state,omitempty"`
	Session string           `json:"session,omitempty"`
	Reason  string           `json:"reason,omitempty"`
	Dropped uint64           `json:"dropped,omitempty"`
}
