package api

import (
	"encoding/json"
	"log/slog"
	"net"

	"github.com/robertosw/gamepad-bridge/apitypes"
	"github.com/robertosw/gamepad-bridge/gamepad"
	"github.com/robertosw/gamepad-bridge/internal/bus"
)

// SubscribeHandler returns the stream handler feeding one bus subscription
// to a consumer as JSON lines. The subscription is cancelled when the
// consumer disconnects, so a gone consumer stops costing queue space.
func SubscribeHandler(b *bus.Bus) StreamHandlerFunc {
	return func(conn net.Conn, _ map[string]string, logger *slog.Logger) error {
		defer conn.Close()

		sub := b.Subscribe()
		defer sub.Cancel()

		enc := json.NewEncoder(conn)
		for ev := range sub.Events() {
			if err := enc.Encode(EventToWire(ev)); err != nil {
				// Consumer went away; not a server fault.
				logger.Debug("subscriber write failed", "error", err)
				return nil
			}
		}
		return nil
	}
}

// EventToWire converts a bus event into its wire DTO.
func EventToWire(ev gamepad.Event) apitypes.Event {
	out := apitypes.Event{
		Kind:   ev.Kind.String(),
		Device: ev.Device.String(),
		Time:   ev.Time,
	}
	switch ev.Kind {
	case gamepad.EventState:
		out.Seq = ev.Seq
		out.State = &apitypes.ControllerState{
			Buttons:   uint32(ev.State.Buttons),
			LX:        ev.State.LX,
			LY:        ev.State.LY,
			RX:        ev.State.RX,
			RY:        ev.State.RY,
			LT:        ev.State.LT,
			RT:        ev.State.RT,
			CanRumble: ev.State.CanRumble,
		}
	case gamepad.EventLifecycle:
		out.Session = ev.Session.String()
		out.Reason = ev.Reason
	case gamepad.EventDropped:
		out.Dropped = ev.Dropped
	}
	return out
}
