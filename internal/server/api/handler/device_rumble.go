package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/robertosw/gamepad-bridge/apitypes"
	"github.com/robertosw/gamepad-bridge/gamepad"
	"github.com/robertosw/gamepad-bridge/internal/bridge"
	"github.com/robertosw/gamepad-bridge/internal/server/api"
	"github.com/robertosw/gamepad-bridge/internal/session"
	"github.com/robertosw/gamepad-bridge/schema"
)

// DeviceRumble returns a handler routing a rumble command to one device.
// The {id} path parameter is the URL-escaped device identity.
func DeviceRumble(reg *bridge.Registry) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		rawID, ok := req.Params["id"]
		if !ok || rawID == "" {
			return api.ErrBadRequest("missing device id")
		}
		id, err := url.PathUnescape(rawID)
		if err != nil {
			return api.ErrBadRequest(fmt.Sprintf("invalid device id: %v", err))
		}

		var body apitypes.RumbleRequest
		if err := json.Unmarshal([]byte(req.Payload), &body); err != nil {
			return api.ErrBadRequest(fmt.Sprintf("invalid rumble payload: %v", err))
		}

		cmd := gamepad.OutputCommand{LeftMotor: body.Left, RightMotor: body.Right}
		if err := reg.Rumble(gamepad.Identity(id), cmd); err != nil {
			switch {
			case errors.Is(err, bridge.ErrUnknownDevice):
				return api.ErrNotFound(err.Error())
			case errors.Is(err, schema.ErrUnsupportedCommand):
				return api.ErrBadRequest(err.Error())
			case errors.Is(err, session.ErrNotActive):
				return api.ErrConflict(err.Error())
			default:
				return api.ErrInternal(err.Error())
			}
		}

		out, err := json.Marshal(apitypes.RumbleResponse{ID: id})
		if err != nil {
			return api.ErrInternal(err.Error())
		}
		res.JSON = string(out)
		return nil
	}
}
