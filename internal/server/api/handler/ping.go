// Package handler contains the API route handlers.
package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/robertosw/gamepad-bridge/apitypes"
	"github.com/robertosw/gamepad-bridge/internal/server/api"
)

// Ping returns a handler reporting server identity and version.
func Ping(version string) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		out, err := json.Marshal(apitypes.PingResponse{Server: "gamepad-bridge", Version: version})
		if err != nil {
			return api.ErrInternal(err.Error())
		}
		res.JSON = string(out)
		return nil
	}
}
