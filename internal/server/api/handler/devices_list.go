package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/robertosw/gamepad-bridge/apitypes"
	"github.com/robertosw/gamepad-bridge/internal/bridge"
	"github.com/robertosw/gamepad-bridge/internal/server/api"
)

// DevicesList returns a handler listing all live controller sessions.
func DevicesList(reg *bridge.Registry) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		sessions := reg.Sessions()
		resp := apitypes.DevicesListResponse{Devices: make([]apitypes.Device, 0, len(sessions))}
		for _, s := range sessions {
			desc := s.Descriptor()
			resp.Devices = append(resp.Devices, apitypes.Device{
				ID:      desc.ID.String(),
				Vendor:  fmt.Sprintf("%04x", desc.VendorID),
				Product: fmt.Sprintf("%04x", desc.ProductID),
				Label:   desc.Label,
				Serial:  desc.Serial,
				State:   s.State().String(),
				Seq:     s.Seq(),
			})
		}
		out, err := json.Marshal(resp)
		if err != nil {
			return api.ErrInternal(err.Error())
		}
		res.JSON = string(out)
		return nil
	}
}
