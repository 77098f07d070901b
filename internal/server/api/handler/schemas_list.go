package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/robertosw/gamepad-bridge/apitypes"
	"github.com/robertosw/gamepad-bridge/internal/server/api"
	"github.com/robertosw/gamepad-bridge/schema"
)

// SchemasList returns a handler listing all registered controller schemas.
func SchemasList() api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		supported := schema.Supported()
		resp := apitypes.SchemasListResponse{Schemas: make([]apitypes.SchemaInfo, 0, len(supported))}
		for _, s := range supported {
			resp.Schemas = append(resp.Schemas, apitypes.SchemaInfo{
				Vendor:  fmt.Sprintf("%04x", s.VendorID),
				Product: fmt.Sprintf("%04x", s.ProductID),
				Name:    s.Name,
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
