package cmd

import (
	"fmt"
	"log/slog"

	"github.com/robertosw/gamepad-bridge/schema"
)

// Schemas prints the vendor/product pairs this build can decode, without
// contacting a running bridge.
type Schemas struct{}

func (s *Schemas) Run(logger *slog.Logger) error {
	for _, d := range schema.Supported() {
		fmt.Printf("%04x:%04x  %s\n", d.VendorID, d.ProductID, d.Name)
	}
	return nil
}
