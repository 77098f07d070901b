package schema

import (
	"fmt"
	"sort"
	"sync"
)

type deviceID struct {
	vendor  uint16
	product uint16
}

var (
	registry   = make(map[deviceID]*Schema)
	registryMu sync.RWMutex
)

// Register makes a schema available for a vendor/product ID pair. It should
// be called from schema package init() functions; later registrations for the
// same pair win, so a custom table can shadow a built-in one.
func Register(vendorID, productID uint16, s *Schema) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[deviceID{vendorID, productID}] = s
}

// Lookup resolves the schema for a vendor/product ID pair. Unknown pairs
// return ErrUnsupportedDevice.
func Lookup(vendorID, productID uint16) (*Schema, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[deviceID{vendorID, productID}]
	if !ok {
		return nil, fmt.Errorf("%w: %04x:%04x", ErrUnsupportedDevice, vendorID, productID)
	}
	return s, nil
}

// SupportedDevice is one registered vendor/product pair.
type SupportedDevice struct {
	VendorID  uint16
	ProductID uint16
	Name      string
}

// Supported lists all registered device IDs, ordered by vendor then product.
func Supported() []SupportedDevice {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]SupportedDevice, 0, len(registry))
	for id, s := range registry {
		out = append(out, SupportedDevice{VendorID: id.vendor, ProductID: id.product, Name: s.Name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VendorID != out[j].VendorID {
			return out[i].VendorID < out[j].VendorID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}
