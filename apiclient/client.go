// Package apiclient speaks the gamepad-bridge TCP API. It is used by the CLI
// subcommands and by the API tests; the mock transport lets handlers be
// exercised without a listening server.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/robertosw/gamepad-bridge/apitypes"
)

// Client is the high-level bridge API client.
type Client struct {
	t *Transport
}

// New creates a client that connects to addr (host:port) for every request.
func New(addr string) *Client { return &Client{t: NewTransport(addr)} }

// NewWithConfig creates a client with explicit transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{t: NewTransportWithConfig(addr, cfg)}
}

// NewWithTransport creates a client over an existing transport, typically a
// mock transport in tests.
func NewWithTransport(t *Transport) *Client { return &Client{t: t} }

// parse decodes a single JSON response line into T.
func parse[T any](line string, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		return out, fmt.Errorf("parse response: %w", err)
	}
	return out, nil
}

// Ping checks connectivity and returns the server identity.
func (c *Client) Ping() (apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

func (c *Client) PingCtx(ctx context.Context) (apitypes.PingResponse, error) {
	return parse[apitypes.PingResponse](c.t.DoCtx(ctx, "ping", nil, nil))
}

// DevicesList returns all known controller sessions.
func (c *Client) DevicesList() (apitypes.DevicesListResponse, error) {
	return c.DevicesListCtx(context.Background())
}

func (c *Client) DevicesListCtx(ctx context.Context) (apitypes.DevicesListResponse, error) {
	return parse[apitypes.DevicesListResponse](c.t.DoCtx(ctx, "devices/list", nil, nil))
}

// SchemasList returns the vendor/product pairs the bridge can decode.
func (c *Client) SchemasList() (apitypes.SchemasListResponse, error) {
	return c.SchemasListCtx(context.Background())
}

func (c *Client) SchemasListCtx(ctx context.Context) (apitypes.SchemasListResponse, error) {
	return parse[apitypes.SchemasListResponse](c.t.DoCtx(ctx, "schemas/list", nil, nil))
}

// Rumble sends a force-feedback command to one device. The id is the full
// device identity string as reported by DevicesList.
func (c *Client) Rumble(id string, left, right uint8) (apitypes.RumbleResponse, error) {
	return c.RumbleCtx(context.Background(), id, left, right)
}

func (c *Client) RumbleCtx(ctx context.Context, id string, left, right uint8) (apitypes.RumbleResponse, error) {
	req := apitypes.RumbleRequest{Left: left, Right: right}
	return parse[apitypes.RumbleResponse](c.t.DoCtx(ctx, "device/{id}/rumble", req, map[string]string{"id": id}))
}
