package handler_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertosw/gamepad-bridge/apiclient"
	"github.com/robertosw/gamepad-bridge/apitypes"
	"github.com/robertosw/gamepad-bridge/gamepad"
	"github.com/robertosw/gamepad-bridge/internal/bridge"
	"github.com/robertosw/gamepad-bridge/internal/bus"
	"github.com/robertosw/gamepad-bridge/internal/hotplug"
	"github.com/robertosw/gamepad-bridge/internal/log"
	"github.com/robertosw/gamepad-bridge/internal/server/api"
	"github.com/robertosw/gamepad-bridge/internal/server/api/handler"
	"github.com/robertosw/gamepad-bridge/internal/session"
	bridgetest "github.com/robertosw/gamepad-bridge/internal/testing"

	_ "github.com/robertosw/gamepad-bridge/internal/registry" // Register all controller schemas
)

type testBridge struct {
	bus    *bus.Bus
	opener *bridgetest.Opener
	reg    *bridge.Registry
	events chan hotplug.Event
	addr   string
	client *apiclient.Client
}

func startTestBridge(t *testing.T) *testBridge {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := bus.New(64)
	opener := bridgetest.NewOpener()
	cfg := session.Config{
		ReadTimeout:        5 * time.Millisecond,
		ConnectBackoffMin:  time.Millisecond,
		ConnectBackoffMax:  5 * time.Millisecond,
		ConnectMaxFailures: 2,
		DecodeErrorLimit:   3,
		IOErrorLimit:       2,
		ReopenMaxFailures:  2,
	}
	reg := bridge.NewRegistry(b, opener.Open, cfg, logger, log.NewRaw(nil))

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan hotplug.Event, 16)
	regDone := make(chan struct{})
	go func() {
		defer close(regDone)
		reg.Run(ctx, events)
	}()

	srv := api.New(api.ServerConfig{Addr: "localhost:0", ConnectionTimeout: time.Second}, logger)
	r := srv.Router()
	r.Register("ping", handler.Ping("test"))
	r.Register("devices/list", handler.DevicesList(reg))
	r.Register("schemas/list", handler.SchemasList())
	r.Register("device/{id}/rumble", handler.DeviceRumble(reg))
	r.RegisterStream("subscribe", api.SubscribeHandler(b))
	require.NoError(t, srv.Start())

	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-regDone
		_ = reg.CloseAll(time.Second)
		b.Close()
	})

	addr := srv.Addr().String()
	return &testBridge{
		bus:    b,
		opener: opener,
		reg:    reg,
		events: events,
		addr:   addr,
		client: apiclient.New(addr),
	}
}

func (tb *testBridge) plug(t *testing.T, desc gamepad.Descriptor, dev *bridgetest.FakeDevice) {
	t.Helper()
	tb.opener.Add(desc.Path, dev)
	tb.events <- hotplug.Event{Type: hotplug.DeviceArrived, Device: desc}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s, err := tb.reg.Lookup(desc.ID); err == nil && s.State() == gamepad.SessionActive {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("device %s never became active", desc.ID)
}

func dualsenseDescriptor(path, serial string) gamepad.Descriptor {
	return gamepad.Descriptor{
		ID:        gamepad.NewIdentity("usb-0000:00:14.0-2/input0", 0x054c, 0x0ce6, serial),
		VendorID:  0x054c,
		ProductID: 0x0ce6,
		Path:      path,
		Serial:    serial,
		Label:     "DualSense",
	}
}

func TestPing(t *testing.T) {
	tb := startTestBridge(t)

	resp, err := tb.client.Ping()
	require.NoError(t, err)
	assert.Equal(t, "gamepad-bridge", resp.Server)
	assert.Equal(t, "test", resp.Version)
}

func TestDevicesListEmpty(t *testing.T) {
	tb := startTestBridge(t)

	resp, err := tb.client.DevicesList()
	require.NoError(t, err)
	assert.Empty(t, resp.Devices)
}

func TestDevicesList(t *testing.T) {
	tb := startTestBridge(t)
	desc := dualsenseDescriptor("/dev/hidraw3", "aa11")
	tb.plug(t, desc, bridgetest.NewFakeDevice())

	resp, err := tb.client.DevicesList()
	require.NoError(t, err)
	require.Len(t, resp.Devices, 1)

	dev := resp.Devices[0]
	assert.Equal(t, desc.ID.String(), dev.ID)
	assert.Equal(t, "054c", dev.Vendor)
	assert.Equal(t, "0ce6", dev.Product)
	assert.Equal(t, "DualSense", dev.Label)
	assert.Equal(t, "aa11", dev.Serial)
	assert.Equal(t, "active", dev.State)
}

func TestSchemasList(t *testing.T) {
	tb := startTestBridge(t)

	resp, err := tb.client.SchemasList()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, s := range resp.Schemas {
		names[s.Vendor+":"+s.Product] = true
	}
	assert.True(t, names["054c:0ce6"], "DualSense missing from schema list")
	assert.True(t, names["054c:05c4"], "DualShock 4 missing from schema list")
}

func TestRumble(t *testing.T) {
	tb := startTestBridge(t)
	desc := dualsenseDescriptor("/dev/hidraw3", "aa11")
	dev := bridgetest.NewFakeDevice()
	tb.plug(t, desc, dev)

	// The identity contains '/' and '|'; the client must escape it into a
	// single path segment and the handler unescape it back.
	resp, err := tb.client.Rumble(desc.ID.String(), 0x30, 0x60)
	require.NoError(t, err)
	assert.Equal(t, desc.ID.String(), resp.ID)

	writes := dev.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, byte(0x30), writes[0][4]) // left motor
	assert.Equal(t, byte(0x60), writes[0][3]) // right motor
}

func TestRumbleUnknownDevice(t *testing.T) {
	tb := startTestBridge(t)

	_, err := tb.client.Rumble("no|such:device|", 1, 1)
	require.Error(t, err)

	var apiErr apitypes.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestRumbleClosedSessionConflicts(t *testing.T) {
	tb := startTestBridge(t)
	desc := dualsenseDescriptor("/dev/hidraw3", "aa11")
	tb.plug(t, desc, bridgetest.NewFakeDevice())

	s, err := tb.reg.Lookup(desc.ID)
	require.NoError(t, err)
	s.Close()
	<-s.Done()

	// The closed session may briefly stay in the live set until the
	// registry reaps it; either outcome maps to an error status.
	_, err = tb.client.Rumble(desc.ID.String(), 1, 1)
	require.Error(t, err)

	var apiErr apitypes.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, []int{404, 409}, apiErr.Status)
}

func TestUnknownPath(t *testing.T) {
	tb := startTestBridge(t)

	_, err := tb.client.Ping()
	require.NoError(t, err)

	// Raw request against a path nobody registered.
	tr := apiclient.NewTransport(tb.addr)
	_, err = tr.Do("bogus/path", nil, nil)
	require.Error(t, err)

	var apiErr apitypes.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}
