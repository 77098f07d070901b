package api_test

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
	"github.com/robertosw/gamepad-bridge/internal/bus"
	"github.com/robertosw/gamepad-bridge/internal/server/api"
)

func startStreamServer(t *testing.T) (*bus.Bus, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := bus.New(16)

	srv := api.New(api.ServerConfig{Addr: "localhost:0", ConnectionTimeout: time.Second}, logger)
	srv.Router().RegisterStream("subscribe", api.SubscribeHandler(b))
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		srv.Close()
		b.Close()
	})
	return b, srv.Addr().String()
}

func TestSubscribeStream(t *testing.T) {
	b, addr := startStreamServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, stop, err := apiclient.New(addr).Subscribe(ctx)
	require.NoError(t, err)
	defer stop()

	// Give the stream handler time to attach its bus subscription.
	time.Sleep(50 * time.Millisecond)

	b.Publish(gamepad.Event{
		Kind:    gamepad.EventLifecycle,
		Device:  "pad-1",
		Session: gamepad.SessionActive,
		Reason:  "device open",
		Time:    time.Now(),
	})
	b.Publish(gamepad.Event{
		Kind:   gamepad.EventState,
		Device: "pad-1",
		Seq:    1,
		State:  gamepad.State{Buttons: gamepad.ButtonSouth, LX: -32768, CanRumble: true},
		Time:   time.Now(),
	})

	var got []apitypes.Event
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "stream ended early")
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("received %d of 2 events", len(got))
		}
	}

	assert.Equal(t, "lifecycle", got[0].Kind)
	assert.Equal(t, "pad-1", got[0].Device)
	assert.Equal(t, "active", got[0].Session)
	assert.Equal(t, "device open", got[0].Reason)
	assert.Nil(t, got[0].State)

	assert.Equal(t, "state", got[1].Kind)
	assert.Equal(t, uint64(1), got[1].Seq)
	require.NotNil(t, got[1].State)
	assert.Equal(t, uint32(gamepad.ButtonSouth), got[1].State.Buttons)
	assert.Equal(t, int16(-32768), got[1].State.LX)
	assert.True(t, got[1].State.CanRumble)
}

func TestSubscribeCancelDetaches(t *testing.T) {
	_, addr := startStreamServer(t)

	ctx := context.Background()
	events, stop, err := apiclient.New(addr).Subscribe(ctx)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	stop()

	// The channel drains and closes once the connection drops.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel never closed after cancel")
		}
	}
}

func TestEventToWireDropped(t *testing.T) {
	ev := gamepad.Event{Kind: gamepad.EventDropped, Dropped: 17, Time: time.Now()}
	wire := api.EventToWire(ev)
	assert.Equal(t, "dropped", wire.Kind)
	assert.Equal(t, uint64(17), wire.Dropped)
	assert.Nil(t, wire.State)
}
