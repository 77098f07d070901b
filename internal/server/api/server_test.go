package api_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertosw/gamepad-bridge/apiclient"
	"github.com/robertosw/gamepad-bridge/gamepad"
	"github.com/robertosw/gamepad-bridge/internal/bus"
	"github.com/robertosw/gamepad-bridge/internal/server/api"
)

func startPlainServer(t *testing.T, timeout time.Duration) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := api.New(api.ServerConfig{Addr: "localhost:0", ConnectionTimeout: timeout}, logger)
	srv.Router().Register("ping", func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		res.JSON = `{"ok":true}`
		return nil
	})
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Close)
	return srv.Addr().String()
}

func TestIdleConnectionTimesOut(t *testing.T) {
	addr := startPlainServer(t, 100*time.Millisecond)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	// Idle well past the connection timeout before sending anything.
	time.Sleep(300 * time.Millisecond)

	_, _ = conn.Write([]byte("ping\x00"))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	data, _ := io.ReadAll(conn)
	assert.Empty(t, data, "idle connection was served after the timeout")
}

func TestPromptRequestWithinTimeout(t *testing.T) {
	addr := startPlainServer(t, time.Second)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("ping\x00"))
	require.NoError(t, err)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	data, _ := io.ReadAll(conn)
	assert.Equal(t, "{\"ok\":true}\n", string(data))
}

func TestStreamOutlivesConnectionTimeout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := bus.New(16)

	srv := api.New(api.ServerConfig{Addr: "localhost:0", ConnectionTimeout: 100 * time.Millisecond}, logger)
	srv.Router().RegisterStream("subscribe", api.SubscribeHandler(b))
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		srv.Close()
		b.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, stop, err := apiclient.New(srv.Addr().String()).Subscribe(ctx)
	require.NoError(t, err)
	defer stop()

	// Publish only after the request deadline would have fired.
	time.Sleep(300 * time.Millisecond)
	b.Publish(gamepad.Event{
		Kind:    gamepad.EventLifecycle,
		Device:  "pad-1",
		Session: gamepad.SessionActive,
		Time:    time.Now(),
	})

	select {
	case ev, ok := <-events:
		require.True(t, ok, "stream closed by the request deadline")
		assert.Equal(t, "lifecycle", ev.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received on long-lived stream")
	}
}
