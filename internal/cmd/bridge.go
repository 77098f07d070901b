package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robertosw/gamepad-bridge/internal/bridge"
	"github.com/robertosw/gamepad-bridge/internal/hiddev"
	"github.com/robertosw/gamepad-bridge/internal/hotplug"
	"github.com/robertosw/gamepad-bridge/internal/log"
	"github.com/robertosw/gamepad-bridge/internal/server/api"
	"github.com/robertosw/gamepad-bridge/internal/server/api/handler"
	"github.com/robertosw/gamepad-bridge/internal/session"
)

// Version is the bridge release string reported by the ping endpoint.
// Overridden at build time via -ldflags.
var Version = "dev"

// Bridge runs the daemon: watch for controllers, decode their input reports
// and serve the state over the TCP API.
type Bridge struct {
	ApiServerConfig api.ServerConfig `embed:"" prefix:"api."`
	SessionConfig   session.Config   `embed:"" prefix:"session."`
	BridgeConfig    bridge.Config    `embed:"" prefix:"bridge."`
}

// Run is called by Kong when the bridge command is executed.
func (b *Bridge) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return b.StartBridge(ctx, logger, rawLogger)
}

// StartBridge wires the device stack to the API server and blocks until ctx
// is cancelled or a fatal error occurs.
func (b *Bridge) StartBridge(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	if err := hiddev.Init(); err != nil {
		return fmt.Errorf("init hidapi: %w", err)
	}
	defer func() { _ = hiddev.Exit() }()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sup := bridge.NewSupervisor(b.BridgeConfig, b.SessionConfig, hiddev.Open, logger, rawLogger)
	src := hotplug.NewUdev(logger)

	apiSrv := api.New(b.ApiServerConfig, logger)
	r := apiSrv.Router()
	r.Register("ping", handler.Ping(Version))
	r.Register("devices/list", handler.DevicesList(sup.Registry()))
	r.Register("schemas/list", handler.SchemasList())
	r.Register("device/{id}/rumble", handler.DeviceRumble(sup.Registry()))
	r.RegisterStream("subscribe", api.SubscribeHandler(sup.Bus()))

	if err := apiSrv.Start(); err != nil {
		return fmt.Errorf("start API server: %w", err)
	}
	defer apiSrv.Close()
	logger.Info("gamepad bridge running", "api", apiSrv.Addr().String(), "version", Version)

	hotplugErr := make(chan error, 1)
	go func() { hotplugErr <- src.Run(runCtx) }()

	supErr := make(chan error, 1)
	go func() { supErr <- sup.Run(runCtx, src.Events()) }()

	select {
	case err := <-hotplugErr:
		cancel()
		supShutdown := <-supErr
		if err != nil {
			return fmt.Errorf("hot-plug monitor: %w", err)
		}
		return supShutdown
	case err := <-supErr:
		cancel()
		<-hotplugErr
		return err
	}
}
