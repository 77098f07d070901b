package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robertosw/gamepad-bridge/apiclient"
)

// ClientFlags are shared by all subcommands that talk to a running bridge.
type ClientFlags struct {
	Addr string `help:"Bridge API address" default:"localhost:3942" env:"GAMEPAD_BRIDGE_ADDR"`
}

func (c *ClientFlags) client() *apiclient.Client { return apiclient.New(c.Addr) }

// Ping checks that a bridge is reachable.
type Ping struct {
	ClientFlags
}

func (p *Ping) Run(logger *slog.Logger) error {
	resp, err := p.client().Ping()
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", resp.Server, resp.Version)
	return nil
}

// Devices lists the controllers a running bridge currently tracks.
type Devices struct {
	ClientFlags
}

func (d *Devices) Run(logger *slog.Logger) error {
	resp, err := d.client().DevicesList()
	if err != nil {
		return err
	}
	if len(resp.Devices) == 0 {
		fmt.Println("no devices")
		return nil
	}
	for _, dev := range resp.Devices {
		fmt.Printf("%s:%s  %-10s seq=%-8d %s\n", dev.Vendor, dev.Product, dev.State, dev.Seq, dev.ID)
	}
	return nil
}

// Rumble sends a force-feedback pulse to one controller.
type Rumble struct {
	ClientFlags
	ID    string `arg:"" help:"Device identity as printed by the devices command"`
	Left  uint8  `help:"Left (low-frequency) motor strength" default:"128"`
	Right uint8  `help:"Right (high-frequency) motor strength" default:"128"`
}

func (r *Rumble) Run(logger *slog.Logger) error {
	resp, err := r.client().Rumble(r.ID, r.Left, r.Right)
	if err != nil {
		return err
	}
	fmt.Printf("rumble sent to %s\n", resp.ID)
	return nil
}

// Watch streams bridge events to stdout as JSON lines until interrupted.
type Watch struct {
	ClientFlags
}

func (w *Watch) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, cancel, err := w.client().Subscribe(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	enc := json.NewEncoder(os.Stdout)
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	return nil
}
