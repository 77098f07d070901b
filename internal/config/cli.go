// Package config declares the command-line surface of gamepad-bridge.
package config

import (
	"github.com/robertosw/gamepad-bridge/internal/cmd"
)

// LogConfig holds the flags shared by all commands that produce output.
type LogConfig struct {
	Level   string `help:"Log level (trace|debug|info|warn|error)" default:"info" env:"GAMEPAD_BRIDGE_LOG_LEVEL"`
	File    string `help:"Also write logs to this file" env:"GAMEPAD_BRIDGE_LOG_FILE"`
	RawFile string `help:"Write hex dumps of raw HID traffic to this file" env:"GAMEPAD_BRIDGE_LOG_RAW_FILE"`
}

// CLI is the root command tree parsed by Kong.
type CLI struct {
	Log    LogConfig `embed:"" prefix:"log."`
	Config string    `help:"Path to a config file (json, yaml or toml)" env:"GAMEPAD_BRIDGE_CONFIG"`

	Bridge  cmd.Bridge         `cmd:"" default:"withargs" help:"Run the bridge daemon"`
	Schemas cmd.Schemas        `cmd:"" help:"List the controllers this build can decode"`
	Ping    cmd.Ping           `cmd:"" help:"Check that a running bridge is reachable"`
	Devices cmd.Devices        `cmd:"" help:"List controllers tracked by a running bridge"`
	Rumble  cmd.Rumble         `cmd:"" help:"Send a force-feedback pulse to one controller"`
	Watch   cmd.Watch          `cmd:"" help:"Stream bridge events to stdout"`
	Service cmd.ServiceCommand `cmd:"" help:"Manage the bridge as a system service"`
	Cfg     cmd.ConfigCommand  `cmd:"" name:"config" help:"Configuration file helpers"`
}
