package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
)

// ServiceCommand manages the bridge as a system service.
type ServiceCommand struct {
	Install   ServiceInstall   `cmd:"" help:"Install and start the bridge as a systemd service"`
	Uninstall ServiceUninstall `cmd:"" help:"Stop and remove the systemd service"`
}

type ServiceInstall struct{}

func (c *ServiceInstall) Run(logger *slog.Logger) error {
	return install(logger)
}

type ServiceUninstall struct{}

func (c *ServiceUninstall) Run(logger *slog.Logger) error {
	return uninstall(logger)
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Abs(exe)
}
