package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/robertosw/gamepad-bridge/internal/bus"
	"github.com/robertosw/gamepad-bridge/internal/hiddev"
	"github.com/robertosw/gamepad-bridge/internal/hotplug"
	"github.com/robertosw/gamepad-bridge/internal/log"
	"github.com/robertosw/gamepad-bridge/internal/session"
)

// Config holds the supervisor's own knobs; session policy lives in
// session.Config.
type Config struct {
	QueueSize       int           `help:"Per-subscriber event queue size" default:"64" env:"GAMEPAD_BRIDGE_QUEUE_SIZE"`
	ShutdownTimeout time.Duration `help:"How long to wait for sessions to close on shutdown" default:"5s" env:"GAMEPAD_BRIDGE_SHUTDOWN_TIMEOUT"`
}

// Supervisor owns the process-wide lifecycle: it brings up the state bus and
// the device registry, runs until cancelled, then tears everything down in
// order with a bounded wait.
type Supervisor struct {
	cfg      Config
	logger   *slog.Logger
	bus      *bus.Bus
	registry *Registry
}

// NewSupervisor assembles a supervisor with a fresh bus and registry.
func NewSupervisor(cfg Config, sessionCfg session.Config, open hiddev.OpenFunc, logger *slog.Logger, raw log.RawLogger) *Supervisor {
	b := bus.New(cfg.QueueSize)
	return &Supervisor{
		cfg:      cfg,
		logger:   logger,
		bus:      b,
		registry: NewRegistry(b, open, sessionCfg, logger, raw),
	}
}

// Bus returns the state bus consumers subscribe to.
func (s *Supervisor) Bus() *bus.Bus { return s.bus }

// Registry returns the live-session registry.
func (s *Supervisor) Registry() *Registry { return s.registry }

// Run consumes hot-plug events until ctx is cancelled, then shuts down:
// stop accepting adds, close every live session, wait (bounded), release the
// bus. Returns ErrShutdownTimeout if sessions had to be force-released.
func (s *Supervisor) Run(ctx context.Context, events <-chan hotplug.Event) error {
	intakeDone := make(chan struct{})
	go func() {
		defer close(intakeDone)
		s.registry.Run(ctx, events)
	}()

	<-ctx.Done()
	s.logger.Info("shutting down, closing sessions")
	<-intakeDone

	err := s.registry.CloseAll(s.cfg.ShutdownTimeout)
	s.bus.Close()
	if err != nil {
		return err
	}
	s.logger.Info("shutdown complete")
	return nil
}
