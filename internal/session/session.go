// Package session owns the per-device connection lifecycle: one goroutine
// per controller running the Connecting -> Active -> Degraded -> Closed state
// machine, reading raw reports, decoding them and publishing state updates.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robertosw/gamepad-bridge/gamepad"
	"github.com/robertosw/gamepad-bridge/internal/bus"
	"github.com/robertosw/gamepad-bridge/internal/hiddev"
	"github.com/robertosw/gamepad-bridge/internal/log"
	"github.com/robertosw/gamepad-bridge/schema"
)

// ErrNotActive is returned for output commands while the session is not in
// the active state.
var ErrNotActive = errors.New("session not active")

// Config holds the session policy knobs. All of them are configuration
// rather than hardcoded constants; defaults are deliberately conservative.
type Config struct {
	ReadTimeout        time.Duration `help:"Blocking read timeout for input reports" default:"250ms" env:"GAMEPAD_BRIDGE_SESSION_READ_TIMEOUT"`
	ConnectBackoffMin  time.Duration `help:"Initial delay between failed open attempts" default:"100ms" env:"GAMEPAD_BRIDGE_SESSION_CONNECT_BACKOFF_MIN"`
	ConnectBackoffMax  time.Duration `help:"Upper bound for the open retry backoff" default:"5s" env:"GAMEPAD_BRIDGE_SESSION_CONNECT_BACKOFF_MAX"`
	ConnectMaxFailures int           `help:"Consecutive open failures before the device is reported permanently removed" default:"10" env:"GAMEPAD_BRIDGE_SESSION_CONNECT_MAX_FAILURES"`
	DecodeErrorLimit   int           `help:"Consecutive decode failures before the handle is considered suspect" default:"5" env:"GAMEPAD_BRIDGE_SESSION_DECODE_ERROR_LIMIT"`
	IOErrorLimit       int           `help:"Consecutive read errors before the handle is considered suspect" default:"3" env:"GAMEPAD_BRIDGE_SESSION_IO_ERROR_LIMIT"`
	ReopenMaxFailures  int           `help:"Reopen attempts while degraded before the session closes" default:"5" env:"GAMEPAD_BRIDGE_SESSION_REOPEN_MAX_FAILURES"`
}

// Session drives one controller. It exclusively owns the device handle and
// its lifecycle record; all communication with the rest of the process goes
// through the state bus and the registry's Done notification.
type Session struct {
	desc   gamepad.Descriptor
	schema *schema.Schema
	open   hiddev.OpenFunc
	bus    *bus.Bus
	cfg    Config
	logger *slog.Logger
	raw    log.RawLogger

	seq uint64

	mu    sync.Mutex
	dev   hiddev.Device
	state gamepad.SessionState

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a session; Start actually runs it.
func New(desc gamepad.Descriptor, sch *schema.Schema, open hiddev.OpenFunc, b *bus.Bus, cfg Config, logger *slog.Logger, raw log.RawLogger) *Session {
	return &Session{
		desc:   desc,
		schema: sch,
		open:   open,
		bus:    b,
		cfg:    cfg,
		logger: logger.With("device", desc.ID, "schema", sch.Name),
		raw:    raw,
		state:  gamepad.SessionConnecting,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the session goroutine.
func (s *Session) Start() { go s.run() }

// Done is closed once the session has reached the closed state and released
// its handle. Closed is terminal; a new physical connection of the same
// identity starts a fresh session.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close signals teardown. The session finishes any in-flight report and is
// observable on Done within roughly one read-timeout interval. Idempotent.
func (s *Session) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Identity returns the device identity this session serves.
func (s *Session) Identity() gamepad.Identity { return s.desc.ID }

// Descriptor returns the immutable device descriptor.
func (s *Session) Descriptor() gamepad.Descriptor { return s.desc }

// State returns the current lifecycle state.
func (s *Session) State() gamepad.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Seq returns the last published sequence number.
func (s *Session) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// SendOutput encodes an output command with the session's schema and writes
// it to the device. Fails with ErrNotActive unless the session is active, or
// schema.ErrUnsupportedCommand if the pad has no rumble output.
func (s *Session) SendOutput(cmd gamepad.OutputCommand) error {
	data, err := s.schema.EncodeRumble(cmd)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != gamepad.SessionActive || s.dev == nil {
		return fmt.Errorf("%w: %s", ErrNotActive, s.state)
	}
	s.raw.Log(false, data)
	if _, err := s.dev.Write(data); err != nil {
		return fmt.Errorf("write output report: %w", err)
	}
	return nil
}

func (s *Session) run() {
	defer close(s.done)
	defer s.release()

	s.announce(gamepad.SessionConnecting, "opening device")
	if !s.connect(s.cfg.ConnectMaxFailures) {
		s.transition(gamepad.SessionClosed, "device could not be opened")
		return
	}
	s.transition(gamepad.SessionActive, "device open")

	for {
		reason, recoverable := s.active()
		if !recoverable {
			s.transition(gamepad.SessionClosed, reason)
			return
		}
		s.transition(gamepad.SessionDegraded, reason)
		if !s.connect(s.cfg.ReopenMaxFailures) {
			s.transition(gamepad.SessionClosed, "device could not be reopened")
			return
		}
		s.transition(gamepad.SessionActive, "device reopened")
	}
}

// connect tries to (re)open the device handle with exponential backoff,
// giving up after maxFailures consecutive failures or when the session is
// told to close.
func (s *Session) connect(maxFailures int) bool {
	s.release()
	delay := s.cfg.ConnectBackoffMin
	for failures := 0; failures < maxFailures; failures++ {
		select {
		case <-s.stop:
			return false
		default:
		}
		dev, err := s.open(s.desc)
		if err == nil {
			s.mu.Lock()
			s.dev = dev
			s.mu.Unlock()
			return true
		}
		s.logger.Warn("open attempt failed", "attempt", failures+1, "error", err)
		select {
		case <-s.stop:
			return false
		case <-time.After(delay):
		}
		delay *= 2
		if delay > s.cfg.ConnectBackoffMax {
			delay = s.cfg.ConnectBackoffMax
		}
	}
	return false
}

// active runs the read loop. It returns the reason the loop ended and
// whether the session should try to recover (degraded) or close.
func (s *Session) active() (reason string, recoverable bool) {
	s.mu.Lock()
	dev := s.dev
	s.mu.Unlock()

	buf := make([]byte, 256)
	decodeErrs, ioErrs := 0, 0
	for {
		select {
		case <-s.stop:
			return "session closed", false
		default:
		}

		n, err := dev.Read(buf, s.cfg.ReadTimeout)
		if errors.Is(err, hiddev.ErrReadTimeout) {
			continue
		}
		if err != nil {
			ioErrs++
			s.logger.Warn("read failed", "consecutive", ioErrs, "error", err)
			if ioErrs >= s.cfg.IOErrorLimit {
				return "repeated read errors", true
			}
			continue
		}
		ioErrs = 0

		report := buf[:n]
		s.raw.Log(true, report)
		st, err := s.schema.Decode(report)
		if err != nil {
			// Drop the frame; previous state stays authoritative.
			decodeErrs++
			s.logger.Warn("dropping malformed report", "consecutive", decodeErrs, "error", err)
			if decodeErrs >= s.cfg.DecodeErrorLimit {
				return "repeated decode errors", true
			}
			continue
		}
		decodeErrs = 0
		s.publish(st)
	}
}

func (s *Session) publish(st gamepad.State) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()
	s.bus.Publish(gamepad.Event{
		Kind:   gamepad.EventState,
		Device: s.desc.ID,
		Seq:    seq,
		State:  st,
		Time:   time.Now(),
	})
}

// transition moves to a new lifecycle state and announces it on the bus.
func (s *Session) transition(state gamepad.SessionState, reason string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.announce(state, reason)
}

func (s *Session) announce(state gamepad.SessionState, reason string) {
	s.logger.Info("session state", "state", state, "reason", reason)
	s.bus.Publish(gamepad.Event{
		Kind:    gamepad.EventLifecycle,
		Device:  s.desc.ID,
		Session: state,
		Reason:  reason,
		Time:    time.Now(),
	})
}

func (s *Session) release() {
	s.mu.Lock()
	dev := s.dev
	s.dev = nil
	s.mu.Unlock()
	if dev != nil {
		if err := dev.Close(); err != nil {
			s.logger.Warn("closing device handle failed", "error", err)
		}
	}
}
