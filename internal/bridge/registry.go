// Package bridge wires the core together: the device registry tracking live
// sessions and the supervisor owning process-wide lifecycle.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robertosw/gamepad-bridge/gamepad"
	"github.com/robertosw/gamepad-bridge/internal/bus"
	"github.com/robertosw/gamepad-bridge/internal/hiddev"
	"github.com/robertosw/gamepad-bridge/internal/hotplug"
	"github.com/robertosw/gamepad-bridge/internal/log"
	"github.com/robertosw/gamepad-bridge/internal/session"
	"github.com/robertosw/gamepad-bridge/schema"
)

var (
	// ErrUnknownDevice is returned for consumer requests naming an
	// identity with no live session.
	ErrUnknownDevice = errors.New("unknown device")

	// ErrShutdownTimeout is returned when sessions fail to close within
	// the shutdown deadline and were force-released.
	ErrShutdownTimeout = errors.New("shutdown timeout")
)

// Registry tracks the set of live device sessions, one per device identity.
// The live-session map is mutated only by the Run goroutine; concurrent
// readers (API handlers, the supervisor during shutdown) take snapshots
// through the mutex.
type Registry struct {
	bus        *bus.Bus
	open       hiddev.OpenFunc
	sessionCfg session.Config
	logger     *slog.Logger
	raw        log.RawLogger

	mu       sync.Mutex
	sessions map[gamepad.Identity]*session.Session

	sessionDone chan gamepad.Identity
	// stopped is closed when Run returns so done-forwarders never block
	// on sessionDone after the registry stopped draining it.
	stopped chan struct{}
}

// NewRegistry creates a registry publishing to b and opening devices via open.
func NewRegistry(b *bus.Bus, open hiddev.OpenFunc, cfg session.Config, logger *slog.Logger, raw log.RawLogger) *Registry {
	return &Registry{
		bus:         b,
		open:        open,
		sessionCfg:  cfg,
		logger:      logger.With("component", "registry"),
		raw:         raw,
		sessions:    make(map[gamepad.Identity]*session.Session),
		sessionDone: make(chan gamepad.Identity, 16),
		stopped:     make(chan struct{}),
	}
}

// Run consumes hot-plug notifications until ctx is cancelled or the event
// channel closes. It is the only goroutine mutating the live-session set.
func (r *Registry) Run(ctx context.Context, events <-chan hotplug.Event) {
	defer close(r.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-r.sessionDone:
			r.drop(id)
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case hotplug.DeviceArrived:
				r.add(ev.Device)
			case hotplug.DeviceLeft:
				r.removeDevice(ev.Device.ID)
			}
		}
	}
}

// add starts a session for a newly arrived device. Duplicate notifications
// for an already-live identity are no-ops; unknown vendor/product pairs are
// logged and skipped without affecting the rest of the process.
func (r *Registry) add(desc gamepad.Descriptor) {
	r.mu.Lock()
	_, live := r.sessions[desc.ID]
	r.mu.Unlock()
	if live {
		r.logger.Debug("duplicate arrival for live device", "device", desc.ID)
		return
	}

	sch, err := schema.Lookup(desc.VendorID, desc.ProductID)
	if err != nil {
		r.logger.Info("ignoring device without schema",
			"vendor", fmt.Sprintf("%04x", desc.VendorID),
			"product", fmt.Sprintf("%04x", desc.ProductID),
			"label", desc.Label)
		return
	}

	s := session.New(desc, sch, r.open, r.bus, r.sessionCfg, r.logger, r.raw)
	r.mu.Lock()
	r.sessions[desc.ID] = s
	r.mu.Unlock()
	r.logger.Info("starting session", "device", desc.ID, "label", desc.Label, "schema", sch.Name)
	s.Start()

	go func(id gamepad.Identity, done <-chan struct{}) {
		<-done
		select {
		case r.sessionDone <- id:
		case <-r.stopped:
		}
	}(desc.ID, s.Done())
}

// removeDevice signals teardown for the session of a departed device. The
// session leaves the live set once it reaches the closed state.
func (r *Registry) removeDevice(id gamepad.Identity) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return
	}
	r.logger.Info("device left, closing session", "device", id)
	s.Close()
}

// drop removes a closed session from the live set.
func (r *Registry) drop(id gamepad.Identity) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		select {
		case <-s.Done():
			delete(r.sessions, id)
		default:
			// A fresh session reused the identity; keep it.
		}
	}
	r.mu.Unlock()
}

// Lookup returns the live session for an identity.
func (r *Registry) Lookup(id gamepad.Identity) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}
	return s, nil
}

// Sessions returns a snapshot of all live sessions, ordered by identity.
func (r *Registry) Sessions() []*session.Session {
	r.mu.Lock()
	out := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Identity() < out[j].Identity() })
	return out
}

// Rumble routes an output command to the session owning the identity.
func (r *Registry) Rumble(id gamepad.Identity, cmd gamepad.OutputCommand) error {
	s, err := r.Lookup(id)
	if err != nil {
		return err
	}
	return s.SendOutput(cmd)
}

// CloseAll signals every live session to close and waits up to timeout for
// all of them to finish. Sessions still open after the deadline are logged
// and abandoned rather than allowed to block shutdown.
func (r *Registry) CloseAll(timeout time.Duration) error {
	sessions := r.Sessions()
	for _, s := range sessions {
		s.Close()
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for _, s := range sessions {
		select {
		case <-s.Done():
		case <-deadline.C:
			var stuck []string
			for _, rest := range sessions {
				select {
				case <-rest.Done():
				default:
					stuck = append(stuck, rest.Identity().String())
				}
			}
			if len(stuck) > 0 {
				r.logger.Error("sessions failed to close in time, force-releasing", "devices", stuck)
				return fmt.Errorf("%w: %d sessions still open", ErrShutdownTimeout, len(stuck))
			}
			return nil
		}
	}
	return nil
}
