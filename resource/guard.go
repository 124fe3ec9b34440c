package resource

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var ErrAlreadyHeld = errors.New("exclusive resource already held")

// Handle is an opaque reference to an open exclusive device.
type Handle interface {
	ID() string
	Close() error
}

// Device opens the underlying exclusive resource (e.g. the camera). At most
// one handle per session is ever open.
type Device interface {
	Open() (Handle, error)
}

// Guard manages acquisition and release of a session-scoped exclusive
// resource. Release is idempotent and never propagates device failures:
// cleanup must not be blockable by the resource itself being in a bad state.
type Guard struct {
	device Device
	handle Handle
	mu     sync.Mutex
}

// NewGuard creates a Guard over the given device.
func NewGuard(device Device) *Guard {
	return &Guard{device: device}
}

// Acquire opens the device and stores the handle. It fails fast with
// ErrAlreadyHeld rather than queuing when the feature is already engaged.
func (g *Guard) Acquire() (Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.handle != nil {
		return nil, ErrAlreadyHeld
	}

	handle, err := g.device.Open()
	if err != nil {
		return nil, err
	}
	g.handle = handle
	return handle, nil
}

// Release closes the held handle, if any. Releasing an already-released or
// never-acquired resource is a no-op. Close failures are logged and
// swallowed so logout and navigation always complete.
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.handle == nil {
		return
	}

	if err := g.handle.Close(); err != nil {
		log.Warn().Err(err).Str("handle", g.handle.ID()).Msg("exclusive resource release failed")
	}
	g.handle = nil
}

// Held reports whether the guard currently holds a handle.
func (g *Guard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handle != nil
}
