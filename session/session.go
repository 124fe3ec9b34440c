package session

import (
	"errors"
	"sync"

	"github.com/beyondthebrush/portal/auth"
	"github.com/beyondthebrush/portal/resource"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Status is the authentication state of a session.
type Status string

const (
	StatusUnauthenticated     Status = "unauthenticated"
	StatusStudent             Status = "student"
	StatusEducator            Status = "educator"
	StatusPendingRegistration Status = "pending_registration"
)

// Session holds authentication status, role and identity for the lifetime of
// one user's interaction. Sessions are connection-scoped and never shared
// between users, but concurrent requests from the same browser do hit the
// same Session, so all state is guarded by mu. Cross-session coordination
// happens only in the document store. The embedded guard owns the exclusive
// camera handle; every transition that leaves the feature active releases it
// first, on error paths included.
type Session struct {
	mu          sync.RWMutex
	status      Status
	identity    string // student name, empty for educators
	pendingCode string // set only while pending registration
	pendingName string
	guard       *resource.Guard
}

// New creates an unauthenticated session whose exclusive resource is backed
// by the given device.
func New(device resource.Device) *Session {
	return &Session{
		status: StatusUnauthenticated,
		guard:  resource.NewGuard(device),
	}
}

// Apply transitions the session according to a verification outcome. A
// rejected outcome leaves the session exactly as it was and returns the
// rejection reason. Roles are never escalated silently: each grant comes
// from a fresh verification.
func (s *Session) Apply(outcome auth.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch outcome.Decision {
	case auth.DecisionGranted:
		s.guard.Release()
		s.status = statusForRole(outcome.Role)
		s.identity = outcome.Identity
		s.pendingCode = ""
		s.pendingName = ""
		return nil
	case auth.DecisionNeedsRegistration:
		s.guard.Release()
		s.status = StatusPendingRegistration
		s.identity = ""
		s.pendingCode = outcome.Code
		s.pendingName = outcome.Name
		return nil
	case auth.DecisionRejected:
		return outcome.Reason
	}
	return errors.New("unknown verification decision")
}

// CompleteRegistration returns the session to Unauthenticated after a
// successful registration. Registration does not itself authenticate, the
// caller must re-verify.
func (s *Session) CompleteRegistration() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guard.Release()
	s.resetLocked(StatusUnauthenticated, "")
}

// Logout releases the exclusive resource and then fully resets the session.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guard.Release()
	s.resetLocked(StatusUnauthenticated, "")
}

// NavigateAway leaves the active feature: the guard is released and the
// feature flag drops, while role and identity survive. The reset carries
// only the allow-listed subset rather than selectively clearing fields.
func (s *Session) NavigateAway() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guard.Release()
	s.resetLocked(s.status, s.identity)
}

// resetLocked rebuilds the mutable state from the allow-listed subset.
// Callers must hold mu.
func (s *Session) resetLocked(status Status, identity string) {
	s.status = status
	s.identity = identity
	s.pendingCode = ""
	s.pendingName = ""
}

// EnterFeature engages the exclusive-resource feature. It requires an
// authenticated session and fails fast with resource.ErrAlreadyHeld when
// the feature is already active. The session lock is held across the
// acquisition so a concurrent logout cannot strand a fresh handle.
func (s *Session) EnterFeature() (resource.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticatedLocked() {
		return nil, ErrNotAuthenticated
	}
	return s.guard.Acquire()
}

// Status returns the current authentication state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Identity returns the authenticated student name, empty for educators and
// unauthenticated sessions.
func (s *Session) Identity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Pending returns the (code, name) pair captured when verification
// redirected to registration.
func (s *Session) Pending() (code, name string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingCode, s.pendingName
}

// Authenticated reports whether the session holds a granted role.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked()
}

func (s *Session) authenticatedLocked() bool {
	return s.status == StatusStudent || s.status == StatusEducator
}

// ActiveFeature reports whether the exclusive-resource feature is engaged.
// It is true exactly when a handle is held.
func (s *Session) ActiveFeature() bool {
	return s.guard.Held()
}

func statusForRole(role auth.Role) Status {
	if role == auth.RoleEducator {
		return StatusEducator
	}
	return StatusStudent
}
