package portalsession

import (
	"fmt"
	"sync"
	"time"

	"github.com/beyondthebrush/portal/session"
)

var _ Repo = (*InMemoryRepo)(nil)

// defaultTTL bounds how long an idle session survives. First-contact
// requests can mint sessions whose cookie never comes back (e.g. two
// concurrent cookie-less requests), so entries must expire rather than
// accumulate.
const defaultTTL = 12 * time.Hour

type entry struct {
	sess      *session.Session
	expiresAt time.Time
}

// InMemoryRepo is an in-memory session repository keyed by the portal
// session cookie. Entries carry a sliding expiry: Get refreshes it, Upsert
// sweeps out expired entries and logs their sessions out so a held camera
// handle is never stranded.
type InMemoryRepo struct {
	mu       sync.Mutex
	sessions map[string]entry
	ttl      time.Duration
	nowTime  func() time.Time
}

// RepoOption modifies an InMemoryRepo instance.
type RepoOption func(*InMemoryRepo)

// WithTTL overrides the idle expiry.
func WithTTL(ttl time.Duration) RepoOption {
	return func(r *InMemoryRepo) {
		r.ttl = ttl
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) RepoOption {
	return func(r *InMemoryRepo) {
		r.nowTime = nowFunc
	}
}

func NewInMemoryRepo(options ...RepoOption) *InMemoryRepo {
	repo := &InMemoryRepo{
		sessions: make(map[string]entry),
		ttl:      defaultTTL,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(repo)
	}
	return repo
}

func (r *InMemoryRepo) Upsert(sessionID string, sess *session.Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowTime()
	r.sweepLocked(now)
	r.sessions[sessionID] = entry{sess: sess, expiresAt: now.Add(r.ttl)}
	return nil
}

func (r *InMemoryRepo) Get(sessionID string) (*session.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	found, ok := r.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session not found")
	}

	now := r.nowTime()
	if !found.expiresAt.After(now) {
		found.sess.Logout()
		delete(r.sessions, sessionID)
		return nil, fmt.Errorf("session expired")
	}

	found.expiresAt = now.Add(r.ttl)
	r.sessions[sessionID] = found
	return found.sess, nil
}

func (r *InMemoryRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

// Len reports the number of live entries.
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// sweepLocked evicts expired entries, releasing any resources they still
// hold. Callers must hold mu.
func (r *InMemoryRepo) sweepLocked(now time.Time) {
	for sessionID, found := range r.sessions {
		if !found.expiresAt.After(now) {
			found.sess.Logout()
			delete(r.sessions, sessionID)
		}
	}
}
