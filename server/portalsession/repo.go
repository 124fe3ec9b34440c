package portalsession

import "github.com/beyondthebrush/portal/session"

// Repo maps connection identifiers to their session state machines. Each
// interaction gets an independent session, only the document store is shared
// between them.
type Repo interface {
	Upsert(sessionID string, sess *session.Session) error
	Get(sessionID string) (*session.Session, error)
	Delete(sessionID string) error
}
