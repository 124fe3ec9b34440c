package codes

import "context"

// Repo is the document-store boundary for access codes. Implementations must
// make ReserveUse an atomic conditional write: it is the only primitive
// coordinating concurrent registrations against a near-exhausted code.
type Repo interface {
	Insert(ctx context.Context, code *AccessCode) error
	GetByCode(ctx context.Context, code string) (*AccessCode, error)
	SetActive(ctx context.Context, code string, active bool) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]*AccessCode, error)

	// ReserveUse atomically claims one seat on an active code, failing with
	// ErrQuotaExceeded when the cap is reached and ErrNotFound when the code
	// is missing or inactive.
	ReserveUse(ctx context.Context, code string) error

	// ReleaseUse returns a previously claimed seat. Releasing on a missing
	// code or a zero counter is a no-op.
	ReleaseUse(ctx context.Context, code string) error
}
