package codes

import (
	"context"
	"time"

	"github.com/beyondthebrush/portal/internal/utils"
	"github.com/pkg/errors"
)

// UsageCounter reports the authoritative number of student registrations
// recorded against a code. Usage is always computed from the roster, never
// from a cached counter, so display and quota checks cannot drift apart.
type UsageCounter interface {
	CountByCode(ctx context.Context, code string) (int, error)
}

// Ledger owns the AccessCode lifecycle: creation, activation toggling, usage
// counting and deletion.
type Ledger struct {
	repo    Repo
	usage   UsageCounter
	nowTime func() time.Time
}

// LedgerOption modifies a Ledger instance.
type LedgerOption func(*Ledger)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.nowTime = nowFunc
	}
}

// NewLedger initializes a Ledger with its repository dependencies.
func NewLedger(repo Repo, usage UsageCounter, options ...LedgerOption) (*Ledger, error) {
	if repo == nil {
		return nil, errors.New("[NewLedger] code repo is required")
	}
	if usage == nil {
		return nil, errors.New("[NewLedger] usage counter is required")
	}

	ledger := &Ledger{
		repo:    repo,
		usage:   usage,
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(ledger)
	}

	return ledger, nil
}

// CreateCode normalizes and persists a new access code. The code must be at
// least three alphanumeric characters and globally unique. A non-positive
// maxUses means unlimited.
func (l *Ledger) CreateCode(ctx context.Context, code string, isAdminCode bool, maxUses int, issuer string) (*AccessCode, error) {
	normalized := Normalize(code)
	if !ValidFormat(normalized) {
		return nil, ErrInvalidFormat
	}

	accessCode := &AccessCode{
		Code:        normalized,
		IsAdminCode: isAdminCode,
		IsActive:    true,
		CreatedAt:   l.nowTime(),
		Issuer:      issuer,
	}
	if maxUses > 0 {
		accessCode.MaxUses = utils.Ptr(maxUses)
	}

	if err := l.repo.Insert(ctx, accessCode); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			return nil, ErrDuplicateCode
		}
		return nil, errors.Wrap(err, "[Ledger.CreateCode] repo.Insert")
	}
	return accessCode, nil
}

// ToggleActive flips the active flag and returns the new state. Deactivation
// is forward-looking only: students already registered with the code keep
// their registrations.
func (l *Ledger) ToggleActive(ctx context.Context, code string) (bool, error) {
	normalized := Normalize(code)
	accessCode, err := l.repo.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, ErrNotFound
		}
		return false, errors.Wrap(err, "[Ledger.ToggleActive] repo.GetByCode")
	}

	newState := !accessCode.IsActive
	if err := l.repo.SetActive(ctx, normalized, newState); err != nil {
		return false, errors.Wrap(err, "[Ledger.ToggleActive] repo.SetActive")
	}
	return newState, nil
}

// DeleteCode hard-deletes a code. StudentRecords referencing it are left
// untouched, the stored code value is a historical reference only.
func (l *Ledger) DeleteCode(ctx context.Context, code string) error {
	normalized := Normalize(code)
	if err := l.repo.Delete(ctx, normalized); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "[Ledger.DeleteCode] repo.Delete")
	}
	return nil
}

// CountUsage returns the number of StudentRecords registered with the code,
// computed from the roster.
func (l *Ledger) CountUsage(ctx context.Context, code string) (int, error) {
	count, err := l.usage.CountByCode(ctx, Normalize(code))
	if err != nil {
		return 0, errors.Wrap(err, "[Ledger.CountUsage] usage.CountByCode")
	}
	return count, nil
}

// FindActive looks up a code by its normalized value. Missing or inactive
// codes return ErrNotFound. A code whose admin flag does not match
// requireAdmin returns ErrRoleMismatch, an explicit rejection rather than a
// silent fall-through to the other role.
func (l *Ledger) FindActive(ctx context.Context, code string, requireAdmin bool) (*AccessCode, error) {
	accessCode, err := l.repo.GetByCode(ctx, Normalize(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "[Ledger.FindActive] repo.GetByCode")
	}
	if !accessCode.IsActive {
		return nil, ErrNotFound
	}
	if accessCode.IsAdminCode != requireAdmin {
		return nil, ErrRoleMismatch
	}
	return accessCode, nil
}

// CodeUsage pairs a code with its authoritative registration count for the
// educator dashboard.
type CodeUsage struct {
	AccessCode
	Students int `json:"students"`
}

// ListWithUsage returns all codes with their student counts. Inactive codes
// report zero, matching the original dashboard behavior.
func (l *Ledger) ListWithUsage(ctx context.Context) ([]CodeUsage, error) {
	allCodes, err := l.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Ledger.ListWithUsage] repo.List")
	}

	usages := make([]CodeUsage, 0, len(allCodes))
	for _, accessCode := range allCodes {
		usage := CodeUsage{AccessCode: *accessCode}
		if accessCode.IsActive {
			count, err := l.usage.CountByCode(ctx, accessCode.Code)
			if err != nil {
				return nil, errors.Wrap(err, "[Ledger.ListWithUsage] usage.CountByCode")
			}
			usage.Students = count
		}
		usages = append(usages, usage)
	}
	return usages, nil
}

// ReserveUse claims one registration seat on an active code. It is the
// atomic admission primitive behind quota enforcement.
func (l *Ledger) ReserveUse(ctx context.Context, code string) error {
	return l.repo.ReserveUse(ctx, Normalize(code))
}

// ReleaseUse returns a seat claimed by ReserveUse, e.g. when the roster
// insert fails or an educator deletes a registration.
func (l *Ledger) ReleaseUse(ctx context.Context, code string) error {
	return l.repo.ReleaseUse(ctx, Normalize(code))
}
