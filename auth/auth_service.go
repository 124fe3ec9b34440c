package auth

import (
	"context"
	"time"

	"github.com/beyondthebrush/portal/codes"
	"github.com/beyondthebrush/portal/students"
	"github.com/pkg/errors"
)

// Service validates identity claims against the access code ledger and the
// student roster, and owns the registration write path.
type Service struct {
	ledger  *codes.Ledger
	roster  students.Repo
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(ledger *codes.Ledger, roster students.Repo, options ...ServiceOption) (*Service, error) {
	if ledger == nil {
		return nil, errors.New("[NewService] ledger is required")
	}
	if roster == nil {
		return nil, errors.New("[NewService] roster is required")
	}

	service := &Service{
		ledger:  ledger,
		roster:  roster,
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Verify validates a (code, role, name) triple and produces an
// authentication decision. Store failures always surface as a rejection
// with ErrBackendUnavailable, never as a grant.
func (s *Service) Verify(ctx context.Context, code string, role Role, name string) Outcome {
	if role != RoleStudent && role != RoleEducator {
		return Rejected(ErrInvalidRole)
	}

	normalized := codes.Normalize(code)
	if !codes.ValidFormat(normalized) {
		return Rejected(ErrInvalidFormat)
	}

	_, err := s.ledger.FindActive(ctx, normalized, role == RoleEducator)
	if err != nil {
		// A role/code-type mismatch is an explicit rejection, it never
		// falls through to the other role.
		if errors.Is(err, codes.ErrNotFound) || errors.Is(err, codes.ErrRoleMismatch) {
			return Rejected(ErrInvalidOrInactiveCode)
		}
		return Rejected(ErrBackendUnavailable)
	}

	// A matching active admin code is sufficient for educators, admin codes
	// are not tied to a person.
	if role == RoleEducator {
		return Granted(RoleEducator, "")
	}

	record, err := s.roster.GetByNameAndCode(ctx, name, normalized)
	if err != nil {
		if errors.Is(err, students.ErrNotFound) {
			return NeedsRegistration(normalized, name)
		}
		return Rejected(ErrBackendUnavailable)
	}
	return Granted(RoleStudent, record.Name)
}

// Register creates a StudentRecord for a (name, code) pair. The quota check
// and the insert behave as a single conditional write: a seat is reserved
// atomically on the code before the roster insert, and returned if the
// insert fails.
func (s *Service) Register(ctx context.Context, name, code string) (*students.Record, error) {
	if !students.ValidName(name) {
		return nil, students.ErrInvalidName
	}

	if _, err := s.roster.GetByName(ctx, name); err == nil {
		return nil, students.ErrDuplicateName
	} else if !errors.Is(err, students.ErrNotFound) {
		return nil, errors.Wrapf(ErrBackendUnavailable, "[Service.Register] roster.GetByName: %v", err)
	}

	normalized := codes.Normalize(code)
	accessCode, err := s.ledger.FindActive(ctx, normalized, false)
	if err != nil {
		if errors.Is(err, codes.ErrNotFound) || errors.Is(err, codes.ErrRoleMismatch) {
			return nil, ErrInvalidOrInactiveCode
		}
		return nil, errors.Wrapf(ErrBackendUnavailable, "[Service.Register] ledger.FindActive: %v", err)
	}

	if err := s.ledger.ReserveUse(ctx, normalized); err != nil {
		switch {
		case errors.Is(err, codes.ErrQuotaExceeded):
			return nil, ErrQuotaExceeded
		case errors.Is(err, codes.ErrNotFound):
			return nil, ErrInvalidOrInactiveCode
		default:
			return nil, errors.Wrapf(ErrBackendUnavailable, "[Service.Register] ledger.ReserveUse: %v", err)
		}
	}

	record := &students.Record{
		Name:         name,
		AccessCode:   normalized,
		RegisteredAt: s.nowTime(),
		Issuer:       accessCode.Issuer,
	}
	if err := s.roster.Insert(ctx, record); err != nil {
		// Return the reserved seat, the registration did not land.
		_ = s.ledger.ReleaseUse(ctx, normalized)
		if errors.Is(err, students.ErrDuplicateName) {
			return nil, students.ErrDuplicateName
		}
		return nil, errors.Wrapf(ErrBackendUnavailable, "[Service.Register] roster.Insert: %v", err)
	}
	return record, nil
}

// ListStudents returns the full roster for the educator dashboard.
func (s *Service) ListStudents(ctx context.Context) ([]*students.Record, error) {
	list, err := s.roster.List(ctx)
	if err != nil {
		return nil, errors.Wrapf(ErrBackendUnavailable, "[Service.ListStudents] roster.List: %v", err)
	}
	return list, nil
}

// RenameStudent changes a registration's name. The fixed-length policy and
// global uniqueness still apply.
func (s *Service) RenameStudent(ctx context.Context, name, newName string) error {
	if !students.ValidName(newName) {
		return students.ErrInvalidName
	}
	if err := s.roster.UpdateName(ctx, name, newName); err != nil {
		if errors.Is(err, students.ErrNotFound) || errors.Is(err, students.ErrDuplicateName) {
			return err
		}
		return errors.Wrapf(ErrBackendUnavailable, "[Service.RenameStudent] roster.UpdateName: %v", err)
	}
	return nil
}

// DeleteStudent removes a registration and returns its quota seat to the
// code it was registered with.
func (s *Service) DeleteStudent(ctx context.Context, name string) error {
	record, err := s.roster.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, students.ErrNotFound) {
			return students.ErrNotFound
		}
		return errors.Wrapf(ErrBackendUnavailable, "[Service.DeleteStudent] roster.GetByName: %v", err)
	}

	if err := s.roster.Delete(ctx, name); err != nil {
		if errors.Is(err, students.ErrNotFound) {
			return students.ErrNotFound
		}
		return errors.Wrapf(ErrBackendUnavailable, "[Service.DeleteStudent] roster.Delete: %v", err)
	}

	// The code may have been deleted since registration, the seat release is
	// then a no-op.
	_ = s.ledger.ReleaseUse(ctx, record.AccessCode)
	return nil
}
