package auth_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/beyondthebrush/portal/auth"
	"github.com/beyondthebrush/portal/codes"
	fakecoderepo "github.com/beyondthebrush/portal/codes/repofakes"
	"github.com/beyondthebrush/portal/students"
	fakestudentrepo "github.com/beyondthebrush/portal/students/repofakes"
	"github.com/stretchr/testify/require"
)

const (
	testStudentCode = "ABC123"
	testAdminCode   = "ADMIN99"
	testStudentName = "StudentA"
	testIssuer      = "educator-1"
)

type testFixture struct {
	codeRepo    *fakecoderepo.FakeCodeRepo
	studentRepo *fakestudentrepo.FakeStudentRepo
	ledger      *codes.Ledger
	service     *auth.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	cr := fakecoderepo.NewFakeCodeRepo()
	sr := fakestudentrepo.NewFakeStudentRepo()

	ledger, err := codes.NewLedger(cr, sr)
	require.NoError(t, err)

	service, err := auth.NewService(ledger, sr)
	require.NoError(t, err)

	return &testFixture{
		codeRepo:    cr,
		studentRepo: sr,
		ledger:      ledger,
		service:     service,
	}
}

func (f *testFixture) createCode(t *testing.T, code string, isAdmin bool, maxUses int) {
	t.Helper()
	_, err := f.ledger.CreateCode(context.Background(), code, isAdmin, maxUses, testIssuer)
	require.NoError(t, err)
}

func TestVerifyEducatorWithAdminCode(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testAdminCode, true, 0)

	outcome := f.service.Verify(context.Background(), testAdminCode, auth.RoleEducator, "")
	require.Equal(t, auth.DecisionGranted, outcome.Decision)
	require.Equal(t, auth.RoleEducator, outcome.Role)
	require.Empty(t, outcome.Identity)
}

func TestVerifyNormalizesCode(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testAdminCode, true, 0)

	outcome := f.service.Verify(context.Background(), "  admin99 ", auth.RoleEducator, "")
	require.Equal(t, auth.DecisionGranted, outcome.Decision)
}

func TestVerifyRoleMismatchIsRejectedBothWays(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testAdminCode, true, 0)
	f.createCode(t, testStudentCode, false, 0)

	// Student presenting an admin code.
	outcome := f.service.Verify(context.Background(), testAdminCode, auth.RoleStudent, testStudentName)
	require.Equal(t, auth.DecisionRejected, outcome.Decision)
	require.ErrorIs(t, outcome.Reason, auth.ErrInvalidOrInactiveCode)

	// Educator presenting a student code.
	outcome = f.service.Verify(context.Background(), testStudentCode, auth.RoleEducator, "")
	require.Equal(t, auth.DecisionRejected, outcome.Decision)
	require.ErrorIs(t, outcome.Reason, auth.ErrInvalidOrInactiveCode)
}

func TestVerifyUnknownCode(t *testing.T) {
	f := setupTestFixture(t)

	outcome := f.service.Verify(context.Background(), "ZZZ999", auth.RoleStudent, "NewUser1")
	require.Equal(t, auth.DecisionRejected, outcome.Decision)
	require.ErrorIs(t, outcome.Reason, auth.ErrInvalidOrInactiveCode)
}

func TestVerifyMalformedCode(t *testing.T) {
	f := setupTestFixture(t)

	for _, code := range []string{"", "AB", "AB-123", "C0DE!"} {
		outcome := f.service.Verify(context.Background(), code, auth.RoleStudent, testStudentName)
		require.Equal(t, auth.DecisionRejected, outcome.Decision, "code %q", code)
		require.ErrorIs(t, outcome.Reason, auth.ErrInvalidFormat, "code %q", code)
	}
}

func TestVerifyInvalidRole(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 0)

	outcome := f.service.Verify(context.Background(), testStudentCode, auth.Role("admin"), "")
	require.Equal(t, auth.DecisionRejected, outcome.Decision)
	require.ErrorIs(t, outcome.Reason, auth.ErrInvalidRole)
}

func TestVerifyUnregisteredStudentNeedsRegistration(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 0)

	outcome := f.service.Verify(context.Background(), testStudentCode, auth.RoleStudent, "UnknownX")
	require.Equal(t, auth.DecisionNeedsRegistration, outcome.Decision)
	require.Equal(t, testStudentCode, outcome.Code)
	require.Equal(t, "UnknownX", outcome.Name)
}

func TestRegisterThenVerify(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 0)

	record, err := f.service.Register(context.Background(), testStudentName, testStudentCode)
	require.NoError(t, err)
	require.Equal(t, testStudentName, record.Name)
	require.Equal(t, testStudentCode, record.AccessCode)
	require.Equal(t, testIssuer, record.Issuer)

	outcome := f.service.Verify(context.Background(), testStudentCode, auth.RoleStudent, testStudentName)
	require.Equal(t, auth.DecisionGranted, outcome.Decision)
	require.Equal(t, auth.RoleStudent, outcome.Role)
	require.Equal(t, testStudentName, outcome.Identity)
}

func TestVerifyExistingNameWithDifferentCode(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 0)
	f.createCode(t, "XYZ789", false, 0)

	_, err := f.service.Register(context.Background(), testStudentName, testStudentCode)
	require.NoError(t, err)

	// The roster lookup is by exact (name, code) pair: a different code for
	// the same name is an independent logical identity, not a merge.
	outcome := f.service.Verify(context.Background(), "XYZ789", auth.RoleStudent, testStudentName)
	require.Equal(t, auth.DecisionNeedsRegistration, outcome.Decision)
}

func TestRegisterNamePolicy(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 0)

	for _, name := range []string{"", "short", "WayTooLongName"} {
		_, err := f.service.Register(context.Background(), name, testStudentCode)
		require.ErrorIs(t, err, students.ErrInvalidName, "name %q", name)
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 0)
	f.createCode(t, "XYZ789", false, 0)

	_, err := f.service.Register(context.Background(), testStudentName, testStudentCode)
	require.NoError(t, err)

	_, err = f.service.Register(context.Background(), testStudentName, testStudentCode)
	require.ErrorIs(t, err, students.ErrDuplicateName)

	// The name is unique globally, registering it under another code is
	// still a duplicate.
	_, err = f.service.Register(context.Background(), testStudentName, "XYZ789")
	require.ErrorIs(t, err, students.ErrDuplicateName)
}

func TestRegisterInvalidOrInactiveCode(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 0)
	f.createCode(t, testAdminCode, true, 0)

	_, err := f.service.Register(context.Background(), testStudentName, "NOPE01")
	require.ErrorIs(t, err, auth.ErrInvalidOrInactiveCode)

	// Admin codes never admit registrations.
	_, err = f.service.Register(context.Background(), testStudentName, testAdminCode)
	require.ErrorIs(t, err, auth.ErrInvalidOrInactiveCode)

	_, err = f.ledger.ToggleActive(context.Background(), testStudentCode)
	require.NoError(t, err)
	_, err = f.service.Register(context.Background(), testStudentName, testStudentCode)
	require.ErrorIs(t, err, auth.ErrInvalidOrInactiveCode)
}

func TestRegisterQuotaExceeded(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 1)

	_, err := f.service.Register(context.Background(), testStudentName, testStudentCode)
	require.NoError(t, err)

	_, err = f.service.Register(context.Background(), "StudentB", testStudentCode)
	require.ErrorIs(t, err, auth.ErrQuotaExceeded)

	count, err := f.ledger.CountUsage(context.Background(), testStudentCode)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestConcurrentRegistrationNeverOvershootsQuota(t *testing.T) {
	const maxUses = 3
	const attempts = 40

	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, maxUses)

	names := make([]string, attempts)
	for i := range names {
		names[i] = fmt.Sprintf("Studen%02d", i)
	}

	var wg sync.WaitGroup
	successes := make(chan string, attempts)
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if _, err := f.service.Register(context.Background(), name, testStudentCode); err == nil {
				successes <- name
			}
		}(name)
	}
	wg.Wait()
	close(successes)

	granted := 0
	for range successes {
		granted++
	}
	require.Equal(t, maxUses, granted)

	count, err := f.ledger.CountUsage(context.Background(), testStudentCode)
	require.NoError(t, err)
	require.Equal(t, maxUses, count)
}

func TestDeactivationDoesNotTouchExistingRegistrations(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 0)

	_, err := f.service.Register(context.Background(), testStudentName, testStudentCode)
	require.NoError(t, err)

	active, err := f.ledger.ToggleActive(context.Background(), testStudentCode)
	require.NoError(t, err)
	require.False(t, active)

	record, err := f.studentRepo.GetByNameAndCode(context.Background(), testStudentName, testStudentCode)
	require.NoError(t, err)
	require.Equal(t, testStudentCode, record.AccessCode)

	count, err := f.ledger.CountUsage(context.Background(), testStudentCode)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestDeleteStudentFreesQuotaSeat(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 1)

	_, err := f.service.Register(context.Background(), testStudentName, testStudentCode)
	require.NoError(t, err)

	_, err = f.service.Register(context.Background(), "StudentB", testStudentCode)
	require.ErrorIs(t, err, auth.ErrQuotaExceeded)

	require.NoError(t, f.service.DeleteStudent(context.Background(), testStudentName))

	_, err = f.service.Register(context.Background(), "StudentB", testStudentCode)
	require.NoError(t, err)
}

func TestRenameStudent(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 0)

	_, err := f.service.Register(context.Background(), testStudentName, testStudentCode)
	require.NoError(t, err)

	require.ErrorIs(t, f.service.RenameStudent(context.Background(), testStudentName, "bad"), students.ErrInvalidName)
	require.NoError(t, f.service.RenameStudent(context.Background(), testStudentName, "StudentZ"))

	outcome := f.service.Verify(context.Background(), testStudentCode, auth.RoleStudent, "StudentZ")
	require.Equal(t, auth.DecisionGranted, outcome.Decision)
}

func TestRegisterStampsRegistrationTime(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 0)

	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	service, err := auth.NewService(f.ledger, f.studentRepo, auth.WithNowTime(func() time.Time { return fixed }))
	require.NoError(t, err)

	record, err := service.Register(context.Background(), testStudentName, testStudentCode)
	require.NoError(t, err)
	require.Equal(t, fixed, record.RegisteredAt)
}

func TestVerifyBackendFailureNeverGrants(t *testing.T) {
	f := setupTestFixture(t)
	f.createCode(t, testStudentCode, false, 0)

	ledger, err := codes.NewLedger(failingCodeRepo{}, f.studentRepo)
	require.NoError(t, err)
	service, err := auth.NewService(ledger, f.studentRepo)
	require.NoError(t, err)

	outcome := service.Verify(context.Background(), testStudentCode, auth.RoleStudent, testStudentName)
	require.Equal(t, auth.DecisionRejected, outcome.Decision)
	require.ErrorIs(t, outcome.Reason, auth.ErrBackendUnavailable)
}

// failingCodeRepo simulates an unreachable document store.
type failingCodeRepo struct{}

var errStoreDown = context.DeadlineExceeded

func (failingCodeRepo) Insert(context.Context, *codes.AccessCode) error { return errStoreDown }
func (failingCodeRepo) GetByCode(context.Context, string) (*codes.AccessCode, error) {
	return nil, errStoreDown
}
func (failingCodeRepo) SetActive(context.Context, string, bool) error { return errStoreDown }
func (failingCodeRepo) Delete(context.Context, string) error          { return errStoreDown }
func (failingCodeRepo) List(context.Context) ([]*codes.AccessCode, error) {
	return nil, errStoreDown
}
func (failingCodeRepo) ReserveUse(context.Context, string) error { return errStoreDown }
func (failingCodeRepo) ReleaseUse(context.Context, string) error { return errStoreDown }
