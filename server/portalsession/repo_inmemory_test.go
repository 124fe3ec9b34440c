package portalsession_test

import (
	"testing"
	"time"

	"github.com/beyondthebrush/portal/auth"
	fakedevice "github.com/beyondthebrush/portal/resource/devicefakes"
	"github.com/beyondthebrush/portal/server/portalsession"
	"github.com/beyondthebrush/portal/session"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepoRoundTrip(t *testing.T) {
	repo := portalsession.NewInMemoryRepo()
	sess := session.New(fakedevice.NewFakeDevice())

	require.Error(t, repo.Upsert("", sess))
	require.NoError(t, repo.Upsert("session-1", sess))

	found, err := repo.Get("session-1")
	require.NoError(t, err)
	require.Same(t, sess, found)

	_, err = repo.Get("unknown")
	require.Error(t, err)

	require.NoError(t, repo.Delete("session-1"))
	_, err = repo.Get("session-1")
	require.Error(t, err)
}

func TestInMemoryRepoExpiresIdleSessions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := portalsession.NewInMemoryRepo(
		portalsession.WithTTL(time.Hour),
		portalsession.WithNowTime(func() time.Time { return now }),
	)

	sess := session.New(fakedevice.NewFakeDevice())
	require.NoError(t, repo.Upsert("session-1", sess))

	now = now.Add(30 * time.Minute)
	_, err := repo.Get("session-1")
	require.NoError(t, err)

	// The Get above refreshed the expiry, a further 45 minutes keeps it alive.
	now = now.Add(45 * time.Minute)
	_, err = repo.Get("session-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = repo.Get("session-1")
	require.Error(t, err)
	require.Zero(t, repo.Len())
}

func TestInMemoryRepoSweepReleasesHeldResources(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := portalsession.NewInMemoryRepo(
		portalsession.WithTTL(time.Hour),
		portalsession.WithNowTime(func() time.Time { return now }),
	)

	// An orphaned session holding the camera, e.g. the loser of two
	// concurrent first-contact requests whose cookie was never sent back.
	device := fakedevice.NewFakeDevice()
	orphan := session.New(device)
	require.NoError(t, orphan.Apply(auth.Granted(auth.RoleStudent, "StudentA")))
	_, err := orphan.EnterFeature()
	require.NoError(t, err)
	require.NoError(t, repo.Upsert("orphan", orphan))

	now = now.Add(2 * time.Hour)
	require.NoError(t, repo.Upsert("session-2", session.New(fakedevice.NewFakeDevice())))

	require.Equal(t, 1, repo.Len())
	require.Zero(t, device.OpenHandles())
	require.Equal(t, session.StatusUnauthenticated, orphan.Status())
}
