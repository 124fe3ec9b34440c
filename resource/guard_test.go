package resource_test

import (
	"errors"
	"testing"

	"github.com/beyondthebrush/portal/resource"
	fakedevice "github.com/beyondthebrush/portal/resource/devicefakes"
	"github.com/stretchr/testify/require"
)

func TestGuardAcquireRelease(t *testing.T) {
	device := fakedevice.NewFakeDevice()
	guard := resource.NewGuard(device)

	require.False(t, guard.Held())

	handle, err := guard.Acquire()
	require.NoError(t, err)
	require.NotEmpty(t, handle.ID())
	require.True(t, guard.Held())
	require.Equal(t, 1, device.OpenHandles())

	guard.Release()
	require.False(t, guard.Held())
	require.Zero(t, device.OpenHandles())
}

func TestGuardAcquireFailsFastWhenHeld(t *testing.T) {
	guard := resource.NewGuard(fakedevice.NewFakeDevice())

	_, err := guard.Acquire()
	require.NoError(t, err)

	_, err = guard.Acquire()
	require.ErrorIs(t, err, resource.ErrAlreadyHeld)
	require.True(t, guard.Held())
}

func TestGuardReleaseIsIdempotent(t *testing.T) {
	device := fakedevice.NewFakeDevice()
	guard := resource.NewGuard(device)

	// Releasing a never-acquired guard is a no-op.
	guard.Release()
	require.False(t, guard.Held())

	_, err := guard.Acquire()
	require.NoError(t, err)

	guard.Release()
	guard.Release()
	require.Zero(t, device.OpenHandles())
}

func TestGuardReleaseSwallowsCloseFailure(t *testing.T) {
	device := fakedevice.NewFakeDevice()
	device.CloseErr = errors.New("device wedged")
	guard := resource.NewGuard(device)

	_, err := guard.Acquire()
	require.NoError(t, err)

	// Close failure must not leave the guard holding a dead handle.
	guard.Release()
	require.False(t, guard.Held())

	_, err = guard.Acquire()
	require.NoError(t, err)
}

func TestGuardAcquirePropagatesOpenFailure(t *testing.T) {
	device := fakedevice.NewFakeDevice()
	device.OpenErr = errors.New("camera busy")
	guard := resource.NewGuard(device)

	_, err := guard.Acquire()
	require.Error(t, err)
	require.False(t, guard.Held())
}
