package fakedevice

import (
	"sync"

	"github.com/beyondthebrush/portal/resource"
	"github.com/google/uuid"
)

var _ resource.Device = (*FakeDevice)(nil)

// FakeDevice is an in-memory Device for tests and local development. It
// tracks open handles and can be configured to fail on Open or Close.
type FakeDevice struct {
	OpenErr  error
	CloseErr error

	mu        sync.Mutex
	openCount int
	closed    int
}

func NewFakeDevice() *FakeDevice {
	return &FakeDevice{}
}

func (d *FakeDevice) Open() (resource.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	d.openCount++
	return &fakeHandle{id: uuid.New().String(), device: d}, nil
}

// OpenHandles returns the number of handles opened and not yet closed.
func (d *FakeDevice) OpenHandles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openCount - d.closed
}

type fakeHandle struct {
	id     string
	device *FakeDevice
}

func (h *fakeHandle) ID() string {
	return h.id
}

func (h *fakeHandle) Close() error {
	h.device.mu.Lock()
	defer h.device.mu.Unlock()

	h.device.closed++
	return h.device.CloseErr
}
