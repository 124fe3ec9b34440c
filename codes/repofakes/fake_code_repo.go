package fakecoderepo

import (
	"context"
	"sync"

	"github.com/beyondthebrush/portal/codes"
)

var _ codes.Repo = (*FakeCodeRepo)(nil)

// FakeCodeRepo is an in-memory code repository for tests. ReserveUse holds
// the write lock across the check and the increment, matching the atomicity
// contract of the real store.
type FakeCodeRepo struct {
	codes map[string]*codes.AccessCode
	lock  sync.RWMutex
}

func NewFakeCodeRepo() *FakeCodeRepo {
	return &FakeCodeRepo{
		codes: make(map[string]*codes.AccessCode),
	}
}

func (r *FakeCodeRepo) Insert(_ context.Context, accessCode *codes.AccessCode) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.codes[accessCode.Code]; ok {
		return codes.ErrDuplicateCode
	}
	stored := *accessCode
	r.codes[accessCode.Code] = &stored
	return nil
}

func (r *FakeCodeRepo) GetByCode(_ context.Context, code string) (*codes.AccessCode, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	accessCode, ok := r.codes[code]
	if !ok {
		return nil, codes.ErrNotFound
	}
	found := *accessCode
	return &found, nil
}

func (r *FakeCodeRepo) SetActive(_ context.Context, code string, active bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	accessCode, ok := r.codes[code]
	if !ok {
		return codes.ErrNotFound
	}
	accessCode.IsActive = active
	return nil
}

func (r *FakeCodeRepo) Delete(_ context.Context, code string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.codes[code]; !ok {
		return codes.ErrNotFound
	}
	delete(r.codes, code)
	return nil
}

func (r *FakeCodeRepo) List(_ context.Context) ([]*codes.AccessCode, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*codes.AccessCode, 0, len(r.codes))
	for _, accessCode := range r.codes {
		found := *accessCode
		list = append(list, &found)
	}
	return list, nil
}

func (r *FakeCodeRepo) ReserveUse(_ context.Context, code string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	accessCode, ok := r.codes[code]
	if !ok || !accessCode.IsActive {
		return codes.ErrNotFound
	}
	if accessCode.MaxUses != nil && accessCode.UsedCount >= *accessCode.MaxUses {
		return codes.ErrQuotaExceeded
	}
	accessCode.UsedCount++
	return nil
}

func (r *FakeCodeRepo) ReleaseUse(_ context.Context, code string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	accessCode, ok := r.codes[code]
	if !ok || accessCode.UsedCount == 0 {
		return nil
	}
	accessCode.UsedCount--
	return nil
}
