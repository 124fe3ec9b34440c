package fakestudentrepo

import (
	"context"
	"sync"

	"github.com/beyondthebrush/portal/students"
)

var _ students.Repo = (*FakeStudentRepo)(nil)

// FakeStudentRepo is an in-memory roster for tests.
type FakeStudentRepo struct {
	records map[string]*students.Record // keyed by name
	lock    sync.RWMutex
}

func NewFakeStudentRepo() *FakeStudentRepo {
	return &FakeStudentRepo{
		records: make(map[string]*students.Record),
	}
}

func (r *FakeStudentRepo) Insert(_ context.Context, record *students.Record) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.records[record.Name]; ok {
		return students.ErrDuplicateName
	}
	stored := *record
	r.records[record.Name] = &stored
	return nil
}

func (r *FakeStudentRepo) GetByName(_ context.Context, name string) (*students.Record, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	record, ok := r.records[name]
	if !ok {
		return nil, students.ErrNotFound
	}
	found := *record
	return &found, nil
}

func (r *FakeStudentRepo) GetByNameAndCode(_ context.Context, name, code string) (*students.Record, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	record, ok := r.records[name]
	if !ok || record.AccessCode != code {
		return nil, students.ErrNotFound
	}
	found := *record
	return &found, nil
}

func (r *FakeStudentRepo) CountByCode(_ context.Context, code string) (int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	count := 0
	for _, record := range r.records {
		if record.AccessCode == code {
			count++
		}
	}
	return count, nil
}

func (r *FakeStudentRepo) List(_ context.Context) ([]*students.Record, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*students.Record, 0, len(r.records))
	for _, record := range r.records {
		found := *record
		list = append(list, &found)
	}
	return list, nil
}

func (r *FakeStudentRepo) UpdateName(_ context.Context, name, newName string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	record, ok := r.records[name]
	if !ok {
		return students.ErrNotFound
	}
	if name == newName {
		return nil
	}
	if _, ok := r.records[newName]; ok {
		return students.ErrDuplicateName
	}
	record.Name = newName
	r.records[newName] = record
	delete(r.records, name)
	return nil
}

func (r *FakeStudentRepo) Delete(_ context.Context, name string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.records[name]; !ok {
		return students.ErrNotFound
	}
	delete(r.records, name)
	return nil
}
