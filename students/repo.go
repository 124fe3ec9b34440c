package students

import "context"

// Repo is the document-store boundary for the student roster. Name
// uniqueness is backed by the store (unique index), Insert surfaces
// violations as ErrDuplicateName.
type Repo interface {
	Insert(ctx context.Context, record *Record) error
	GetByName(ctx context.Context, name string) (*Record, error)
	GetByNameAndCode(ctx context.Context, name, code string) (*Record, error)
	CountByCode(ctx context.Context, code string) (int, error)
	List(ctx context.Context) ([]*Record, error)
	UpdateName(ctx context.Context, name, newName string) error
	Delete(ctx context.Context, name string) error
}
