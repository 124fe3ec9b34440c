package students

import "errors"

var (
	ErrDuplicateName = errors.New("name already registered")
	ErrInvalidName   = errors.New("name must be exactly 8 characters")
	ErrNotFound      = errors.New("student not found")
)
