package codes

import "errors"

var (
	ErrInvalidFormat = errors.New("invalid code format")
	ErrDuplicateCode = errors.New("code already exists")
	ErrNotFound      = errors.New("code not found or inactive")
	ErrRoleMismatch  = errors.New("code type does not match claimed role")
	ErrQuotaExceeded = errors.New("code usage quota exceeded")
)
