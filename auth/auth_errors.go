package auth

import "errors"

var (
	ErrInvalidFormat         = errors.New("invalid access code format")
	ErrInvalidOrInactiveCode = errors.New("invalid or inactive access code")
	ErrInvalidRole           = errors.New("invalid role")
	ErrQuotaExceeded         = errors.New("access code usage limit reached")
	ErrBackendUnavailable    = errors.New("backend unavailable")
)
