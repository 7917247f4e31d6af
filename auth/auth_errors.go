package auth

import "errors"

var (
	ErrNoCredentials      = errors.New("no credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleForbidden      = errors.New("role forbidden")
	ErrStoreUnavailable   = errors.New("store unavailable")
)
