package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrMissingCredentials occurs when no usable credential is presented.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials indicates login or API key failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a malformed, expired or tampered token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenSuperseded indicates a valid token issued before the last password change.
	ErrTokenSuperseded = errors.New("token superseded: password changed, please re-authenticate")
	// ErrPermissionDenied indicates an authenticated caller lacking a required flag.
	ErrPermissionDenied = errors.New("permission denied")
)
