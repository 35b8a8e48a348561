// Package common defines shared constants and sentinel errors used across
// the SobreRodas server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Account errors.
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmptyPassword      = errors.New("password must not be empty")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")

	// Reset token lifecycle errors.
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Session errors (invalid or malformed session cookie).
	ErrInvalidSession = errors.New("invalid session")

	// Content errors.
	ErrInvalidFileName = errors.New("invalid file name")
	ErrInvalidArticle  = errors.New("article title and content are required")
)
