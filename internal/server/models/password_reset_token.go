package models

import "time"

// ResetTokenTTL is the fixed lifetime of a password reset token.
const ResetTokenTTL = 1440 * time.Minute

// PasswordResetToken is the single live reset token of a user. Only the
// SHA-256 digest of the token handed to the user is stored.
type PasswordResetToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether now is past the token's expiry.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// TokenStatus is the outcome of validating a reset token.
type TokenStatus int

const (
	TokenInvalid TokenStatus = iota
	TokenValid
	TokenExpired
)

func (s TokenStatus) String() string {
	switch s {
	case TokenValid:
		return "valid"
	case TokenExpired:
		return "expired"
	default:
		return "invalid"
	}
}
