package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewResetToken returns a fresh random (version 4 UUID) reset token.
func NewResetToken() string {
	return uuid.NewString()
}

// HashResetToken returns the digest under which a reset token is stored.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
