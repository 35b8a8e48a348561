// Package resettokens provides the token store: at most one live password
// reset token per user, addressed by the SHA-256 digest of the token.
package resettokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
)

type Repository interface {
	// Upsert stores the token for userID, replacing the token value and
	// expiry of any existing row for that user.
	Upsert(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	// LockByTokenHash is FindByTokenHash with a row lock held until the
	// surrounding transaction ends.
	LockByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	CountByUser(ctx context.Context, userID int64) (int64, error)
}
