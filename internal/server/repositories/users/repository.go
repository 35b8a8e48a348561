// Package users provides the credential store: persistence for user
// accounts, their password and security-answer hashes and their role.
package users

import (
	"context"

	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in ID and CreatedAt. A taken email
	// yields common.ErrDuplicateEmail.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// CreateIfAbsent inserts the user unless the email is taken and reports
	// whether a row was written.
	CreateIfAbsent(ctx context.Context, user *models.User) (bool, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// LockByID reads the user with a row lock held until the surrounding
	// transaction ends.
	LockByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	Count(ctx context.Context) (int64, error)
}
