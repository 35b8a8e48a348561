package services

import (
	"context"

	"github.com/dmitrijs2005/sobrerodas/internal/logging"
)

// AdminAccount is the administrator created on first start.
type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

// Bootstrap seeds a fresh database. Every step is keyed on existing state,
// so running it on each start is safe.
type Bootstrap struct {
	users    *UserService
	articles *ArticleService
	admin    AdminAccount
	logger   logging.Logger
}

func NewBootstrap(users *UserService, articles *ArticleService, admin AdminAccount, logger logging.Logger) *Bootstrap {
	return &Bootstrap{users: users, articles: articles, admin: admin, logger: logger.With("module", "bootstrap")}
}

func (b *Bootstrap) Run(ctx context.Context) error {
	created, err := b.users.EnsureAdmin(ctx, b.admin.Name, b.admin.Email, b.admin.Password)
	if err != nil {
		return err
	}
	if created {
		b.logger.Info(ctx, "admin account created", "email", b.admin.Email)
	}

	if b.articles == nil {
		return nil
	}
	n, err := b.articles.SeedDefaults(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		b.logger.Info(ctx, "sample articles seeded", "count", n)
	}
	return nil
}
