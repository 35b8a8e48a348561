// Package articles persists the news articles shown on the public site.
package articles

import (
	"context"

	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Article) (*models.Article, error)
	Update(ctx context.Context, a *models.Article) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Article, error)
	// ListLatest returns articles newest first. limit <= 0 means no limit.
	ListLatest(ctx context.Context, limit, offset int) ([]*models.Article, error)
	// ListByTags returns articles carrying any of tags, newest first.
	ListByTags(ctx context.Context, tags []string, limit int) ([]*models.Article, error)
	// Search matches term case-insensitively against title and summary.
	Search(ctx context.Context, term string) ([]*models.Article, error)
	Count(ctx context.Context) (int64, error)
}
