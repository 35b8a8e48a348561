package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/dmitrijs2005/sobrerodas/internal/dbx"
	"github.com/dmitrijs2005/sobrerodas/internal/logging"
	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
	"github.com/dmitrijs2005/sobrerodas/internal/server/repositories/repomanager"
)

// HomePage groups the article selections shown on the front page.
type HomePage struct {
	Featured    *models.Article
	Latest      []*models.Article
	MostRead    []*models.Article
	Reviews     []*models.Article
	Comparisons []*models.Article
}

type ArticleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewArticleService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ArticleService {
	return &ArticleService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "articles"),
		now:         time.Now,
	}
}

// Featured returns the newest article, or nil when there are none.
func (s *ArticleService) Featured(ctx context.Context) (*models.Article, error) {
	list, err := s.repomanager.Articles(s.db).ListLatest(ctx, 1, 0)
	if err != nil {
		return nil, fmt.Errorf("error listing articles: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// Latest returns the three articles following the featured one.
func (s *ArticleService) Latest(ctx context.Context) ([]*models.Article, error) {
	return s.wrap(s.repomanager.Articles(s.db).ListLatest(ctx, 3, 1))
}

// MostRead has no view counter behind it; it is the newest Automotive
// articles.
func (s *ArticleService) MostRead(ctx context.Context) ([]*models.Article, error) {
	return s.wrap(s.repomanager.Articles(s.db).ListByTags(ctx, []string{models.TagAutomotive}, 3))
}

func (s *ArticleService) Reviews(ctx context.Context) ([]*models.Article, error) {
	return s.wrap(s.repomanager.Articles(s.db).ListByTags(ctx, []string{models.TagReview}, 2))
}

func (s *ArticleService) Comparisons(ctx context.Context) ([]*models.Article, error) {
	return s.wrap(s.repomanager.Articles(s.db).ListByTags(ctx, []string{models.TagComparison}, 2))
}

func (s *ArticleService) ByTags(ctx context.Context, tags ...string) ([]*models.Article, error) {
	return s.wrap(s.repomanager.Articles(s.db).ListByTags(ctx, tags, 0))
}

func (s *ArticleService) All(ctx context.Context) ([]*models.Article, error) {
	return s.wrap(s.repomanager.Articles(s.db).ListLatest(ctx, 0, 0))
}

// Search returns nothing for a blank term instead of every article.
func (s *ArticleService) Search(ctx context.Context, term string) ([]*models.Article, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	return s.wrap(s.repomanager.Articles(s.db).Search(ctx, term))
}

// Related returns up to three of the newest articles other than id.
func (s *ArticleService) Related(ctx context.Context, id int64) ([]*models.Article, error) {
	list, err := s.repomanager.Articles(s.db).ListLatest(ctx, 4, 0)
	if err != nil {
		return nil, fmt.Errorf("error listing articles: %w", err)
	}
	out := make([]*models.Article, 0, 3)
	for _, a := range list {
		if a.ID != id && len(out) < 3 {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *ArticleService) Home(ctx context.Context) (*HomePage, error) {
	var (
		p   HomePage
		err error
	)
	if p.Featured, err = s.Featured(ctx); err != nil {
		return nil, err
	}
	if p.Latest, err = s.Latest(ctx); err != nil {
		return nil, err
	}
	if p.MostRead, err = s.MostRead(ctx); err != nil {
		return nil, err
	}
	if p.Reviews, err = s.Reviews(ctx); err != nil {
		return nil, err
	}
	if p.Comparisons, err = s.Comparisons(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns common.ErrorNotFound for an unknown id.
func (s *ArticleService) Get(ctx context.Context, id int64) (*models.Article, error) {
	a, err := s.repomanager.Articles(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading article: %w", err)
	}
	return a, nil
}

// Save creates the article when it has no ID and updates it otherwise.
func (s *ArticleService) Save(ctx context.Context, a *models.Article) (*models.Article, error) {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" || strings.TrimSpace(a.Content) == "" {
		return nil, common.ErrInvalidArticle
	}
	if a.PublishedOn.IsZero() {
		a.PublishedOn = s.now().UTC().Truncate(24 * time.Hour)
	}

	repo := s.repomanager.Articles(s.db)
	if a.ID == 0 {
		created, err := repo.Create(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("error creating article: %w", err)
		}
		s.logger.Info(ctx, "article created", "article_id", created.ID)
		return created, nil
	}

	if err := repo.Update(ctx, a); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating article: %w", err)
	}
	s.logger.Info(ctx, "article updated", "article_id", a.ID)
	return a, nil
}

func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Articles(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting article: %w", err)
	}
	s.logger.Info(ctx, "article deleted", "article_id", id)
	return nil
}

// SeedDefaults fills an empty articles table with the sample articles and
// returns how many were inserted.
func (s *ArticleService) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.repomanager.Articles(s.db).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("error counting articles: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	samples := defaultArticles(s.now())
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Articles(tx)
		for _, a := range samples {
			if _, err := repo.Create(ctx, a); err != nil {
				return fmt.Errorf("error seeding article %q: %w", a.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(samples), nil
}

func (s *ArticleService) wrap(list []*models.Article, err error) ([]*models.Article, error) {
	if err != nil {
		return nil, fmt.Errorf("error listing articles: %w", err)
	}
	return list, nil
}

func defaultArticles(now time.Time) []*models.Article {
	day := now.UTC().Truncate(24 * time.Hour)
	return []*models.Article{
		{
			Title:       "New compact SUV arrives with a hybrid engine",
			Summary:     "The brand's best seller gets a hybrid powertrain and a redesigned cabin.",
			Content:     "The new generation keeps its familiar proportions but adds a 1.5 hybrid engine, a larger touchscreen and driver assistance as standard across the range.",
			Image:       "",
			Author:      "Editorial",
			Tag:         models.TagAutomotive,
			PublishedOn: day.AddDate(0, 0, -3),
		},
		{
			Title:       "Road test: the electric hatchback after 1,000 km",
			Summary:     "Range, charging and comfort on a long week behind the wheel.",
			Content:     "We drove the hatchback through city traffic and highway stretches. Real range settled around 320 km, and fast charging from 10 to 80 percent took 35 minutes.",
			Image:       "",
			Author:      "Editorial",
			Tag:         models.TagReview,
			PublishedOn: day.AddDate(0, 0, -2),
		},
		{
			Title:       "Comparison: two mid-size pickups side by side",
			Summary:     "Payload, towing and running costs of the segment leaders.",
			Content:     "Both trucks tow over three tonnes. One wins on payload and cabin space, the other on fuel consumption and price of ownership over five years.",
			Image:       "",
			Author:      "Editorial",
			Tag:         models.TagComparison,
			PublishedOn: day.AddDate(0, 0, -1),
		},
		{
			Title:       "Motor show opens with record number of debuts",
			Summary:     "Concepts and production models on display this week.",
			Content:     "The exhibition gathers more than forty manufacturers, with electric concepts taking most of the floor and several production debuts for the local market.",
			Image:       "",
			Author:      "Editorial",
			Tag:         models.TagExhibition,
			PublishedOn: day,
		},
	}
}
