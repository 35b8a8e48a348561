package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/dmitrijs2005/sobrerodas/internal/dbx"
	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
)

const articleColumns = `id, title, summary, content, image, author, tag, published_on, created_at, updated_at`

const newestFirst = ` ORDER BY published_on DESC, id DESC`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	query :=
		`INSERT INTO articles (title, summary, content, image, author, tag, published_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		a.Title, a.Summary, a.Content, a.Image, a.Author, a.Tag, a.PublishedOn,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Article) error {
	query :=
		`UPDATE articles
		 SET title = $1, summary = $2, content = $3, image = $4, author = $5, tag = $6,
		     published_on = $7, updated_at = now()
		 WHERE id = $8`

	res, err := r.db.ExecContext(ctx, query,
		a.Title, a.Summary, a.Content, a.Image, a.Author, a.Tag, a.PublishedOn, a.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`

	a := &models.Article{}
	if err := scanArticle(r.db.QueryRowContext(ctx, query, id), a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) ListLatest(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles` + newestFirst
	args := []any{}
	query, args = paginate(query, args, limit, offset)
	return r.list(ctx, query, args...)
}

func (r *PostgresRepository) ListByTags(ctx context.Context, tags []string, limit int) ([]*models.Article, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(tags))
	args := make([]any, len(tags))
	for i, tag := range tags {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = tag
	}

	query := `SELECT ` + articleColumns + ` FROM articles WHERE tag IN (` +
		strings.Join(placeholders, ", ") + `)` + newestFirst
	query, args = paginate(query, args, limit, 0)
	return r.list(ctx, query, args...)
}

func (r *PostgresRepository) Search(ctx context.Context, term string) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles
		WHERE title ILIKE $1 OR summary ILIKE $1` + newestFirst
	return r.list(ctx, query, "%"+escapeLike(term)+"%")
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Article
	for rows.Next() {
		a := &models.Article{}
		if err := scanArticle(rows, a); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(s scanner, a *models.Article) error {
	return s.Scan(&a.ID, &a.Title, &a.Summary, &a.Content, &a.Image, &a.Author, &a.Tag,
		&a.PublishedOn, &a.CreatedAt, &a.UpdatedAt)
}

func paginate(query string, args []any, limit, offset int) (string, []any) {
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}
	return query, args
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
