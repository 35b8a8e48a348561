package articles

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var cols = []string{"id", "title", "summary", "content", "image", "author", "tag", "published_on", "created_at", "updated_at"}

func row(rows *sqlmock.Rows, id int64, title, tag string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, title, "sum", "body", "/uploads/x.jpg", "Juan", tag, now, now, now)
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+articles\s*\(title,\s*summary,\s*content,\s*image,\s*author,\s*tag,\s*published_on\)`).
		WithArgs("T", "S", "C", "", "A", models.TagReview, day).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(9), day, day))

	a, err := repo.Create(context.Background(), &models.Article{
		Title: "T", Summary: "S", Content: "C", Author: "A", Tag: models.TagReview, PublishedOn: day,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), a.ID)
}

func TestUpdate(t *testing.T) {
	q := `(?s)^UPDATE\s+articles\s+SET\s+title\s*=\s*\$1.*WHERE\s+id\s*=\s*\$8$`

	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.Update(context.Background(), &models.Article{ID: 3, Title: "T"}))
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))
		require.ErrorIs(t, repo.Update(context.Background(), &models.Article{ID: 3}), common.ErrorNotFound)
	})
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`^DELETE FROM articles WHERE id = \$1$`).WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM articles WHERE id = \$1$`).WithArgs(int64(4)).
		WillReturnError(errors.New("db err"))

	require.NoError(t, repo.Delete(context.Background(), 3))
	require.Error(t, repo.Delete(context.Background(), 4))
}

func TestGet(t *testing.T) {
	q := `(?s)^SELECT\s+id,\s*title,.*FROM\s+articles\s+WHERE\s+id\s*=\s*\$1$`

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(int64(1)).WillReturnRows(row(sqlmock.NewRows(cols), 1, "Hello", models.TagAutomotive))

		a, err := repo.Get(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Hello", a.Title)
		assert.Equal(t, models.TagAutomotive, a.Tag)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(int64(2)).WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), 2)
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestListLatest_Pagination(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`ORDER\s+BY\s+published_on\s+DESC,\s*id\s+DESC\s+LIMIT\s+\$1\s+OFFSET\s+\$2$`).
		WithArgs(3, 1).
		WillReturnRows(row(row(sqlmock.NewRows(cols), 2, "b", ""), 3, "c", ""))
	mock.ExpectQuery(`ORDER\s+BY\s+published_on\s+DESC,\s*id\s+DESC$`).
		WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.ListLatest(context.Background(), 3, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)

	got, err = repo.ListLatest(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByTags(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+tag\s+IN\s+\(\$1,\s*\$2\)\s+ORDER\s+BY.*LIMIT\s+\$3$`).
		WithArgs(models.TagReview, models.TagComparison, 2).
		WillReturnRows(row(sqlmock.NewRows(cols), 1, "a", models.TagReview))

	got, err := repo.ListByTags(context.Background(), []string{models.TagReview, models.TagComparison}, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = repo.ListByTags(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSearch_EscapesWildcards(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+title\s+ILIKE\s+\$1\s+OR\s+summary\s+ILIKE\s+\$1`).
		WithArgs(`%100\%%`).
		WillReturnRows(sqlmock.NewRows(cols))

	_, err := repo.Search(context.Background(), "100%")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_ScanError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM\s+articles`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, err := repo.ListLatest(context.Background(), 0, 0)
	require.Error(t, err)
}

func TestCount(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM articles$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
