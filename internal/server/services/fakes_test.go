package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/dmitrijs2005/sobrerodas/internal/dbx"
	"github.com/dmitrijs2005/sobrerodas/internal/logging"
	"github.com/dmitrijs2005/sobrerodas/internal/server/auth"
	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
	articlesrepo "github.com/dmitrijs2005/sobrerodas/internal/server/repositories/articles"
	"github.com/dmitrijs2005/sobrerodas/internal/server/repositories/resettokens"
	usersrepo "github.com/dmitrijs2005/sobrerodas/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// expectTx queues n transactions that commit.
func expectTx(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

// fakeUsersRepo is an in-memory users table. Transactions are not modelled.
type fakeUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User

	getErr    error
	createErr error
	updateErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}}
}

func (f *fakeUsersRepo) findByEmail(email string) *models.User {
	for _, u := range f.byID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (f *fakeUsersRepo) insert(u *models.User) *models.User {
	f.nextID++
	cp := *u
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	f.byID[cp.ID] = &cp
	out := cp
	return &out
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.findByEmail(u.Email) != nil {
		return nil, common.ErrDuplicateEmail
	}
	return f.insert(u), nil
}

func (f *fakeUsersRepo) CreateIfAbsent(ctx context.Context, u *models.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return false, f.createErr
	}
	if f.findByEmail(u.Email) != nil {
		return false, nil
	}
	f.insert(u)
	return true, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u := f.findByEmail(email)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) LockByID(ctx context.Context, id int64) (*models.User, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeUsersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsersRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

// fakeTokensRepo keeps one row per user, like the UNIQUE(user_id) table.
type fakeTokensRepo struct {
	mu     sync.Mutex
	nextID int64
	byUser map[int64]*models.PasswordResetToken

	findErr   error
	deleteErr error
}

func newFakeTokensRepo() *fakeTokensRepo {
	return &fakeTokensRepo{byUser: map[int64]*models.PasswordResetToken{}}
}

func (f *fakeTokensRepo) Upsert(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.byUser[userID]; ok {
		t.TokenHash = tokenHash
		t.ExpiresAt = expiresAt
		return nil
	}
	f.nextID++
	f.byUser[userID] = &models.PasswordResetToken{
		ID: f.nextID, UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt, CreatedAt: time.Now(),
	}
	return nil
}

func (f *fakeTokensRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, t := range f.byUser {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTokensRepo) LockByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	return f.FindByTokenHash(ctx, tokenHash)
}

func (f *fakeTokensRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for id, t := range f.byUser {
		if t.TokenHash == tokenHash {
			delete(f.byUser, id)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeTokensRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUser[userID]; ok {
		return 1, nil
	}
	return 0, nil
}

type fakeArticlesRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*models.Article

	listErr error

	lastLimit, lastOffset int
	lastTags              []string
	lastTerm              string
}

func newFakeArticlesRepo() *fakeArticlesRepo {
	return &fakeArticlesRepo{items: map[int64]*models.Article{}}
}

func (f *fakeArticlesRepo) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.items[a.ID] = &cp
	return a, nil
}

func (f *fakeArticlesRepo) Update(ctx context.Context, a *models.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[a.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeArticlesRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeArticlesRepo) Get(ctx context.Context, id int64) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

// sorted returns items newest first, by id.
func (f *fakeArticlesRepo) sorted(keep func(*models.Article) bool) []*models.Article {
	var out []*models.Article
	for _, a := range f.items {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func window(list []*models.Article, limit, offset int) []*models.Article {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func (f *fakeArticlesRepo) ListLatest(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit, f.lastOffset = limit, offset
	if f.listErr != nil {
		return nil, f.listErr
	}
	return window(f.sorted(func(*models.Article) bool { return true }), limit, offset), nil
}

func (f *fakeArticlesRepo) ListByTags(ctx context.Context, tags []string, limit int) ([]*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTags, f.lastLimit = tags, limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	set := map[string]bool{}
	for _, t := range tags {
		set[t] = true
	}
	return window(f.sorted(func(a *models.Article) bool { return set[a.Tag] }), limit, 0), nil
}

func (f *fakeArticlesRepo) Search(ctx context.Context, term string) ([]*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTerm = term
	return nil, f.listErr
}

func (f *fakeArticlesRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

type fakeRepoManager struct {
	users    *fakeUsersRepo
	tokens   *fakeTokensRepo
	articles *fakeArticlesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: newFakeUsersRepo(), tokens: newFakeTokensRepo(), articles: newFakeArticlesRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.users }
func (m *fakeRepoManager) ResetTokens(dbx.DBTX) resettokens.Repository  { return m.tokens }
func (m *fakeRepoManager) Articles(dbx.DBTX) articlesrepo.Repository    { return m.articles }

func newTestUserService(db *sql.DB, rm *fakeRepoManager) *UserService {
	return NewUserService(db, rm, auth.NewBcryptHasher(4), logging.NewNop())
}
