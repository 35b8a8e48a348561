// Package services contains server-side business logic. UserService holds
// the account and password reset operations; ArticleService serves the
// public listings and the admin editor.
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
	"github.com/dmitrijs2005/sobrerodas/internal/server/auth"
	"github.com/dmitrijs2005/sobrerodas/internal/server/metrics"
	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
	"github.com/dmitrijs2005/sobrerodas/internal/server/repositories/repomanager"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/dmitrijs2005/sobrerodas/internal/server/services")

// UserService registers and authenticates users and runs the reset token
// lifecycle: issue, validate, consume.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.Hasher
	logger      logging.Logger
	now         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.Hasher, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		logger:      logger.With("module", "users"),
		now:         time.Now,
	}
}

// newUser hashes the password and the default security answer. Register and
// EnsureAdmin both go through it.
func (s *UserService) newUser(name, email, password, role string) (*models.User, error) {
	if password == "" {
		return nil, common.ErrEmptyPassword
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, common.ErrPasswordTooLong
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrPasswordTooLong) {
			return nil, common.ErrPasswordTooLong
		}
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	answerHash, err := s.hasher.Hash(auth.AnswerDigest(name))
	if err != nil {
		return nil, fmt.Errorf("error hashing security answer: %w", err)
	}

	return &models.User{
		Name:               name,
		Email:              email,
		PasswordHash:       passwordHash,
		SecurityQuestion:   models.DefaultSecurityQuestion,
		SecurityAnswerHash: answerHash,
		Role:               role,
	}, nil
}

// Register creates a USER account. The email must not be taken.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		metrics.Registrations.WithLabelValues("duplicate").Inc()
		return nil, common.ErrDuplicateEmail
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	user, err := s.newUser(name, email, password, common.RoleUser)
	if err != nil {
		return nil, err
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, common.ErrDuplicateEmail) {
			metrics.Registrations.WithLabelValues("duplicate").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	metrics.Registrations.WithLabelValues("success").Inc()
	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate returns the user owning email when password matches. Unknown
// emails and wrong passwords fail alike with ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			return nil, common.ErrInvalidCredentials
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, common.ErrInvalidCredentials
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	span.SetAttributes(attribute.Int64("user.id", user.ID))
	return user, nil
}

// VerifySecurityAnswer checks answer against the stored answer hash.
func (s *UserService) VerifySecurityAnswer(user *models.User, answer string) bool {
	if user == nil {
		return false
	}
	return s.hasher.Verify(user.SecurityAnswerHash, auth.AnswerDigest(answer))
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates the administrator account unless email is already
// registered, and reports whether it did.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return false, fmt.Errorf("error searching user: %w", err)
	}

	user, err := s.newUser(name, email, password, common.RoleAdmin)
	if err != nil {
		return false, err
	}

	created, err := repo.CreateIfAbsent(ctx, user)
	if err != nil {
		return false, fmt.Errorf("error creating admin: %w", err)
	}
	return created, nil
}

// IssueResetToken generates a reset token for user and stores its digest,
// replacing any token the user already had. The plain token is returned for
// delivery and is not stored anywhere.
func (s *UserService) IssueResetToken(ctx context.Context, user *models.User) (string, error) {
	ctx, span := tracer.Start(ctx, "UserService.IssueResetToken", trace.WithAttributes(attribute.Int64("user.id", user.ID)))
	defer span.End()

	token := auth.NewResetToken()
	expiresAt := s.now().Add(models.ResetTokenTTL)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).LockByID(ctx, user.ID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUserNotFound
			}
			return fmt.Errorf("error locking user: %w", err)
		}
		if err := s.repomanager.ResetTokens(tx).Upsert(ctx, user.ID, auth.HashResetToken(token), expiresAt); err != nil {
			return fmt.Errorf("error storing reset token: %w", err)
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	metrics.PasswordResets.WithLabelValues("issued").Inc()
	s.logger.Info(ctx, "reset token issued", "user_id", user.ID, "expires_at", expiresAt)
	return token, nil
}

// ValidateResetToken classifies token as valid, expired or invalid. Only
// storage failures are returned as errors.
func (s *UserService) ValidateResetToken(ctx context.Context, token string) (models.TokenStatus, error) {
	if strings.TrimSpace(token) == "" {
		return models.TokenInvalid, nil
	}

	t, err := s.repomanager.ResetTokens(s.db).FindByTokenHash(ctx, auth.HashResetToken(token))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.TokenInvalid, nil
		}
		return models.TokenInvalid, fmt.Errorf("error searching reset token: %w", err)
	}

	if t.Expired(s.now()) {
		return models.TokenExpired, nil
	}
	return models.TokenValid, nil
}

// ConsumeResetToken sets a new password for the owner of token and deletes
// the token, both in one transaction. The token and the user row are locked
// and re-read inside the transaction, so a token is consumed at most once.
func (s *UserService) ConsumeResetToken(ctx context.Context, token, newPassword string) error {
	ctx, span := tracer.Start(ctx, "UserService.ConsumeResetToken")
	defer span.End()

	if newPassword == "" {
		return common.ErrEmptyPassword
	}
	if len(newPassword) > auth.MaxPasswordBytes {
		return common.ErrPasswordTooLong
	}
	if strings.TrimSpace(token) == "" {
		metrics.PasswordResets.WithLabelValues("invalid").Inc()
		return common.ErrTokenInvalid
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, common.ErrPasswordTooLong) {
			return common.ErrPasswordTooLong
		}
		return fmt.Errorf("error hashing password: %w", err)
	}

	tokenHash := auth.HashResetToken(token)
	var userID int64

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tokens := s.repomanager.ResetTokens(tx)
		users := s.repomanager.Users(tx)

		t, err := tokens.LockByTokenHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrTokenInvalid
			}
			return fmt.Errorf("error locking reset token: %w", err)
		}
		if t.Expired(s.now()) {
			return common.ErrTokenExpired
		}

		user, err := users.LockByID(ctx, t.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				s.logger.Error(ctx, "reset token references a missing user", "user_id", t.UserID)
				return common.ErrUserNotFound
			}
			return fmt.Errorf("error locking user: %w", err)
		}
		userID = user.ID

		if err := users.UpdatePasswordHash(ctx, user.ID, passwordHash); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUserNotFound
			}
			return fmt.Errorf("error updating password: %w", err)
		}

		if err := tokens.DeleteByTokenHash(ctx, tokenHash); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrTokenInvalid
			}
			return fmt.Errorf("error deleting reset token: %w", err)
		}
		return nil
	})

	switch {
	case err == nil:
		metrics.PasswordResets.WithLabelValues("consumed").Inc()
		s.logger.Info(ctx, "password reset", "user_id", userID)
		return nil
	case errors.Is(err, common.ErrTokenInvalid):
		metrics.PasswordResets.WithLabelValues("invalid").Inc()
	case errors.Is(err, common.ErrTokenExpired):
		metrics.PasswordResets.WithLabelValues("expired").Inc()
	default:
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
