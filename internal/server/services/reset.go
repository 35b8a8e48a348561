package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/dmitrijs2005/sobrerodas/internal/logging"
	"github.com/dmitrijs2005/sobrerodas/internal/server/notify"
)

// ResetDispatcher hands a reset link to the notification collaborator
// without waiting for delivery.
type ResetDispatcher interface {
	Dispatch(to, link string)
}

// ResetRequest is the outcome of a forgot-password request. Link is set
// only when the link has to be shown to the requester directly.
type ResetRequest struct {
	Delivered bool
	Link      string
}

// PasswordResetService turns a forgot-password request into an issued token
// and a delivered link. The dispatcher is optional; without it the link is
// surfaced to the requester in development mode and dropped otherwise.
type PasswordResetService struct {
	users      *UserService
	dispatcher ResetDispatcher
	baseURL    string
	devMode    bool
	logger     logging.Logger
}

// NewPasswordResetService accepts a nil dispatcher when no notifier is
// configured.
func NewPasswordResetService(users *UserService, dispatcher ResetDispatcher, baseURL string, devMode bool, logger logging.Logger) *PasswordResetService {
	return &PasswordResetService{
		users:      users,
		dispatcher: dispatcher,
		baseURL:    baseURL,
		devMode:    devMode,
		logger:     logger.With("module", "password-reset"),
	}
}

// Request issues a reset token for email. Unknown emails return an empty
// outcome and no error, indistinguishable from a delivered one to the
// requester.
func (s *PasswordResetService) Request(ctx context.Context, email string) (*ResetRequest, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			s.logger.Info(ctx, "password reset requested for unknown email")
			return &ResetRequest{}, nil
		}
		return nil, err
	}

	token, err := s.users.IssueResetToken(ctx, user)
	if err != nil {
		return nil, err
	}
	link := notify.ResetLink(s.baseURL, token)

	switch {
	case s.dispatcher != nil:
		s.dispatcher.Dispatch(user.Email, link)
		return &ResetRequest{Delivered: true}, nil
	case s.devMode:
		return &ResetRequest{Link: link}, nil
	default:
		s.logger.Warn(ctx, "no notifier configured, reset link not delivered", "user_id", user.ID)
		return &ResetRequest{}, nil
	}
}
