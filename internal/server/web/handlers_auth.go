package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/dmitrijs2005/sobrerodas/internal/server/auth"
	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
)

// User-facing messages of the account flows.
const (
	msgInvalidCredentials = "Invalid email or password."
	msgDuplicateEmail     = "This email is already registered."
	msgFieldsRequired     = "Please fill in all fields."
	msgPasswordMismatch   = "Passwords do not match."
	msgPasswordTooLong    = "Password is too long. Use at most 72 bytes."
	msgRegistered         = "Registration complete. Log in to continue."
	msgLoggedOut          = "You have been logged out."
	msgResetSent          = "If an account exists for that email, a password reset link has been sent."
	msgResetDevLink       = "Email delivery is disabled in development mode. Use this link to reset your password:"
	msgTokenInvalid       = "This password reset link is invalid."
	msgTokenExpired       = "This password reset link has expired. Please request a new one."
	msgResetFailed        = "Your password could not be reset. Please request a new link."
	msgPasswordChanged    = "Your password has been changed. Log in with the new password."
)

type loginPage struct {
	Next string
}

type resetPage struct {
	Token string
}

// safeNext keeps redirects after login on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return "/"
	}
	return next
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "login", "Log in", loginPage{Next: r.URL.Query().Get("next")})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	user, err := s.accounts.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			to := "/login"
			if next != "" {
				to += "?next=" + url.QueryEscape(next)
			}
			s.redirectWithFlash(w, r, to, Flash{Kind: FlashError, Message: msgInvalidCredentials})
			return
		}
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	if err := s.startSession(w, auth.PrincipalFromUser(user)); err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

func (s *Server) startSession(w http.ResponseWriter, p *auth.Principal) error {
	token, err := s.sessions.Issue(p)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, common.SessionCookieName, s.opts.SecureCookies)
	s.redirectWithFlash(w, r, "/login", Flash{Kind: FlashSuccess, Message: msgLoggedOut})
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "register", "Register", nil)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm")

	if name == "" || email == "" || password == "" {
		s.redirectWithFlash(w, r, "/register", Flash{Kind: FlashError, Message: msgFieldsRequired})
		return
	}
	if password != confirm {
		s.redirectWithFlash(w, r, "/register", Flash{Kind: FlashError, Message: msgPasswordMismatch})
		return
	}

	if _, err := s.accounts.Register(r.Context(), name, email, password); err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateEmail):
			s.redirectWithFlash(w, r, "/register", Flash{Kind: FlashError, Message: msgDuplicateEmail})
			return
		case errors.Is(err, common.ErrPasswordTooLong):
			s.redirectWithFlash(w, r, "/register", Flash{Kind: FlashError, Message: msgPasswordTooLong})
			return
		}
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.redirectWithFlash(w, r, "/login", Flash{Kind: FlashSuccess, Message: msgRegistered})
}

func (s *Server) handleForgotForm(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "forgot", "Forgot password", nil)
}

func (s *Server) handleForgot(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		s.redirectWithFlash(w, r, "/forgot-password", Flash{Kind: FlashError, Message: msgFieldsRequired})
		return
	}

	out, err := s.resets.Request(r.Context(), email)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	if out.Link != "" {
		s.redirectWithFlash(w, r, "/login", Flash{Kind: FlashInfo, Message: msgResetDevLink, Link: out.Link})
		return
	}
	s.redirectWithFlash(w, r, "/login", Flash{Kind: FlashSuccess, Message: msgResetSent})
}

// tokenFailure maps an unusable token to its flash and redirect target.
func (s *Server) tokenFailure(w http.ResponseWriter, r *http.Request, status models.TokenStatus) {
	if status == models.TokenExpired {
		s.redirectWithFlash(w, r, "/forgot-password", Flash{Kind: FlashError, Message: msgTokenExpired})
		return
	}
	s.redirectWithFlash(w, r, "/login", Flash{Kind: FlashError, Message: msgTokenInvalid})
}

func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	status, err := s.accounts.ValidateResetToken(r.Context(), token)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	if status != models.TokenValid {
		s.tokenFailure(w, r, status)
		return
	}

	s.page(w, r, http.StatusOK, "reset", "Reset password", resetPage{Token: token})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	token := r.FormValue("token")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm")
	back := "/reset-password?token=" + url.QueryEscape(token)

	status, err := s.accounts.ValidateResetToken(r.Context(), token)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	if status != models.TokenValid {
		s.tokenFailure(w, r, status)
		return
	}

	if password == "" {
		s.redirectWithFlash(w, r, back, Flash{Kind: FlashError, Message: msgFieldsRequired})
		return
	}
	if password != confirm {
		s.redirectWithFlash(w, r, back, Flash{Kind: FlashError, Message: msgPasswordMismatch})
		return
	}

	err = s.accounts.ConsumeResetToken(r.Context(), token, password)
	switch {
	case err == nil:
		s.redirectWithFlash(w, r, "/login", Flash{Kind: FlashSuccess, Message: msgPasswordChanged})
	case errors.Is(err, common.ErrTokenInvalid):
		s.tokenFailure(w, r, models.TokenInvalid)
	case errors.Is(err, common.ErrTokenExpired):
		s.tokenFailure(w, r, models.TokenExpired)
	case errors.Is(err, common.ErrEmptyPassword):
		s.redirectWithFlash(w, r, back, Flash{Kind: FlashError, Message: msgFieldsRequired})
	case errors.Is(err, common.ErrPasswordTooLong):
		s.redirectWithFlash(w, r, back, Flash{Kind: FlashError, Message: msgPasswordTooLong})
	case errors.Is(err, common.ErrUserNotFound):
		s.redirectWithFlash(w, r, "/login", Flash{Kind: FlashError, Message: msgResetFailed})
	default:
		s.renderError(w, r, http.StatusInternalServerError, err)
	}
}
