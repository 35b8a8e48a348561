package web

import (
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/dmitrijs2005/sobrerodas/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// loadSession puts the principal of a valid session cookie into the
// request context. Invalid or expired cookies are cleared.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(common.SessionCookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		p, err := s.sessions.Parse(c.Value)
		if err != nil {
			clearCookie(w, common.SessionCookieName, s.opts.SecureCookies)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

// enforceGate redirects anonymous callers of protected routes to the login
// page and rejects non-admins on admin routes.
func (s *Server) enforceGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch s.gate.Decide(r.URL.Path, auth.PrincipalFrom(r.Context())) {
		case auth.DecisionRedirectLogin:
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		case auth.DecisionForbidden:
			s.renderError(w, r, http.StatusForbidden, nil)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
