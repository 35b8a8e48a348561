package web

import (
	"net/http"

	"github.com/dmitrijs2005/sobrerodas/internal/server/auth"
)

// view is the data handed to every page template.
type view struct {
	Title     string
	Principal *auth.Principal
	Flash     *Flash
	Data      any
}

type errorPage struct {
	Status  int
	Message string
}

func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	v := view{
		Title:     title,
		Principal: auth.PrincipalFrom(r.Context()),
		Flash:     s.flashes.pop(w, r),
		Data:      data,
	}
	if err := s.views.render(w, status, name, v); err != nil {
		s.logger.Error(r.Context(), "render failed", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// renderError renders the error page. err is logged for 5xx statuses only.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError && err != nil {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	msg := http.StatusText(status)
	switch status {
	case http.StatusForbidden:
		msg = "You do not have access to this page."
	case http.StatusNotFound:
		msg = "The page you are looking for does not exist."
	case http.StatusInternalServerError:
		msg = "Something went wrong. Please try again later."
	}
	s.page(w, r, status, "error", http.StatusText(status), errorPage{Status: status, Message: msg})
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, to string, f Flash) {
	s.flashes.set(w, f)
	http.Redirect(w, r, to, http.StatusSeeOther)
}
