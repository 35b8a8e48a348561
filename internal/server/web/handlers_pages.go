package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/dmitrijs2005/sobrerodas/internal/server/auth"
	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type listingPage struct {
	Query    string
	Articles []*models.Article
}

type articlePage struct {
	Article *models.Article
	Related []*models.Article
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	home, err := s.articles.Home(r.Context())
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.page(w, r, http.StatusOK, "home", "", home)
}

func (s *Server) handleTagListing(title string, tags ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.articles.ByTags(r.Context(), tags...)
		if err != nil {
			s.renderError(w, r, http.StatusInternalServerError, err)
			return
		}
		s.page(w, r, http.StatusOK, "listing", title, listingPage{Articles: list})
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	list, err := s.articles.Search(r.Context(), q)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.page(w, r, http.StatusOK, "listing", "Search", listingPage{Query: q, Articles: list})
}

func articleID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, nil)
		return
	}

	a, err := s.articles.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.renderError(w, r, http.StatusNotFound, nil)
			return
		}
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	related, err := s.articles.Related(r.Context(), id)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.page(w, r, http.StatusOK, "article", a.Title, articlePage{Article: a, Related: related})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())

	user, err := s.accounts.GetByID(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			clearCookie(w, common.SessionCookieName, s.opts.SecureCookies)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.page(w, r, http.StatusOK, "profile", "Profile", user)
}
