package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/dmitrijs2005/sobrerodas/internal/server/media"
	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
)

var articleTags = []string{models.TagAutomotive, models.TagReview, models.TagComparison, models.TagExhibition}

const (
	msgArticleSaved   = "Article saved."
	msgArticleDeleted = "Article deleted."
	msgArticleInvalid = "Title and content are required."
	msgBadImage       = "Images must be jpg, jpeg, png, gif or webp files."
	msgBadDate        = "Publication date must be YYYY-MM-DD."
)

type articleForm struct {
	Action  string
	Article *models.Article
	Tags    []string
}

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	list, err := s.articles.All(r.Context())
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.page(w, r, http.StatusOK, "admin_list", "Articles", list)
}

func (s *Server) handleAdminNew(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "admin_form", "New article", articleForm{
		Action:  "/admin/articles",
		Article: &models.Article{Tag: models.TagAutomotive},
		Tags:    articleTags,
	})
}

func (s *Server) handleAdminEdit(w http.ResponseWriter, r *http.Request) {
	a, ok := s.loadArticle(w, r)
	if !ok {
		return
	}
	s.page(w, r, http.StatusOK, "admin_form", "Edit article", articleForm{
		Action:  fmt.Sprintf("/admin/articles/%d", a.ID),
		Article: a,
		Tags:    articleTags,
	})
}

func (s *Server) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	s.saveArticle(w, r, &models.Article{}, "/admin/articles/new")
}

func (s *Server) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	a, ok := s.loadArticle(w, r)
	if !ok {
		return
	}
	s.saveArticle(w, r, a, fmt.Sprintf("/admin/articles/%d/edit", a.ID))
}

func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, nil)
		return
	}
	if err := s.articles.Delete(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.renderError(w, r, http.StatusNotFound, nil)
			return
		}
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.redirectWithFlash(w, r, "/admin/articles", Flash{Kind: FlashSuccess, Message: msgArticleDeleted})
}

func (s *Server) loadArticle(w http.ResponseWriter, r *http.Request) (*models.Article, bool) {
	id, ok := articleID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, nil)
		return nil, false
	}
	a, err := s.articles.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.renderError(w, r, http.StatusNotFound, nil)
		} else {
			s.renderError(w, r, http.StatusInternalServerError, err)
		}
		return nil, false
	}
	return a, true
}

// saveArticle applies the submitted form to a, stores an uploaded image and
// saves the article. Validation failures go back to formURL with a flash.
func (s *Server) saveArticle(w http.ResponseWriter, r *http.Request, a *models.Article, formURL string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.renderError(w, r, http.StatusBadRequest, nil)
		return
	}

	a.Title = r.FormValue("title")
	a.Summary = r.FormValue("summary")
	a.Content = r.FormValue("content")
	a.Author = strings.TrimSpace(r.FormValue("author"))
	a.Tag = r.FormValue("tag")

	if raw := strings.TrimSpace(r.FormValue("published_on")); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			s.redirectWithFlash(w, r, formURL, Flash{Kind: FlashError, Message: msgBadDate})
			return
		}
		a.PublishedOn = d
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		key, err := s.media.Save(r.Context(), header.Filename, header.Header.Get("Content-Type"), file, header.Size)
		if err != nil {
			if errors.Is(err, common.ErrInvalidFileName) {
				s.redirectWithFlash(w, r, formURL, Flash{Kind: FlashError, Message: msgBadImage})
				return
			}
			s.renderError(w, r, http.StatusInternalServerError, err)
			return
		}
		a.Image = media.PublicURL(key)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		s.renderError(w, r, http.StatusBadRequest, nil)
		return
	}

	saved, err := s.articles.Save(r.Context(), a)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidArticle):
			s.redirectWithFlash(w, r, formURL, Flash{Kind: FlashError, Message: msgArticleInvalid})
		case errors.Is(err, common.ErrorNotFound):
			s.renderError(w, r, http.StatusNotFound, nil)
		default:
			s.renderError(w, r, http.StatusInternalServerError, err)
		}
		return
	}

	s.redirectWithFlash(w, r, "/articles/"+strconv.FormatInt(saved.ID, 10), Flash{Kind: FlashSuccess, Message: msgArticleSaved})
}
