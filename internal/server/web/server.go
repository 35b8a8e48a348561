// Package web is the server-rendered HTTP surface of the site: public
// pages, the login and password reset flows, the profile page and the
// admin article editor.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/sobrerodas/internal/logging"
	"github.com/dmitrijs2005/sobrerodas/internal/server/auth"
	"github.com/dmitrijs2005/sobrerodas/internal/server/media"
	"github.com/dmitrijs2005/sobrerodas/internal/server/metrics"
	"github.com/dmitrijs2005/sobrerodas/internal/server/models"
	"github.com/dmitrijs2005/sobrerodas/internal/server/services"
	"github.com/dmitrijs2005/sobrerodas/internal/server/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	shutdownTimeout = 10 * time.Second
	maxUploadBytes  = 10 << 20
)

// Accounts is the part of services.UserService used by the handlers.
type Accounts interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ValidateResetToken(ctx context.Context, token string) (models.TokenStatus, error)
	ConsumeResetToken(ctx context.Context, token, newPassword string) error
}

type PasswordResets interface {
	Request(ctx context.Context, email string) (*services.ResetRequest, error)
}

type Articles interface {
	Home(ctx context.Context) (*services.HomePage, error)
	ByTags(ctx context.Context, tags ...string) ([]*models.Article, error)
	All(ctx context.Context) ([]*models.Article, error)
	Search(ctx context.Context, term string) ([]*models.Article, error)
	Get(ctx context.Context, id int64) (*models.Article, error)
	Related(ctx context.Context, id int64) ([]*models.Article, error)
	Save(ctx context.Context, a *models.Article) (*models.Article, error)
	Delete(ctx context.Context, id int64) error
}

type Options struct {
	Addr               string
	AllowedOrigins     []string
	RateLimitPerMinute int
	// SecureCookies marks session and flash cookies Secure; set it when the
	// site is served over https.
	SecureCookies bool
}

type Deps struct {
	Accounts Accounts
	Resets   PasswordResets
	Articles Articles
	Media    media.Store
	Sessions *auth.SessionManager
}

type Server struct {
	opts     Options
	logger   logging.Logger
	accounts Accounts
	resets   PasswordResets
	articles Articles
	media    media.Store
	sessions *auth.SessionManager
	gate     *auth.Gate
	flashes  *flashes
	views    *renderer
}

func NewServer(opts Options, logger logging.Logger, d Deps, secret string) (*Server, error) {
	views, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Server{
		opts:     opts,
		logger:   logger.With("module", "http_server"),
		accounts: d.Accounts,
		resets:   d.Resets,
		articles: d.Articles,
		media:    d.Media,
		sessions: d.Sessions,
		gate:     auth.NewDefaultGate(),
		flashes:  &flashes{secret: []byte(secret), secure: opts.SecureCookies},
		views:    views,
	}, nil
}

// Routes builds the router. Every request passes the session loader and
// the authorization gate before reaching a handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(telemetry.Middleware)

	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           int((10 * time.Minute).Seconds()),
		}))
	}
	if s.opts.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(s.opts.RateLimitPerMinute, time.Minute))
	}

	r.Use(s.loadSession)
	r.Use(s.enforceGate)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/static/*", staticHandler())
	if s.media != nil {
		r.Handle(media.URLPrefix+"*", http.StripPrefix(strings.TrimSuffix(media.URLPrefix, "/"), s.media.Handler()))
	}

	r.Get("/", s.handleHome)
	r.Get("/index", s.handleHome)
	r.Get("/events", s.handleTagListing("Events", models.TagExhibition))
	r.Get("/comparisons", s.handleTagListing("Comparisons", models.TagComparison))
	r.Get("/articles/{id}", s.handleArticle)
	r.Get("/search", s.handleSearch)

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Get("/register", s.handleRegisterForm)
	r.Post("/register", s.handleRegister)
	r.Get("/forgot-password", s.handleForgotForm)
	r.Post("/forgot-password", s.handleForgot)
	r.Get("/reset-password", s.handleResetForm)
	r.Post("/reset-password", s.handleReset)
	r.Post("/logout", s.handleLogout)

	r.Get("/profile", s.handleProfile)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/articles", http.StatusSeeOther)
		})
		r.Get("/articles", s.handleAdminList)
		r.Get("/articles/new", s.handleAdminNew)
		r.Post("/articles", s.handleAdminCreate)
		r.Get("/articles/{id}/edit", s.handleAdminEdit)
		r.Post("/articles/{id}", s.handleAdminUpdate)
		r.Post("/articles/{id}/delete", s.handleAdminDelete)
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, nil)
	})

	return r
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
