package server

import (
	"database/sql"

	"github.com/dmitrijs2005/sobrerodas/internal/logging"
	"github.com/dmitrijs2005/sobrerodas/internal/server/auth"
	"github.com/dmitrijs2005/sobrerodas/internal/server/config"
	"github.com/dmitrijs2005/sobrerodas/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sobrerodas/internal/server/services"
)

// Core is the service layer shared by the HTTP server and the admin CLI.
type Core struct {
	Repos     repomanager.RepositoryManager
	Users     *services.UserService
	Articles  *services.ArticleService
	Bootstrap *services.Bootstrap
}

func NewCore(db *sql.DB, cfg *config.Config, logger logging.Logger) *Core {
	repos := repomanager.NewPostgresRepositoryManager()
	users := services.NewUserService(db, repos, auth.NewBcryptHasher(cfg.BcryptCost), logger)
	articles := services.NewArticleService(db, repos, logger)
	admin := services.AdminAccount{Name: cfg.AdminName, Email: cfg.AdminEmail, Password: cfg.AdminPassword}

	return &Core{
		Repos:     repos,
		Users:     users,
		Articles:  articles,
		Bootstrap: services.NewBootstrap(users, articles, admin, logger),
	}
}
