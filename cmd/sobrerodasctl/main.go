package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/sobrerodas/internal/ctl"
	"github.com/dmitrijs2005/sobrerodas/internal/logging"
	"github.com/dmitrijs2005/sobrerodas/internal/server"
	"github.com/dmitrijs2005/sobrerodas/internal/server/config"
	"github.com/dmitrijs2005/sobrerodas/internal/server/repositories/repomanager"
)

func main() {
	_ = godotenv.Load()

	cmd := ctl.NewRootCommand(openRuntime, os.Stdout)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openRuntime(ctx context.Context) (*ctl.Runtime, error) {
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	db, err := repomanager.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	core := server.NewCore(db, cfg, logger)
	return &ctl.Runtime{
		Migrate:   func(ctx context.Context) error { return core.Repos.RunMigrations(ctx, db) },
		Bootstrap: core.Bootstrap.Run,
		Accounts:  core.Users,
		BaseURL:   cfg.BaseURL,
		Close:     db.Close,
	}, nil
}
