// Package server wires and runs the SobreRodas web server: database,
// migrations, bootstrap, notification delivery, media storage and the HTTP
// surface, with graceful shutdown on termination signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/sobrerodas/internal/logging"
	"github.com/dmitrijs2005/sobrerodas/internal/server/auth"
	"github.com/dmitrijs2005/sobrerodas/internal/server/config"
	"github.com/dmitrijs2005/sobrerodas/internal/server/media"
	"github.com/dmitrijs2005/sobrerodas/internal/server/notify"
	"github.com/dmitrijs2005/sobrerodas/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sobrerodas/internal/server/services"
	"github.com/dmitrijs2005/sobrerodas/internal/server/telemetry"
	"github.com/dmitrijs2005/sobrerodas/internal/server/web"
)

const drainTimeout = 15 * time.Second

// Seams for tests.
var (
	openDB          = repomanager.OpenDB
	initTelemetry   = telemetry.Init
	newNATSNotifier = func(url, subject string) (*notify.NATSNotifier, error) { return notify.NewNATSNotifier(url, subject) }
	newS3Store      = media.NewS3Store
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	server     *web.Server
	dispatcher *notify.Dispatcher
	closers    []func(context.Context) error
}

// NewApp connects to the database, applies migrations, runs the bootstrap
// and assembles the HTTP server.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.DevMode {
		logger.Warn(ctx, "development mode is on; reset links may be shown to requesters")
	}

	app := &App{config: cfg, logger: logger}
	if err := app.init(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	cfg := app.config

	shutdown, err := initTelemetry(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry init error: %w", err)
	}
	app.closers = append(app.closers, shutdown)

	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, func(context.Context) error { return db.Close() })

	core := NewCore(db, cfg, app.logger)
	if err := core.Repos.RunMigrations(ctx, db); err != nil {
		return err
	}
	if err := core.Bootstrap.Run(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	notifier, err := app.newNotifier()
	if err != nil {
		return err
	}

	var dispatcher services.ResetDispatcher
	if notifier != nil {
		app.dispatcher = notify.NewDispatcher(notifier, app.logger, cfg.NotifyTimeout)
		dispatcher = app.dispatcher
	} else {
		app.logger.Warn(ctx, "no notifier configured; password reset links are not delivered")
	}
	resets := services.NewPasswordResetService(core.Users, dispatcher, cfg.BaseURL, cfg.DevMode, app.logger)

	store, err := app.newMediaStore(ctx)
	if err != nil {
		return err
	}

	app.server, err = web.NewServer(web.Options{
		Addr:               cfg.HTTPAddr,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SecureCookies:      strings.HasPrefix(cfg.BaseURL, "https://"),
	}, app.logger, web.Deps{
		Accounts: core.Users,
		Resets:   resets,
		Articles: core.Articles,
		Media:    store,
		Sessions: auth.NewSessionManager(cfg.SecretKey, cfg.SessionTTL),
	}, cfg.SecretKey)
	return err
}

// newNotifier returns nil when no delivery channel is configured.
func (app *App) newNotifier() (notify.Notifier, error) {
	cfg := app.config
	switch {
	case cfg.SMTPHost != "":
		return notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	case cfg.NATSURL != "":
		n, err := newNATSNotifier(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func(context.Context) error { n.Close(); return nil })
		return n, nil
	default:
		return nil, nil
	}
}

func (app *App) newMediaStore(ctx context.Context) (media.Store, error) {
	cfg := app.config
	if cfg.MediaBackend == config.MediaS3 {
		return newS3Store(ctx, media.S3Config{
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	}
	return media.NewLocalStore(cfg.UploadDir)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// drains pending notifications and releases resources.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()

	if app.dispatcher != nil {
		if err := app.dispatcher.Close(ctx); err != nil {
			app.logger.Warn(ctx, "pending notifications dropped", "error", err)
		}
	}
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](ctx); err != nil {
			app.logger.Warn(ctx, "close", "error", err)
		}
	}
	app.closers = nil
}
