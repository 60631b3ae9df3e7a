// Package server initializes and runs the Auth API server.
// It picks the storage backend, runs migrations, starts the HTTP server and
// purges expired challenges until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/logging"
	"github.com/dmitrijs2005/didkeeper/internal/server/config"
	"github.com/dmitrijs2005/didkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/didkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/didkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/didkeeper/internal/server/services"
)

const purgeInterval = time.Minute

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	authService     *services.AuthService
	campaignService *services.CampaignService
	metrics         *metrics.Metrics
}

// NewApp connects to PostgreSQL when a DSN is configured and falls back to
// in-memory repositories otherwise.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	var (
		db *sql.DB
		rm repomanager.RepositoryManager
	)
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, state is kept in memory")
		rm = repomanager.NewInMemoryRepositoryManager()
	} else {
		db, err = repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		pm := repomanager.NewPostgresRepositoryManager()
		if err := pm.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = pm
	}

	m := metrics.New()
	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		authService:     services.NewAuthService(db, rm, c, m, logger.With("module", "auth")),
		campaignService: services.NewCampaignService(db, rm, m, logger.With("module", "campaigns")),
		metrics:         m,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.logger, app.authService, app.campaignService, app.metrics)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) purgeChallenges(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.authService.PurgeExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "purge expired challenges", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Debug(ctx, "expired challenges purged", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeChallenges(ctx)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "close db", "error", err)
		}
	}
	app.logger.Info(context.Background(), "App stopped")
}
