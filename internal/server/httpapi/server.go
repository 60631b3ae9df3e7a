// Package httpapi serves the Auth API over HTTP with echo.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/logging"
	"github.com/dmitrijs2005/didkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/didkeeper/internal/server/services"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	address   string
	echo      *echo.Echo
	auth      *services.AuthService
	campaigns *services.CampaignService
	metrics   *metrics.Metrics
	logger    logging.Logger
}

func NewServer(address string, l logging.Logger, as *services.AuthService, cs *services.CampaignService, m *metrics.Metrics) *Server {
	if l == nil {
		l = logging.NopLogger{}
	}
	s := &Server{
		address:   address,
		echo:      echo.New(),
		auth:      as,
		campaigns: cs,
		metrics:   m,
		logger:    l.With("module", "http_server"),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.errorHandler
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.observe)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.health)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	a := s.echo.Group("/auth")
	a.GET("/challenge", s.challenge)
	a.POST("/verify", s.verify)

	requireSession := echojwt.WithConfig(echojwt.Config{
		TokenLookup:    "header:Authorization:Bearer ,query:token",
		ParseTokenFunc: s.parseToken,
		ErrorHandler:   s.unauthorized,
	})
	a.GET("/me", s.me, requireSession)

	c := s.echo.Group("/campaigns", requireSession)
	c.POST("", s.submitCampaign)
	c.GET("", s.listCampaigns)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
