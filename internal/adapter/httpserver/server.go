// Package httpserver exposes the claim workflow as a JSON REST API.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/campusfind/internal/adapter/metrics"
	"github.com/pscheid92/campusfind/internal/app"
	"github.com/pscheid92/campusfind/internal/domain"
	"github.com/pscheid92/campusfind/internal/platform/config"
)

type appService interface {
	ReportItem(ctx context.Context, req domain.ReportItemRequest) (*domain.Item, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*app.ItemDetail, error)
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	ListMyItems(ctx context.Context, finderID string) ([]domain.Item, error)
	SubmitClaim(ctx context.Context, req domain.SubmitClaimRequest) (*domain.Claim, error)
	ListClaimsForItem(ctx context.Context, itemID uuid.UUID, reviewerID string) ([]domain.Claim, error)
	ListMyClaims(ctx context.Context, claimantID string) ([]domain.ClaimView, error)
	ApproveClaim(ctx context.Context, claimID uuid.UUID, reviewerID string) (*app.Decision, error)
	RejectClaim(ctx context.Context, claimID uuid.UUID, reviewerID string) (*app.Decision, error)
	RescoreClaim(ctx context.Context, claimID uuid.UUID, reviewerID string) (*domain.Claim, domain.MatchResult, error)
	Dashboard(ctx context.Context, actorID string) (*app.Dashboard, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app appService

	websocketHandler http.Handler
	metricsHandler   http.Handler
	httpMetrics      *metrics.HTTPMetrics

	healthChecks []HealthCheck
	startTime    time.Time
}

// Options carries the optional collaborators of the server. Nil handlers
// leave their routes unregistered.
type Options struct {
	WebsocketHandler http.Handler
	MetricsHandler   http.Handler
	HTTPMetrics      *metrics.HTTPMetrics
	HealthChecks     []HealthCheck
}

func NewServer(cfg *config.Config, app appService, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:             e,
		config:           cfg,
		app:              app,
		websocketHandler: opts.WebsocketHandler,
		metricsHandler:   opts.MetricsHandler,
		httpMetrics:      opts.HTTPMetrics,
		healthChecks:     opts.HealthChecks,
		startTime:        time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
