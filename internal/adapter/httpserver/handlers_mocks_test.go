package httpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pscheid92/campusfind/internal/adapter/metrics"
	"github.com/pscheid92/campusfind/internal/app"
	"github.com/pscheid92/campusfind/internal/domain"
	"github.com/pscheid92/campusfind/internal/platform/config"
)

// --- Mock app service ---

type mockAppService struct {
	reportItemFn        func(ctx context.Context, req domain.ReportItemRequest) (*domain.Item, error)
	getItemFn           func(ctx context.Context, itemID uuid.UUID) (*app.ItemDetail, error)
	listItemsFn         func(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	listMyItemsFn       func(ctx context.Context, finderID string) ([]domain.Item, error)
	submitClaimFn       func(ctx context.Context, req domain.SubmitClaimRequest) (*domain.Claim, error)
	listClaimsForItemFn func(ctx context.Context, itemID uuid.UUID, reviewerID string) ([]domain.Claim, error)
	listMyClaimsFn      func(ctx context.Context, claimantID string) ([]domain.ClaimView, error)
	approveClaimFn      func(ctx context.Context, claimID uuid.UUID, reviewerID string) (*app.Decision, error)
	rejectClaimFn       func(ctx context.Context, claimID uuid.UUID, reviewerID string) (*app.Decision, error)
	rescoreClaimFn      func(ctx context.Context, claimID uuid.UUID, reviewerID string) (*domain.Claim, domain.MatchResult, error)
	dashboardFn         func(ctx context.Context, actorID string) (*app.Dashboard, error)
}

func (m *mockAppService) ReportItem(ctx context.Context, req domain.ReportItemRequest) (*domain.Item, error) {
	if m.reportItemFn != nil {
		return m.reportItemFn(ctx, req)
	}
	return &domain.Item{ID: uuid.New(), FinderID: req.FinderID, Title: req.Title, Status: domain.ItemAvailable}, nil
}

func (m *mockAppService) GetItem(ctx context.Context, itemID uuid.UUID) (*app.ItemDetail, error) {
	if m.getItemFn != nil {
		return m.getItemFn(ctx, itemID)
	}
	return nil, domain.ErrItemNotFound
}

func (m *mockAppService) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	if m.listItemsFn != nil {
		return m.listItemsFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockAppService) ListMyItems(ctx context.Context, finderID string) ([]domain.Item, error) {
	if m.listMyItemsFn != nil {
		return m.listMyItemsFn(ctx, finderID)
	}
	return nil, nil
}

func (m *mockAppService) SubmitClaim(ctx context.Context, req domain.SubmitClaimRequest) (*domain.Claim, error) {
	if m.submitClaimFn != nil {
		return m.submitClaimFn(ctx, req)
	}
	return &domain.Claim{ID: uuid.New(), ItemID: req.ItemID, ClaimantID: req.ClaimantID, Status: domain.ClaimSubmitted}, nil
}

func (m *mockAppService) ListClaimsForItem(ctx context.Context, itemID uuid.UUID, reviewerID string) ([]domain.Claim, error) {
	if m.listClaimsForItemFn != nil {
		return m.listClaimsForItemFn(ctx, itemID, reviewerID)
	}
	return nil, nil
}

func (m *mockAppService) ListMyClaims(ctx context.Context, claimantID string) ([]domain.ClaimView, error) {
	if m.listMyClaimsFn != nil {
		return m.listMyClaimsFn(ctx, claimantID)
	}
	return nil, nil
}

func (m *mockAppService) ApproveClaim(ctx context.Context, claimID uuid.UUID, reviewerID string) (*app.Decision, error) {
	if m.approveClaimFn != nil {
		return m.approveClaimFn(ctx, claimID, reviewerID)
	}
	return nil, domain.ErrClaimNotFound
}

func (m *mockAppService) RejectClaim(ctx context.Context, claimID uuid.UUID, reviewerID string) (*app.Decision, error) {
	if m.rejectClaimFn != nil {
		return m.rejectClaimFn(ctx, claimID, reviewerID)
	}
	return nil, domain.ErrClaimNotFound
}

func (m *mockAppService) RescoreClaim(ctx context.Context, claimID uuid.UUID, reviewerID string) (*domain.Claim, domain.MatchResult, error) {
	if m.rescoreClaimFn != nil {
		return m.rescoreClaimFn(ctx, claimID, reviewerID)
	}
	return nil, domain.MatchResult{}, domain.ErrClaimNotFound
}

func (m *mockAppService) Dashboard(ctx context.Context, actorID string) (*app.Dashboard, error) {
	if m.dashboardFn != nil {
		return m.dashboardFn(ctx, actorID)
	}
	return &app.Dashboard{}, nil
}

// --- Test helpers ---

type testServerOption func(*Options, *config.Config)

func withHealthChecks(checks ...HealthCheck) testServerOption {
	return func(o *Options, _ *config.Config) { o.HealthChecks = checks }
}

func withRateLimit(perSecond float64, burst int) testServerOption {
	return func(_ *Options, cfg *config.Config) {
		cfg.RateLimitPerSecond = perSecond
		cfg.RateLimitBurst = burst
	}
}

func withHTTPMetrics(m *metrics.HTTPMetrics) testServerOption {
	return func(o *Options, _ *config.Config) { o.HTTPMetrics = m }
}

func withBackends(storage, redisURL string) testServerOption {
	return func(_ *Options, cfg *config.Config) {
		cfg.StorageBackend = storage
		cfg.RedisURL = redisURL
	}
}

func withWebsocketHandler(h http.Handler) testServerOption {
	return func(o *Options, _ *config.Config) { o.WebsocketHandler = h }
}

func newTestServer(t *testing.T, svc appService, opts ...testServerOption) *Server {
	t.Helper()
	cfg := &config.Config{
		AppEnv:             "test",
		Port:               "0",
		ActorHeader:        "X-Actor-ID",
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	}
	var o Options
	for _, opt := range opts {
		opt(&o, cfg)
	}
	return NewServer(cfg, svc, o)
}

// do sends a request through the full middleware chain. An empty actor sends
// no actor header.
func do(t *testing.T, srv *Server, method, target, actor, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set("X-Actor-ID", actor)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}
