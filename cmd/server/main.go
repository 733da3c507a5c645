package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/centrifugal/centrifuge"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/campusfind/internal/adapter/eventpublisher"
	"github.com/pscheid92/campusfind/internal/adapter/httpserver"
	"github.com/pscheid92/campusfind/internal/adapter/memory"
	"github.com/pscheid92/campusfind/internal/adapter/metrics"
	"github.com/pscheid92/campusfind/internal/adapter/postgres"
	"github.com/pscheid92/campusfind/internal/adapter/redis"
	"github.com/pscheid92/campusfind/internal/adapter/websocket"
	"github.com/pscheid92/campusfind/internal/app"
	"github.com/pscheid92/campusfind/internal/domain"
	"github.com/pscheid92/campusfind/internal/platform/config"
	"github.com/pscheid92/campusfind/internal/platform/logging"
	"github.com/pscheid92/campusfind/internal/platform/version"
	"github.com/pscheid92/campusfind/internal/scoring"
	goredis "github.com/redis/go-redis/v9"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second

	redisBreakerDelay = 30 * time.Second
)

type storage struct {
	repos app.Repositories
	pool  *pgxpool.Pool
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// slog is not initialised yet
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStorage(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, rdb *goredis.Client) storage {
	if cfg.StorageBackend == config.BackendMemory {
		slog.Warn("Using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return storage{repos: app.Repositories{
			Items:      store.Items(),
			Questions:  store.Questions(),
			Claims:     store.Claims(),
			Transactor: store.Transactor(),
		}}
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, metrics.NewDBMetrics(reg))
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := postgres.NewStore(pool)
	var cacheRDB goredis.Cmdable
	if rdb != nil {
		cacheRDB = rdb
	}
	questions := redis.NewQuestionCacheRepo(cacheRDB, store.Questions(), cfg.QuestionCacheTTL, metrics.NewCacheMetrics(reg))

	return storage{
		pool: pool,
		repos: app.Repositories{
			Items:      store.Items(),
			Questions:  questions,
			Claims:     store.Claims(),
			Transactor: store.Transactor(),
		},
	}
}

func setupRedis(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) *goredis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	hook := redis.NewHook(metrics.NewRedisMetrics(reg), redisBreakerDelay)
	client, err := redis.NewClient(ctx, cfg.RedisURL, hook)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupNode(cfg *config.Config, reg prometheus.Registerer) (*centrifuge.Node, *metrics.WebSocketMetrics) {
	wsMetrics := metrics.NewWebSocketMetrics(reg)
	node, err := websocket.NewNode(wsMetrics, cfg.LogLevel)
	if err != nil {
		slog.Error("Failed to create websocket node", "error", err)
		os.Exit(1)
	}
	if cfg.RedisURL != "" {
		if err := websocket.SetupRedis(node, cfg.RedisURL); err != nil {
			slog.Error("Failed to set up websocket redis broker", "error", err)
			os.Exit(1)
		}
	}
	if err := node.Run(); err != nil {
		slog.Error("Failed to run websocket node", "error", err)
		os.Exit(1)
	}
	return node, wsMetrics
}

func setupEvents(node *centrifuge.Node, wsMetrics *metrics.WebSocketMetrics, rdb *goredis.Client, reg prometheus.Registerer) *eventpublisher.EventPublisher {
	sinks := []eventpublisher.Sink{
		{Name: "websocket", Publisher: websocket.NewNotifier(node, wsMetrics)},
	}
	if rdb != nil {
		sinks = append(sinks, eventpublisher.Sink{Name: "redis", Publisher: redis.NewEventSink(rdb)})
	}
	return eventpublisher.New(eventpublisher.DefaultBreakerSettings, metrics.NewEventMetrics(reg), sinks...)
}

func setupGuard(cfg *config.Config, rdb *goredis.Client) domain.SubmissionGuard {
	if rdb != nil {
		return redis.NewSubmissionGuard(rdb, cfg.SubmissionCooldown)
	}
	return memory.NewSubmissionGuard(cfg.SubmissionCooldown)
}

func healthChecks(pool *pgxpool.Pool, rdb *goredis.Client) []httpserver.HealthCheck {
	var checks []httpserver.HealthCheck
	if pool != nil {
		checks = append(checks, httpserver.HealthCheck{Name: "postgres", Check: pool.Ping})
	}
	if rdb != nil {
		checks = append(checks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}

func main() {
	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "storage", cfg.StorageBackend, "version", version.Get().Version)

	reg := metrics.NewRegistry()

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	rdb := setupRedis(startupCtx, cfg, reg)
	store := setupStorage(startupCtx, cfg, reg, rdb)
	cancel()

	node, wsMetrics := setupNode(cfg, reg)
	events := setupEvents(node, wsMetrics, rdb, reg)

	scorer := scoring.NewScorer(scoring.Config{
		Weights:       scoring.DefaultWeights,
		TimeTolerance: cfg.ScoreTimeTolerance,
		TypoTolerance: cfg.ScoreTypoTolerance,
	})
	svc := app.NewService(store.repos, scorer, events, setupGuard(cfg, rdb), metrics.NewClaimMetrics(reg), clockwork.NewRealClock())

	wsHandler := centrifuge.NewWebsocketHandler(node, centrifuge.WebsocketConfig{
		CheckOrigin: websocket.NewCheckOrigin(cfg.AppURL, !cfg.IsProduction()),
	})
	srv := httpserver.NewServer(cfg, svc, httpserver.Options{
		WebsocketHandler: wsHandler,
		MetricsHandler:   metrics.Handler(reg),
		HTTPMetrics:      metrics.NewHTTPMetrics(reg),
		HealthChecks:     healthChecks(store.pool, rdb),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Start() }()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, cleaning up...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	if err := node.Shutdown(shutdownCtx); err != nil {
		slog.Error("Websocket node shutdown error", "error", err)
	}
	svc.Close()

	if store.pool != nil {
		store.pool.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	slog.Info("Shutdown complete")
}
