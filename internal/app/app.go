package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/humanbelnik/watchlist/internal/config"
	http_init "github.com/humanbelnik/watchlist/internal/delivery/http/init"
	http_metrics "github.com/humanbelnik/watchlist/internal/delivery/http/metrics"
	http_session "github.com/humanbelnik/watchlist/internal/delivery/http/session"
	http_swagger "github.com/humanbelnik/watchlist/internal/delivery/http/swagger"
	ws_session "github.com/humanbelnik/watchlist/internal/delivery/ws/session"
	infra_breaker "github.com/humanbelnik/watchlist/internal/infra/breaker"
	infra_pg_init "github.com/humanbelnik/watchlist/internal/infra/postgres/init"
	infra_postgres_entry "github.com/humanbelnik/watchlist/internal/infra/postgres/entry"
	infra_redis_init "github.com/humanbelnik/watchlist/internal/infra/redis/init"
	infra_redis_poolcache "github.com/humanbelnik/watchlist/internal/infra/redis/poolcache"
	usecase_session "github.com/humanbelnik/watchlist/internal/usecase/session"
)

func Go(cfg *config.Config) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
	defer pgConn.Close()
	defer redisConn.Close()

	entryRepository := infra_postgres_entry.New(pgConn)
	guardedRepository := infra_breaker.New(entryRepository, infra_breaker.Settings{
		Name:        "entry-store",
		MaxRequests: cfg.Breaker.MaxRequests,
		Timeout:     cfg.Breaker.Timeout,
		Failures:    cfg.Breaker.Failures,
		Ignore:      []error{infra_postgres_entry.ErrEntryNotFound},
	})
	poolCache := infra_redis_poolcache.New(redisConn, guardedRepository, cfg.Redis.Key, cfg.Engine.PoolCacheTTL)

	hub := ws_session.NewHub(logger)
	sessionUC := usecase_session.New(poolCache, cfg.Engine.CommitDelay,
		usecase_session.WithObserver(hub),
		usecase_session.WithIdleCleanup(cfg.Engine.CleanupPeriod, cfg.Engine.SessionIdleTTL),
	)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_swagger.New())
	controllerPool.Add(http_session.New(sessionUC))
	controllerPool.Add(ws_session.NewController(sessionUC, hub, ws_session.WithThreshold(cfg.Engine.SwipeThreshold)))
	controllerPool.AddRoot(http_metrics.New())

	controllerPool.Register()
	if err := controllerPool.RunAll(ctx, cfg.HTTP.Host, cfg.HTTP.Port); err != nil {
		logger.Error("http server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
