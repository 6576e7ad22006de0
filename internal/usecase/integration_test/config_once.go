package integrationtest

import (
	"sync"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/watchlist/internal/config"
	infra_breaker "github.com/humanbelnik/watchlist/internal/infra/breaker"
	infra_pg_init "github.com/humanbelnik/watchlist/internal/infra/postgres/init"
	infra_postgres_entry "github.com/humanbelnik/watchlist/internal/infra/postgres/entry"
	infra_redis_init "github.com/humanbelnik/watchlist/internal/infra/redis/init"
	infra_redis_poolcache "github.com/humanbelnik/watchlist/internal/infra/redis/poolcache"
	"github.com/jmoiron/sqlx"
)

// stack is the store chain the app wires, connected once per test binary.
type stack struct {
	cfg   *config.Config
	db    *sqlx.DB
	redis *redis.Client
	store *infra_redis_poolcache.Driver
}

var (
	shared     *stack
	sharedOnce sync.Once
)

func getStack() *stack {
	sharedOnce.Do(func() {
		cfg := config.Load()
		db := infra_pg_init.MustEstablishConn(cfg.Postgres)
		redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)

		guarded := infra_breaker.New(infra_postgres_entry.New(db), infra_breaker.Settings{
			Name:        "entry-store-it",
			MaxRequests: cfg.Breaker.MaxRequests,
			Timeout:     cfg.Breaker.Timeout,
			Failures:    cfg.Breaker.Failures,
			Ignore:      []error{infra_postgres_entry.ErrEntryNotFound},
		})

		shared = &stack{
			cfg:   cfg,
			db:    db,
			redis: redisConn,
			store: infra_redis_poolcache.New(redisConn, guarded, cfg.Redis.Key+"-it", cfg.Engine.PoolCacheTTL),
		}
	})
	return shared
}
