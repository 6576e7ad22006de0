package infra_redis_init

import (
	"log"
	"net"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/watchlist/internal/config"
)

func Options(cfg config.RedisCache) *redis.Options {
	return &redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       0,
	}
}

// MustEstablishConn fails fast on a dead redis at startup. Later outages are
// absorbed by the pool cache, which falls through to postgres.
func MustEstablishConn(cfg config.RedisCache) *redis.Client {
	client := redis.NewClient(Options(cfg))

	if err := client.Ping().Err(); err != nil {
		log.Fatalf("redis ping failed: %v", err)
	}

	return client
}
