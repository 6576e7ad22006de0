package infra_redis_poolcache

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/humanbelnik/watchlist/internal/metrics"
	"github.com/humanbelnik/watchlist/internal/model"
)

// Client is the part of *redis.Client the cache needs.
type Client interface {
	Get(key string) *redis.StringCmd
	Set(key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(key string) *redis.IntCmd
}

type Store interface {
	LoadCandidatePool(ctx context.Context, groupID uuid.UUID) ([]model.CandidateEntry, error)
	SetWatched(ctx context.Context, entryID uuid.UUID) error
}

// Driver caches candidate pools in front of the entry store.
//
// Pool keys carry a generation number; every confirmed watched mark bumps it,
// so no pool cached before the write is served after it. When the bump fails
// the driver goes dirty and reads straight from the store until a later bump
// succeeds. Entries added by other writers show up once the TTL runs out.
type Driver struct {
	client Client
	next   Store
	key    string
	ttl    time.Duration
	dirty  atomic.Bool
	logger *slog.Logger
}

func New(
	client Client,
	next Store,
	key string,
	ttl time.Duration,
) *Driver {
	return &Driver{
		client: client,
		next:   next,
		key:    key,
		ttl:    ttl,
		logger: slog.Default(),
	}
}

type cachedEntry struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	MediaType      string    `json:"media_type"`
	RuntimeMinutes *int      `json:"runtime_minutes,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
}

func (d *Driver) LoadCandidatePool(ctx context.Context, groupID uuid.UUID) ([]model.CandidateEntry, error) {
	if d.dirty.Load() {
		if err := d.bump(); err != nil {
			metrics.PoolCacheLookups.WithLabelValues("bypass").Inc()
			return d.next.LoadCandidatePool(ctx, groupID)
		}
		d.dirty.Store(false)
	}

	gen, err := d.generation()
	if err != nil {
		metrics.PoolCacheLookups.WithLabelValues("error").Inc()
		d.logger.Warn("pool cache unavailable", slog.String("error", err.Error()))
		return d.next.LoadCandidatePool(ctx, groupID)
	}

	poolKey := d.poolKey(groupID, gen)
	if pool, ok := d.read(poolKey); ok {
		metrics.PoolCacheLookups.WithLabelValues("hit").Inc()
		return pool, nil
	}
	metrics.PoolCacheLookups.WithLabelValues("miss").Inc()

	pool, err := d.next.LoadCandidatePool(ctx, groupID)
	if err != nil {
		return nil, err
	}

	d.write(poolKey, pool)
	return pool, nil
}

func (d *Driver) SetWatched(ctx context.Context, entryID uuid.UUID) error {
	if err := d.next.SetWatched(ctx, entryID); err != nil {
		return err
	}

	if err := d.bump(); err != nil {
		d.dirty.Store(true)
		d.logger.Error("failed to invalidate pool cache, bypassing it",
			slog.String("entry_id", entryID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

func (d *Driver) bump() error {
	return d.client.Incr(d.getFullKey("gen")).Err()
}

func (d *Driver) generation() (int64, error) {
	val, err := d.client.Get(d.getFullKey("gen")).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (d *Driver) read(key string) ([]model.CandidateEntry, bool) {
	raw, err := d.client.Get(key).Bytes()
	if err != nil {
		if err != redis.Nil {
			d.logger.Warn("pool cache read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}

	var cached []cachedEntry
	if err := json.Unmarshal(raw, &cached); err != nil {
		d.logger.Warn("pool cache entry corrupted", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}

	pool := make([]model.CandidateEntry, len(cached))
	for i, c := range cached {
		pool[i] = model.CandidateEntry{
			ID:             c.ID,
			Title:          c.Title,
			MediaType:      model.MediaType(c.MediaType),
			RuntimeMinutes: c.RuntimeMinutes,
			Tags:           c.Tags,
		}
	}
	return pool, true
}

func (d *Driver) write(key string, pool []model.CandidateEntry) {
	cached := make([]cachedEntry, len(pool))
	for i, e := range pool {
		cached[i] = cachedEntry{
			ID:             e.ID,
			Title:          e.Title,
			MediaType:      string(e.MediaType),
			RuntimeMinutes: e.RuntimeMinutes,
			Tags:           e.Tags,
		}
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		d.logger.Warn("failed to encode pool", slog.String("error", err.Error()))
		return
	}
	if err := d.client.Set(key, raw, d.ttl).Err(); err != nil {
		d.logger.Warn("pool cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (d *Driver) poolKey(groupID uuid.UUID, gen int64) string {
	return d.getFullKey("pool:" + groupID.String() + ":" + strconv.FormatInt(gen, 10))
}

func (d *Driver) getFullKey(key string) string {
	if d.key != "" {
		return d.key + ":" + key
	}
	return key
}
