package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis"
	"go.opentelemetry.io/otel/trace"
)

const statsTTL = 60 * time.Second

// StatsCache fronts the statistics aggregations with a short-lived Redis
// cache. Mutating services drop the keys they invalidate; a cache miss or a
// Redis outage falls through to the store.
type StatsCache struct {
	client *redis.Client
	tracer trace.Tracer
}

func NewStatsCache(client *redis.Client, tracer trace.Tracer) *StatsCache {
	return &StatsCache{
		client: client,
		tracer: tracer,
	}
}

func (cache *StatsCache) Get(ctx context.Context, key string, out interface{}) bool {
	_, span := cache.tracer.Start(ctx, "StatsCache.Get")
	defer span.End()

	raw, err := cache.client.Get(key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}

func (cache *StatsCache) Set(ctx context.Context, key string, value interface{}) {
	_, span := cache.tracer.Start(ctx, "StatsCache.Set")
	defer span.End()

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	cache.client.Set(key, raw, statsTTL)
}

func (cache *StatsCache) Invalidate(ctx context.Context, keys ...string) {
	_, span := cache.tracer.Start(ctx, "StatsCache.Invalidate")
	defer span.End()

	if len(keys) > 0 {
		cache.client.Del(keys...)
	}
}
