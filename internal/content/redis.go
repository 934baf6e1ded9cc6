package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"DegensAgainstDecency/internal/game/card"

	"github.com/redis/go-redis/v9"
)

// RedisCache wraps a Source and keeps generated cards in a Redis list per
// kind so slow generators are only hit once per ttl.
type RedisCache struct {
	rdb   *redis.Client
	inner Source
	ttl   time.Duration
}

func NewRedisCache(rdb *redis.Client, inner Source, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, inner: inner, ttl: ttl}
}

// key 约定：content:{kind} -> List(json TextCard)
func cacheKey(kind card.Kind) string {
	return fmt.Sprintf("content:%s", kind)
}

func (r *RedisCache) Generate(ctx context.Context, kind card.Kind, count int) ([]card.TextCard, error) {
	key := cacheKey(kind)
	if cached, err := r.load(ctx, key, count); err == nil && len(cached) >= count {
		return cached, nil
	}

	cards, err := r.inner.Generate(ctx, kind, count)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return cards, nil
	}

	p := r.rdb.TxPipeline()
	p.Del(ctx, key)
	for _, c := range cards {
		data, _ := json.Marshal(c)
		p.RPush(ctx, key, data)
	}
	p.Expire(ctx, key, r.ttl)
	// cache write failures never block the game
	_, _ = p.Exec(ctx)
	return cards, nil
}

func (r *RedisCache) load(ctx context.Context, key string, count int) ([]card.TextCard, error) {
	raw, err := r.rdb.LRange(ctx, key, 0, int64(count)-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]card.TextCard, 0, len(raw))
	for _, s := range raw {
		var c card.TextCard
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			return nil, fmt.Errorf("decode cached card: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *RedisCache) Fallback(kind card.Kind) []card.TextCard {
	return r.inner.Fallback(kind)
}
