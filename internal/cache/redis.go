package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sandevgo/carebot/internal/core"
)

// Redis is a core.SessionCache shared between processes. Values expire through
// SET EX; a sorted set scored by insertion time enforces the capacity.
type Redis struct {
	client   redis.UniversalClient
	prefix   string
	ttl      time.Duration
	capacity int64
	clock    func() time.Time
}

type RedisConfig struct {
	Prefix   string
	TTL      time.Duration
	Capacity int
	Clock    func() time.Time
}

func NewRedis(client redis.UniversalClient, cfg RedisConfig) *Redis {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	capacity := int64(cfg.Capacity)
	if capacity <= 0 {
		capacity = 1
	}
	return &Redis{
		client:   client,
		prefix:   cfg.Prefix,
		ttl:      cfg.TTL,
		capacity: capacity,
		clock:    clock,
	}
}

// Values and the insertion index use disjoint namespaces.
func (r *Redis) key(k string) string {
	return r.prefix + ":v:" + k
}

func (r *Redis) indexKey() string {
	return r.prefix + ":idx"
}

func (r *Redis) Put(ctx context.Context, key string, value []core.ActivityTime) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal session value: %w", err)
	}

	now := r.clock()
	cutoff := strconv.FormatInt(now.Add(-r.ttl).UnixNano(), 10)

	var card *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, r.indexKey(), "-inf", "("+cutoff)
		p.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(now.UnixNano()), Member: key})
		p.Set(ctx, r.key(key), data, r.ttl)
		card = p.ZCard(ctx, r.indexKey())
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}

	over := card.Val() - r.capacity
	if over <= 0 {
		return nil
	}

	evicted, err := r.client.ZPopMin(ctx, r.indexKey(), over).Result()
	if err != nil {
		return fmt.Errorf("redis evict: %w", err)
	}
	keys := make([]string, 0, len(evicted))
	for _, z := range evicted {
		if m, ok := z.Member.(string); ok {
			keys = append(keys, r.key(m))
		}
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis evict: %w", err)
		}
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]core.ActivityTime, bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var value []core.ActivityTime
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false, fmt.Errorf("unmarshal session value: %w", err)
	}
	return value, true, nil
}
