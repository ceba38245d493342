package store

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisCounter keeps per-organization monthly usage counters. INCRBY is
// atomic, which is what lets concurrent classifier calls share one counter
// safely.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func key(orgID, period string) string { return "quota:" + orgID + ":" + period }

func (r *RedisCounter) Used(ctx context.Context, orgID, period string) (int, error) {
	val, err := r.client.Get(ctx, key(orgID, period)).Result()
	if err == redis.Nil {
		return 0, nil // no usage yet this period
	}
	if err != nil {
		return 0, err
	}
	used, err := strconv.Atoi(val)
	if err != nil {
		return 0, err
	}
	return used, nil
}

func (r *RedisCounter) Increment(ctx context.Context, orgID, period string, n int) error {
	return r.client.IncrBy(ctx, key(orgID, period), int64(n)).Err()
}
