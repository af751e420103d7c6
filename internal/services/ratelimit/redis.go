package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/denisAlshanov/streamgrab/internal/config"
)

const redisKeyPrefix = "streamgrab:ratelimit"

// RedisStore counts hits in fixed windows shared by every replica pointing
// at the same Redis.
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		now: time.Now,
	}
}

func (s *RedisStore) Allow(ctx context.Context, key string, rate config.Rate) (Result, error) {
	now := s.now()
	period := rate.Period.Milliseconds()
	window := now.UnixMilli() / period
	windowEnd := time.UnixMilli((window + 1) * period)
	redisKey := fmt.Sprintf("%s:%s:%d:%d", redisKeyPrefix, key, period, window)

	var incr *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, rate.Period)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("rate limit counter %s: %w", redisKey, err)
	}

	count := int(incr.Val())
	result := Result{
		Limit:      rate.Limit,
		ResetAfter: windowEnd.Sub(now),
		Allowed:    count <= rate.Limit,
	}
	if result.Allowed {
		result.Remaining = rate.Limit - count
	}
	return result, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
