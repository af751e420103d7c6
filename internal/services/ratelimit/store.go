// Package ratelimit counts requests per client key against fixed budgets.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/denisAlshanov/streamgrab/internal/config"
)

// Result describes the outcome of one Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

// Store records a hit for key and reports whether it fits within rate.
type Store interface {
	Allow(ctx context.Context, key string, rate config.Rate) (Result, error)
	Ping(ctx context.Context) error
	Close() error
}

// NewStore returns a Redis-backed store when an address is configured and
// an in-process store otherwise.
func NewStore(cfg *config.RedisConfig) Store {
	if cfg.Addr == "" {
		return NewMemoryStore()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStore(rdb)
}
