package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/denisAlshanov/streamgrab/internal/config"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

var tenPerMinute = config.Rate{Limit: 10, Period: time.Minute}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("starting miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestStoresEnforceLimit(t *testing.T) {
	redisStore, _ := newTestRedisStore(t)
	memoryStore := NewMemoryStore()
	t.Cleanup(func() { memoryStore.Close() })

	stores := map[string]Store{
		"memory": memoryStore,
		"redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 1; i <= 10; i++ {
				res, err := store.Allow(ctx, "download:10.0.0.1", tenPerMinute)
				if err != nil {
					t.Fatalf("Allow() error = %v", err)
				}
				if !res.Allowed {
					t.Fatalf("request %d rejected, want allowed", i)
				}
				if res.Remaining != 10-i {
					t.Errorf("request %d remaining = %d, want %d", i, res.Remaining, 10-i)
				}
			}

			res, err := store.Allow(ctx, "download:10.0.0.1", tenPerMinute)
			if err != nil {
				t.Fatalf("Allow() error = %v", err)
			}
			if res.Allowed {
				t.Error("11th request allowed, want rejected")
			}
			if res.ResetAfter <= 0 || res.ResetAfter > time.Minute {
				t.Errorf("ResetAfter = %v, want within one minute", res.ResetAfter)
			}

			// other clients are unaffected
			res, err = store.Allow(ctx, "download:10.0.0.2", tenPerMinute)
			if err != nil || !res.Allowed {
				t.Errorf("other client rejected: %+v, %v", res, err)
			}

			if err := store.Ping(ctx); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestMemoryStoreWindowSlides(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clk.now
	t.Cleanup(func() { store.Close() })

	rate := config.Rate{Limit: 2, Period: time.Minute}
	ctx := context.Background()

	store.Allow(ctx, "k", rate)
	clk.advance(30 * time.Second)
	store.Allow(ctx, "k", rate)

	if res, _ := store.Allow(ctx, "k", rate); res.Allowed {
		t.Fatal("third request inside the window allowed")
	}

	// first hit leaves the window
	clk.advance(31 * time.Second)
	if res, _ := store.Allow(ctx, "k", rate); !res.Allowed {
		t.Error("request after the oldest hit expired was rejected")
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clk.now
	t.Cleanup(func() { store.Close() })

	store.Allow(context.Background(), "k", tenPerMinute)
	clk.advance(2 * time.Minute)
	store.cleanup()

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.requests) != 0 || len(store.periods) != 0 {
		t.Errorf("expired keys not removed: %v", store.requests)
	}
}

func TestRedisStoreWindowResets(t *testing.T) {
	store, mr := newTestRedisStore(t)
	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store.now = clk.now

	rate := config.Rate{Limit: 1, Period: time.Minute}
	ctx := context.Background()

	if res, _ := store.Allow(ctx, "info:1.2.3.4", rate); !res.Allowed {
		t.Fatal("first request rejected")
	}
	if res, _ := store.Allow(ctx, "info:1.2.3.4", rate); res.Allowed {
		t.Fatal("second request in the same window allowed")
	}

	clk.advance(time.Minute)
	mr.FastForward(time.Minute)
	if res, _ := store.Allow(ctx, "info:1.2.3.4", rate); !res.Allowed {
		t.Error("request in the next window rejected")
	}

	if len(mr.Keys()) != 1 {
		t.Errorf("expired window keys left behind: %v", mr.Keys())
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Close()

	if _, err := store.Allow(context.Background(), "k", tenPerMinute); err == nil {
		t.Error("Allow() should fail when Redis is down")
	}
	if err := store.Ping(context.Background()); err == nil {
		t.Error("Ping() should fail when Redis is down")
	}
}

func TestNewStore(t *testing.T) {
	memory := NewStore(&config.RedisConfig{})
	defer memory.Close()
	if _, ok := memory.(*MemoryStore); !ok {
		t.Errorf("NewStore without address = %T, want *MemoryStore", memory)
	}

	shared := NewStore(&config.RedisConfig{Addr: "127.0.0.1:6379"})
	defer shared.Close()
	if _, ok := shared.(*RedisStore); !ok {
		t.Errorf("NewStore with address = %T, want *RedisStore", shared)
	}
}

func TestNewTokenBucket(t *testing.T) {
	if NewTokenBucket(0, 10) != nil {
		t.Error("zero rps should disable the bucket")
	}

	bucket := NewTokenBucket(2, 0)
	if bucket == nil {
		t.Fatal("expected a bucket")
	}
	if bucket.Burst() != 2 {
		t.Errorf("Burst() = %d, want 2", bucket.Burst())
	}
	if !bucket.Allow() || !bucket.Allow() {
		t.Error("burst tokens should be available immediately")
	}
	if bucket.Allow() {
		t.Error("third immediate call should be throttled")
	}
}
