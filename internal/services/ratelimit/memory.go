package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/denisAlshanov/streamgrab/internal/config"
)

const cleanupInterval = time.Minute

// MemoryStore keeps a sliding window of hit timestamps per key. Counters
// live in this process only.
type MemoryStore struct {
	requests map[string][]time.Time
	periods  map[string]time.Duration
	mu       sync.Mutex
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		requests: make(map[string][]time.Time),
		periods:  make(map[string]time.Duration),
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	// Start cleanup goroutine
	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

// cleanup drops timestamps that fell out of their key's window.
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, times := range s.requests {
		valid := prune(times, now, s.periods[key])
		if len(valid) == 0 {
			delete(s.requests, key)
			delete(s.periods, key)
		} else {
			s.requests[key] = valid
		}
	}
}

func (s *MemoryStore) Allow(ctx context.Context, key string, rate config.Rate) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	valid := prune(s.requests[key], now, rate.Period)
	s.periods[key] = rate.Period

	result := Result{Limit: rate.Limit}
	if len(valid) > 0 {
		result.ResetAfter = valid[0].Add(rate.Period).Sub(now)
	} else {
		result.ResetAfter = rate.Period
	}

	// Check if limit exceeded
	if len(valid) >= rate.Limit {
		s.requests[key] = valid
		return result, nil
	}

	valid = append(valid, now)
	s.requests[key] = valid
	result.Allowed = true
	result.Remaining = rate.Limit - len(valid)
	return result, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

func prune(times []time.Time, now time.Time, window time.Duration) []time.Time {
	valid := times[:0:0]
	for _, t := range times {
		if now.Sub(t) < window {
			valid = append(valid, t)
		}
	}
	return valid
}
