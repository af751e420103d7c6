package ratelimit

import (
	"math"

	"golang.org/x/time/rate"
)

// NewTokenBucket returns a process-wide limiter refilling rps tokens per
// second, or nil when rps is not positive. A zero burst defaults to one
// second's worth of tokens.
func NewTokenBucket(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = int(math.Ceil(rps))
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
