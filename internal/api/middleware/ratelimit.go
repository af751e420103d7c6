package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/denisAlshanov/streamgrab/internal/config"
	"github.com/denisAlshanov/streamgrab/internal/services/ratelimit"
	"github.com/denisAlshanov/streamgrab/internal/utils"
)

// RateRule is one budget applied per client address. Rules sharing a Name
// share counters across routes.
type RateRule struct {
	Name string
	Rate config.Rate
}

// RateLimitMiddleware checks rules in order and rejects with 429 on the
// first exhausted budget. Each check charges its rule, so a request turned
// away by a later rule still counts against the earlier ones. Store failures
// let the request through.
func RateLimitMiddleware(store ratelimit.Store, rules ...RateRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := c.ClientIP()

		for i, rule := range rules {
			res, err := store.Allow(ctx, rule.Name+":"+key, rule.Rate)
			if err != nil {
				utils.LogError(ctx, "Rate limit store unavailable", err, utils.Fields{
					"rule": rule.Name,
				})
				continue
			}

			if i == 0 {
				c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
				c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			}

			if !res.Allowed {
				c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(res.ResetAfter)))
				utils.LogWarn(ctx, "Rate limit exceeded", utils.Fields{
					"ip":    key,
					"rule":  rule.Name,
					"limit": rule.Rate.String(),
				})
				AbortWithError(c, utils.NewRateLimitError(rule.Rate.String()))
				return
			}
		}

		c.Next()
	}
}

// ThrottleMiddleware applies a process-wide token bucket, independent of
// the client address.
func ThrottleMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			AbortWithError(c, utils.NewRateLimitError("server busy"))
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) int {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
