package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/streamgrab/internal/utils"
)

const healthCheckTimeout = 5 * time.Second

// Checker reports whether a dependency is usable.
type Checker func(ctx context.Context) error

// CachedChecker reuses the outcome of check for ttl, so unauthenticated
// callers cannot drive an expensive check on every request.
func CachedChecker(check Checker, ttl time.Duration) Checker {
	var (
		mu      sync.Mutex
		checked time.Time
		lastErr error
	)

	return func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()

		if !checked.IsZero() && time.Since(checked) < ttl {
			return lastErr
		}
		lastErr = check(ctx)
		checked = time.Now()
		return lastErr
	}
}

type HealthHandler struct {
	checks map[string]Checker
}

type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Version   string                   `json:"version"`
	Services  map[string]ServiceHealth `json:"services"`
}

type ServiceHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// NewHealthHandler takes named dependency checks, e.g. the rate-limit
// store ping and the extractor backend check.
func NewHealthHandler(checks map[string]Checker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health godoc
// @Summary Health check endpoint
// @Description Check the health of the service and its dependencies
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Success 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   apiVersion,
		Services:  make(map[string]ServiceHealth, len(h.checks)),
	}

	for name, check := range h.checks {
		health := h.runCheck(ctx, name, check)
		response.Services[name] = health
		if health.Status != "healthy" {
			response.Status = "unhealthy"
		}
	}

	if response.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Readiness godoc
// @Summary Readiness check endpoint
// @Description Check if the service is ready to accept requests
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Success 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()

	ready := true
	checks := make(map[string]interface{}, len(h.checks))

	for name, check := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := check(checkCtx)
		cancel()

		if err != nil {
			ready = false
			checks[name] = map[string]interface{}{
				"ready": false,
				"error": err.Error(),
			}
			continue
		}
		checks[name] = map[string]interface{}{
			"ready": true,
		}
	}

	response := map[string]interface{}{
		"ready":     ready,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	if ready {
		c.JSON(http.StatusOK, response)
	} else {
		c.JSON(http.StatusServiceUnavailable, response)
	}
}

// Liveness godoc
// @Summary Liveness check endpoint
// @Description Check if the service is alive
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /live [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	// If this endpoint responds, the process is alive
	c.JSON(http.StatusOK, map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) runCheck(ctx context.Context, name string, check Checker) ServiceHealth {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	err := check(checkCtx)
	responseTime := time.Since(start).String()

	if err != nil {
		utils.LogError(ctx, "Health check failed", err, utils.Fields{"service": name})
		return ServiceHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
			Error:        err.Error(),
		}
	}

	return ServiceHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}
