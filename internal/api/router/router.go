package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"

	"github.com/denisAlshanov/streamgrab/internal/api/handlers"
	"github.com/denisAlshanov/streamgrab/internal/api/middleware"
	"github.com/denisAlshanov/streamgrab/internal/config"
	"github.com/denisAlshanov/streamgrab/internal/services/ratelimit"
	"github.com/denisAlshanov/streamgrab/internal/utils"
)

// Rule names double as counter key prefixes in the rate-limit store.
const (
	ruleGlobal   = "global"
	ruleDownload = "download"
	ruleInfo     = "info"
	ruleHome     = "home"
)

type Router struct {
	engine *gin.Engine
	config *config.Config
}

// Dependencies are the wired services the routes serve. Throttle may be
// nil to disable the process-wide token bucket.
type Dependencies struct {
	MediaHandler  *handlers.MediaHandler
	HomeHandler   *handlers.HomeHandler
	HealthHandler *handlers.HealthHandler
	LimitStore    ratelimit.Store
	Throttle      *rate.Limiter
}

func NewRouter(cfg *config.Config, deps Dependencies) *Router {
	// Set Gin mode
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Add middleware
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		middleware.AbortWithError(c, utils.NewInternalError(fmt.Errorf("panic: %v", recovered)))
	}))
	engine.Use(middleware.CorrelationIDMiddleware())
	if cfg.CORS.Enabled && len(cfg.CORS.AllowedOrigins) > 0 {
		engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	}

	// Health endpoints (no auth required)
	health := engine.Group("/")
	{
		health.GET("/health", deps.HealthHandler.Health)
		health.GET("/ready", deps.HealthHandler.Readiness)
		health.GET("/live", deps.HealthHandler.Liveness)
	}

	// Swagger documentation (no auth required)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limit := func(route string, routeRate config.Rate) []gin.HandlerFunc {
		var chain []gin.HandlerFunc
		if deps.Throttle != nil {
			chain = append(chain, middleware.ThrottleMiddleware(deps.Throttle))
		}
		if cfg.RateLimit.Enabled && deps.LimitStore != nil {
			chain = append(chain, middleware.RateLimitMiddleware(deps.LimitStore,
				middleware.RateRule{Name: route, Rate: routeRate},
				middleware.RateRule{Name: ruleGlobal, Rate: cfg.RateLimit.Global},
			))
		}
		return chain
	}

	engine.GET("/", append(limit(ruleHome, cfg.RateLimit.Home), deps.HomeHandler.Home)...)

	// Rate limits run before the API key check
	api := engine.Group("/api")
	{
		api.POST("/download", append(limit(ruleDownload, cfg.RateLimit.Download),
			middleware.APIKeyMiddleware(cfg.API.APIKey),
			deps.MediaHandler.Download,
		)...)
		api.GET("/info", append(limit(ruleInfo, cfg.RateLimit.Info),
			middleware.APIKeyMiddleware(cfg.API.APIKey),
			deps.MediaHandler.Info,
		)...)
	}

	return &Router{
		engine: engine,
		config: cfg,
	}
}

// Server returns an http.Server for the configured address. Write timeout
// leaves room for a full extraction.
func (r *Router) Server() *http.Server {
	return &http.Server{
		Addr:              r.config.Server.Host + ":" + r.config.Server.Port,
		Handler:           r.engine,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      r.config.Extractor.Timeout + 15*time.Second,
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
