package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/streamgrab/internal/config"
	"github.com/denisAlshanov/streamgrab/internal/models"
)

const apiVersion = "2.0"

type HomeHandler struct {
	doc models.CapabilityResponse
}

// NewHomeHandler builds the capability document once; rate-limit strings
// follow the configured thresholds.
func NewHomeHandler(limits *config.RateLimitConfig) *HomeHandler {
	apiKeyHeader := map[string]string{"X-API-Key": "your-api-key"}

	return &HomeHandler{
		doc: models.CapabilityResponse{
			Message: "YouTube Downloader API",
			Version: apiVersion,
			Endpoints: map[string]models.EndpointDoc{
				"/api/download": {
					Method:  http.MethodPost,
					Headers: apiKeyHeader,
					Body: map[string]string{
						"url":  "https://youtube.com/watch?v=...",
						"type": "audio or video",
					},
				},
				"/api/info": {
					Method:  http.MethodGet,
					Headers: apiKeyHeader,
					QueryParams: map[string]string{
						"url": "https://youtube.com/watch?v=...",
					},
				},
			},
			RateLimits: map[string]string{
				"download": limits.Download.String(),
				"info":     limits.Info.String(),
				"global":   limits.Global.String(),
			},
		},
	}
}

// Home godoc
// @Summary API capability document
// @Description Describe the available endpoints and rate limits
// @Tags meta
// @Produce json
// @Success 200 {object} models.CapabilityResponse
// @Failure 429 {object} utils.AppError
// @Router / [get]
func (h *HomeHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, h.doc)
}
