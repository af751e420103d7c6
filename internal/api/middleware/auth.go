package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/streamgrab/internal/utils"
)

// APIKeyMiddleware requires the X-API-Key header to match apiKey. A
// mismatch is rejected before the request body is looked at.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-API-Key")
		if apiKey != "" && provided != "" && utils.SecureCompare(provided, apiKey) {
			c.Next()
			return
		}

		utils.LogWarn(c.Request.Context(), "Unauthorized access attempt", utils.Fields{
			"ip":   c.ClientIP(),
			"path": c.Request.URL.Path,
		})

		AbortWithError(c, utils.NewUnauthorizedError())
	}
}

// AbortWithError writes the JSON error envelope and stops the chain.
func AbortWithError(c *gin.Context, err *utils.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, err)
}
