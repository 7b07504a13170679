package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/restapp/backend/internal/logging"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitMiddleware limits per client IP. Limiter errors let the request
// through.
func RateLimitMiddleware(limiter RateLimiter, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
