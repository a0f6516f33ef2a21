package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tradepost/backend/internal/interfaces/http/dto"
)

// KeyLimiter decides whether one more request for key may proceed
type KeyLimiter interface {
	Allow(key string) bool
}

// RateLimit limits requests per client IP
func RateLimit(limiter KeyLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor
func RateLimitByKey(limiter KeyLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(keyFunc(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				c.GetString(RequestIDContextKey),
			))
			return
		}
		c.Next()
	}
}
