package ratelimit

import (
	"fmt"
	"net/http"
	"strings"

	"cinebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Middleware applies the rate limiter to every request
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		// Determine rate limit type from route
		limitType := getRateLimitType(c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			// Limiter failure must not take down customer-facing paths
			c.Next()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			response.Error(c, http.StatusTooManyRequests,
				"Rate limit exceeded", map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

func getRateLimitType(path string) RateLimitType {
	switch {
	// Health/monitoring endpoints
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"),
		strings.HasPrefix(path, "/metrics"):
		return RateLimitTypeHealth

	// Seat-acquiring booking flow
	case strings.Contains(path, "/bookings"):
		return RateLimitTypeBooking

	// Read-only browse surface
	case strings.Contains(path, "/showings"),
		strings.Contains(path, "/halls"),
		strings.Contains(path, "/prices"):
		return RateLimitTypePublic

	default:
		return RateLimitTypeDefault
	}
}
