package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smaraba1/payroll-processing/pkg/response"
)

// CodeTooManyRequests envelope code for a throttled request.
const CodeTooManyRequests = 10004

// Limiter records a hit under key and reports whether it is still allowed.
// *redis.Client implements it with a sorted-set sliding window.
type Limiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit throttles each client IP per route. A nil limiter disables it and
// a limiter error fails open so a Redis outage never locks users out of login.
func RateLimit(l Limiter, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(window.Round(time.Second) / time.Second))

	return func(c *gin.Context) {
		if l == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s", c.FullPath(), c.ClientIP())
		allowed, err := l.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			logger.Info("request throttled",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.FullPath()),
			)
			c.Header("Retry-After", retryAfter)
			response.Error(c, http.StatusTooManyRequests, CodeTooManyRequests, "Too many requests, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
