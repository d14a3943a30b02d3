package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/metrics"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/logger"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/response"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RateLimitKeyPrefix namespaces limiter counters in Redis
const RateLimitKeyPrefix = "tvm:ratelimit:"

// WindowCounter increments a counter that resets every window
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitConfig holds fixed-window limiter settings
type RateLimitConfig struct {
	Counter WindowCounter
	// Limit is the number of requests allowed per client per window (0 = unlimited)
	Limit  int
	Window time.Duration
	// Name scopes counters so several limiters can share one store
	Name string
}

// RateLimit throttles requests per client IP with a fixed window.
// The limiter fails open when the counter store is unavailable.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}

	return func(c *gin.Context) {
		if cfg.Counter == nil || cfg.Limit <= 0 {
			c.Next()
			return
		}

		ctx, span := telemetry.StartSpan(c.Request.Context(), "middleware.rate_limit")
		key := RateLimitKeyPrefix + cfg.Name + ":" + c.ClientIP()
		count, err := cfg.Counter.IncrWindow(ctx, key, cfg.Window)
		span.SetAttributes(
			attribute.String("limiter", cfg.Name),
			attribute.Int64("count", count),
		)
		span.End()

		if err != nil {
			logger.Get().Warn("rate limiter unavailable, allowing request",
				zap.String("limiter", cfg.Name),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count > int64(cfg.Limit) {
			metrics.RecordRateLimited(ctx, c.FullPath())
			c.Header("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				response.Error("RATE_LIMITED", "Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
