package http

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"sitemate/internal/logging"
)

const requestIDKey = "request_id"

func (a *Adapter) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (a *Adapter) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		a.mu.Lock()
		a.requestCount++
		a.totalLatencyMs += time.Since(start).Milliseconds()
		if status >= http.StatusInternalServerError {
			a.errorCount++
		}
		a.mu.Unlock()

		a.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.String("request_id", c.GetString(requestIDKey)),
			logging.Elapsed(start),
		)
	}
}

func (a *Adapter) recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		a.logger.Error("panic in handler", zap.String("panic", fmt.Sprint(recovered)))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{
			Error:     "internal server error",
			RequestID: c.GetString(requestIDKey),
		})
	})
}

func (a *Adapter) bodyLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.config.MaxBodySize)
		}
		c.Next()
	}
}

// ipRateLimiter keeps one token bucket per client IP
type ipRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

func newIPRateLimiter(perSecond float64, burst int) *ipRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &ipRateLimiter{
		ips: make(map[string]*rate.Limiter),
		r:   rate.Limit(perSecond),
		b:   burst,
	}
}

func (i *ipRateLimiter) get(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, ok := i.ips[ip]
	if !ok {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = limiter
	}
	return limiter
}

func (i *ipRateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !i.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody{
				Error:     "rate limit exceeded",
				RequestID: c.GetString(requestIDKey),
			})
			return
		}
		c.Next()
	}
}
