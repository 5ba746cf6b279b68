package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/auth"
	"github.com/Arisudan/Varshini-Industrries/internal/logging"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// RequireAuth rejects requests the strategy cannot authenticate.
func RequireAuth(strategy auth.Strategy) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := strategy.Authenticate(c.Request)
		if err != nil {
			slog.Debug("auth rejected", "path", c.Request.URL.Path, "error", err)
			respondError(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Set(logging.UserKey, p.Username)
		c.Next()
	}
}

func principalFrom(c *gin.Context) *auth.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*auth.Principal); ok {
			return p
		}
	}
	return nil
}

// RateLimiter allows one request per client IP per window.
type RateLimiter struct {
	visitors sync.Map
	window   time.Duration
	now      func() time.Time
}

// NewRateLimiter starts a limiter whose cleanup loop stops with ctx.
func NewRateLimiter(ctx context.Context, window time.Duration) *RateLimiter {
	rl := &RateLimiter{window: window, now: time.Now}
	go rl.cleanup(ctx)
	return rl
}

// cleanup drops visitors not seen within the window.
func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := rl.now()
			rl.visitors.Range(func(key, value any) bool {
				if now.Sub(value.(time.Time)) > rl.window {
					rl.visitors.Delete(key)
				}
				return true
			})
		}
	}
}

// Allow records a hit from ip and reports whether it is within the limit.
func (rl *RateLimiter) Allow(ip string) bool {
	now := rl.now()
	if last, ok := rl.visitors.Load(ip); ok && now.Sub(last.(time.Time)) < rl.window {
		return false
	}
	rl.visitors.Store(ip, now)
	return true
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.window <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			slog.Warn("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)
			respondError(c, apperr.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
