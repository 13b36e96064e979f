package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type routeLimit struct {
	limit rate.Limit
	burst int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP. Routes can carry stricter
// limits than the default, keyed by the gin route pattern.
type RateLimiter struct {
	mu            sync.Mutex
	visitors      map[string]*visitor
	blocked       map[string]time.Time
	routes        map[string]routeLimit
	defaultLimit  rate.Limit
	defaultBurst  int
	blockDuration time.Duration
	idleTTL       time.Duration
	now           func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		visitors:      make(map[string]*visitor),
		blocked:       make(map[string]time.Time),
		routes:        make(map[string]routeLimit),
		defaultLimit:  rate.Every(100 * time.Millisecond), // 10 req/s
		defaultBurst:  20,
		blockDuration: 5 * time.Minute,
		idleTTL:       time.Hour,
		now:           time.Now,
	}
}

// Route sets the limit for one route pattern, e.g. "/api/user/send-otp".
func (r *RateLimiter) Route(pattern string, limit rate.Limit, burst int) *RateLimiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[pattern] = routeLimit{limit: limit, burst: burst}
	return r
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			c.Next()
			return
		}

		ip := c.ClientIP()
		route := c.FullPath()
		now := r.now()

		r.mu.Lock()
		if until, ok := r.blocked[ip]; ok {
			if now.Before(until) {
				r.mu.Unlock()
				tooMany(c, until)
				return
			}
			delete(r.blocked, ip)
			r.dropVisitors(ip)
		}

		lim := r.limiterFor(ip, route, now)
		if !lim.AllowN(now, 1) {
			until := now.Add(r.blockDuration)
			r.blocked[ip] = until
			r.mu.Unlock()
			tooMany(c, until)
			return
		}
		r.mu.Unlock()

		c.Next()
	}
}

// Cleanup drops idle visitors and expired blocks until ctx is done.
func (r *RateLimiter) Cleanup(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.prune(r.now())
		}
	}
}

func (r *RateLimiter) prune(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ip, until := range r.blocked {
		if now.After(until) {
			delete(r.blocked, ip)
		}
	}
	for key, v := range r.visitors {
		if now.Sub(v.lastSeen) > r.idleTTL {
			delete(r.visitors, key)
		}
	}
}

// limiterFor must be called with mu held.
func (r *RateLimiter) limiterFor(ip, route string, now time.Time) *rate.Limiter {
	limit, burst := r.defaultLimit, r.defaultBurst
	key := ip
	if rl, ok := r.routes[route]; ok {
		limit, burst = rl.limit, rl.burst
		key = ip + " " + route
	}
	v, ok := r.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(limit, burst)}
		r.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// dropVisitors must be called with mu held.
func (r *RateLimiter) dropVisitors(ip string) {
	for key := range r.visitors {
		if key == ip || strings.HasPrefix(key, ip+" ") {
			delete(r.visitors, key)
		}
	}
}

func tooMany(c *gin.Context, until time.Time) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"message":    "Too many requests",
		"retryAfter": until.UTC().Format(time.RFC3339),
	})
}
