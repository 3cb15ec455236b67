package middleware

import (
	"sync"
	"time"

	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures RateLimiter
type RateLimiterConfig struct {
	Rate       float64                   // requests per second
	Burst      int                       // bucket size
	ExpiryTime time.Duration             // idle limiters are dropped after this
	LimitType  string                    // "ip", "path", "combined" or "custom"
	KeyFunc    func(*gin.Context) string // used when LimitType is "custom"
}

// DefaultRateLimiterConfig allows 10 req/s with bursts of 20 per IP
var DefaultRateLimiterConfig = RateLimiterConfig{
	Rate:       10,
	Burst:      20,
	ExpiryTime: 10 * time.Minute,
	LimitType:  "ip",
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore keeps one token bucket per key
type limiterStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	cfg      RateLimiterConfig
}

func newLimiterStore(cfg RateLimiterConfig) *limiterStore {
	return &limiterStore{visitors: make(map[string]*visitor), cfg: cfg}
}

func (s *limiterStore) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(s.cfg.Rate), s.cfg.Burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep drops limiters idle for longer than ExpiryTime
func (s *limiterStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.cfg.ExpiryTime {
			delete(s.visitors, key)
			removed++
		}
	}
	return removed
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}

func limiterKey(c *gin.Context, cfg RateLimiterConfig) string {
	switch cfg.LimitType {
	case "path":
		return c.FullPath()
	case "combined":
		return c.ClientIP() + ":" + c.FullPath()
	case "custom":
		if cfg.KeyFunc != nil {
			return cfg.KeyFunc(c)
		}
	}
	return c.ClientIP()
}

// RateLimiter rejects requests over the configured rate with 429
func RateLimiter(config ...RateLimiterConfig) gin.HandlerFunc {
	cfg := DefaultRateLimiterConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRateLimiterConfig.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimiterConfig.Burst
	}
	if cfg.ExpiryTime <= 0 {
		cfg.ExpiryTime = DefaultRateLimiterConfig.ExpiryTime
	}
	if cfg.LimitType == "" {
		cfg.LimitType = DefaultRateLimiterConfig.LimitType
	}

	store := newLimiterStore(cfg)
	var sweepMu sync.Mutex
	lastSweep := time.Now()

	return func(c *gin.Context) {
		now := time.Now()

		sweepMu.Lock()
		if now.Sub(lastSweep) > cfg.ExpiryTime {
			lastSweep = now
			sweepMu.Unlock()
			store.sweep(now)
		} else {
			sweepMu.Unlock()
		}

		if !store.get(limiterKey(c, cfg), now).AllowN(now, 1) {
			response.Fail(c, code.ErrTooManyRequests, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IPRateLimiter limits per client IP
func IPRateLimiter(r float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{Rate: r, Burst: burst, LimitType: "ip"})
}

// PathRateLimiter limits per route
func PathRateLimiter(r float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{Rate: r, Burst: burst, LimitType: "path"})
}

// CombinedRateLimiter limits per IP and route
func CombinedRateLimiter(r float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{Rate: r, Burst: burst, LimitType: "combined"})
}
