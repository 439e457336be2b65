package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// idleTTL is how long a bucket may go unused before it is dropped. A full
// bucket refills within a minute, so a dropped key starts over at full burst
// exactly as it would have.
const idleTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per authenticated manager.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*bucket
	limit     rate.Limit
	burst     int
	log       logrus.FieldLogger
	now       func() time.Time
	lastPrune time.Time
}

// NewRateLimiter allows perMinute requests per key with a burst of the same size.
func NewRateLimiter(perMinute int, log logrus.FieldLogger) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimiter{
		limiters: make(map[string]*bucket),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		log:      log,
		now:      time.Now,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastPrune) >= idleTTL {
		rl.prune(now)
	}

	b, exists := rl.limiters[key]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// prune drops buckets idle for longer than idleTTL. Callers hold mu.
func (rl *RateLimiter) prune(now time.Time) {
	for key, b := range rl.limiters {
		if now.Sub(b.lastSeen) > idleTTL {
			delete(rl.limiters, key)
		}
	}
	rl.lastPrune = now
}

// Len reports how many buckets are held.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Allow consumes one token for key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Reset forgets every bucket.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.limiters = make(map[string]*bucket)
}

// Handler limits by manager id, falling back to the client IP before authentication.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if managerID, err := GetManagerIDFromContext(c); err == nil {
			key = "manager:" + strconv.FormatUint(uint64(managerID), 10)
		}

		if !rl.Allow(key) {
			rl.log.WithFields(logrus.Fields{
				"key":    key,
				"path":   c.FullPath(),
				"method": c.Request.Method,
			}).Info("rate limit exceeded")
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, slow down"})
			return
		}
		c.Next()
	}
}
