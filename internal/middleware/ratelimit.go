package middleware

import (
	"fmt"      // Key formatting
	"net/http" // HTTP status codes
	"sync"     // Guards the limiter map
	"time"     // Rate intervals

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
	"golang.org/x/time/rate"     // Token bucket limiter
)

// visitor is one caller's bucket and when it was last used
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore holds one token bucket per caller
type limiterStore struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	every     rate.Limit
	burst     int
	idle      time.Duration    // Buckets unused this long are full again and can go
	lastSweep time.Time        // Last pass over visitors
	now       func() time.Time // Clock, replaced in tests
}

func newLimiterStore(perMinute, burst int) *limiterStore {
	interval := time.Minute / time.Duration(perMinute)
	return &limiterStore{
		visitors:  make(map[string]*visitor),
		every:     rate.Every(interval),
		burst:     burst,
		idle:      time.Duration(burst)*interval + time.Minute, // Refill time plus slack
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// get returns the limiter for key, creating it on first use
func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= s.idle {
		s.sweep(now)
	}
	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.every, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep drops visitors idle for longer than s.idle; the caller holds s.mu
func (s *limiterStore) sweep(now time.Time) {
	for key, v := range s.visitors {
		if now.Sub(v.lastSeen) >= s.idle {
			delete(s.visitors, key)
		}
	}
	s.lastSweep = now
}

// RateLimitMiddleware allows perMinute sustained requests with the given burst
// for each authenticated user, falling back to the client IP. A perMinute of
// zero or less disables limiting.
func RateLimitMiddleware(perMinute, burst int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	store := newLimiterStore(perMinute, burst)
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP() // Anonymous callers share their IP bucket
		if userID, ok := c.Get("userID"); ok {
			key = fmt.Sprintf("user:%v", userID)
		}
		if !store.get(key).Allow() {
			logrus.WithFields(logrus.Fields{
				"key":  key,
				"path": c.FullPath(),
			}).Warn("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
