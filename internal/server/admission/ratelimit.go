package admission

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/wirehttp/pkg/cmap"
)

// RateLimiter keeps one token bucket per key. A nil *RateLimiter allows
// everything.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *cmap.Map[*limiterEntry]
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// NewRateLimiter creates a registry allowing perSecond events per key with
// a burst of the same size. perSecond <= 0 returns nil.
func NewRateLimiter(perSecond int) *RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	return &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    perSecond,
		limiters: cmap.New[*limiterEntry](),
		now:      time.Now,
	}
}

// Allow reports whether an event for key may happen now.
func (r *RateLimiter) Allow(key string) bool {
	if r == nil {
		return true
	}
	now := r.now()
	e, ok := r.limiters.Get(key)
	if !ok {
		// Losing a creation race just means adopting the winner's bucket.
		e, _ = r.limiters.GetOrSet(key, &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)})
	}
	e.lastSeen.Store(now.UnixNano())
	return e.limiter.AllowN(now, 1)
}

// Prune drops limiters whose key has not been seen for longer than idle
// and returns how many were removed.
func (r *RateLimiter) Prune(idle time.Duration) int {
	if r == nil {
		return 0
	}
	cutoff := r.now().Add(-idle).UnixNano()
	return r.limiters.DeleteFunc(func(_ string, e *limiterEntry) bool {
		return e == nil || e.lastSeen.Load() < cutoff
	})
}

// Len returns the number of tracked keys.
func (r *RateLimiter) Len() int {
	if r == nil {
		return 0
	}
	return r.limiters.Count()
}
