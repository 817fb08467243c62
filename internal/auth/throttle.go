package auth

import (
	"time"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Throttle rate-limits login attempts per key (username and remote address).
// Idle limiters expire after the TTL.
type Throttle struct {
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
	ttl      time.Duration
}

// NewThrottle allows perMinute attempts per key with the given burst
func NewThrottle(perMinute float64, burst int, ttl time.Duration) *Throttle {
	if burst < 1 {
		burst = 1
	}
	return &Throttle{
		limiters: cache.New(ttl, ttl*2),
		limit:    rate.Limit(perMinute / 60),
		burst:    burst,
		ttl:      ttl,
	}
}

// Allow consumes one attempt for key and reports whether it is permitted
func (t *Throttle) Allow(key string) bool {
	return t.limiter(key).Allow()
}

// Reset forgets the key, e.g. after a successful login
func (t *Throttle) Reset(key string) {
	t.limiters.Delete(key)
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	if v, found := t.limiters.Get(key); found {
		if l, ok := v.(*rate.Limiter); ok {
			// sliding expiry
			t.limiters.Set(key, l, t.ttl)
			return l
		}
	}

	l := rate.NewLimiter(t.limit, t.burst)
	if err := t.limiters.Add(key, l, t.ttl); err != nil {
		// lost the race to another request for the same key
		if v, found := t.limiters.Get(key); found {
			if existing, ok := v.(*rate.Limiter); ok {
				return existing
			}
		}
	}
	return l
}
