package rate_limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const visitorIdleTimeout = 5 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors = make(map[string]*clientLimiter)
	mu       sync.Mutex

	// Unlimited until Configure is called.
	limit = rate.Inf
	burst = 1
)

// Configure sets the per client rate and burst. Existing visitors are reset
// so the new limits apply to everyone. rps <= 0 disables limiting.
func Configure(rps float64, b int) {
	mu.Lock()
	defer mu.Unlock()

	if rps <= 0 {
		limit = rate.Inf
	} else {
		limit = rate.Limit(rps)
	}
	burst = max(b, 1)
	visitors = make(map[string]*clientLimiter)
}

func GetVisitor(key string) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, exists := visitors[key]
	if !exists {
		limiter := rate.NewLimiter(limit, burst)
		visitors[key] = &clientLimiter{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// Allow reports whether the client identified by key may make a request now.
func Allow(key string) bool {
	return GetVisitor(key).Allow()
}

// StartVisitorCleanupLoop forgets clients idle for more than five minutes. It
// returns when ctx is done.
func StartVisitorCleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removeIdle(now)
		}
	}
}

func removeIdle(now time.Time) {
	mu.Lock()
	defer mu.Unlock()
	for key, v := range visitors {
		if now.Sub(v.lastSeen) > visitorIdleTimeout {
			delete(visitors, key)
		}
	}
}

func CleanupAllVisitors() {
	mu.Lock()
	defer mu.Unlock()
	visitors = make(map[string]*clientLimiter)
}
