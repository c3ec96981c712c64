package server

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// minIdleTTL is the shortest time a client's limiter is kept after its last request.
const minIdleTTL = 10 * time.Minute

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// clientLimiter rate limits evidence uploads per client address. Entries idle
// for longer than idleTTL are evicted when a new client is added; by then their
// bucket has refilled, so a fresh limiter behaves the same.
type clientLimiter struct {
	mu        sync.RWMutex
	limiters  map[string]*clientEntry
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	idle := minIdleTTL
	if perSecond <= 0 {
		limit = rate.Inf
	} else if refill := time.Duration(float64(burst) / perSecond * float64(time.Second)); refill > idle {
		idle = refill
	}
	return &clientLimiter{
		limiters: make(map[string]*clientEntry),
		rate:     limit,
		burst:    burst,
		idleTTL:  idle,
		now:      time.Now,
	}
}

// Allow reports whether a request from remoteAddr may proceed now.
func (l *clientLimiter) Allow(remoteAddr string) bool {
	now := l.now()
	return l.get(clientKey(remoteAddr), now).AllowN(now, 1)
}

func (l *clientLimiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.RLock()
	e, ok := l.limiters[key]
	l.mu.RUnlock()
	if ok {
		e.lastSeen.Store(now.UnixNano())
		return e.limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.limiters[key]; ok {
		e.lastSeen.Store(now.UnixNano())
		return e.limiter
	}
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.evictIdleLocked(now)
	}
	e = &clientEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
	e.lastSeen.Store(now.UnixNano())
	l.limiters[key] = e
	return e.limiter
}

func (l *clientLimiter) evictIdleLocked(now time.Time) {
	cutoff := now.Add(-l.idleTTL).UnixNano()
	for key, e := range l.limiters {
		if e.lastSeen.Load() <= cutoff {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

func clientKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
