package server

import (
	"math"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LimiterConfig configures per-IP connection rate limiting
type LimiterConfig struct {
	// Rate is the sustained number of connections per second per IP.
	// Zero disables limiting.
	Rate float64
	// Burst is the number of connections allowed at once
	Burst int
	// IdleTTL drops the state of IPs not seen for this long
	IdleTTL time.Duration
}

// DefaultLimiterConfig returns sensible defaults for rate limiting
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Rate:    5,
		Burst:   10,
		IdleTTL: 10 * time.Minute,
	}
}

// ipLimiter keeps a token bucket per remote IP
type ipLimiter struct {
	cfg LimiterConfig
	now func() time.Time

	mu        sync.Mutex
	limiters  map[string]*ipEntry
	lastSweep time.Time
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(cfg LimiterConfig, now func() time.Time) *ipLimiter {
	if cfg.Rate <= 0 {
		return nil
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &ipLimiter{
		cfg:      cfg,
		now:      now,
		limiters: make(map[string]*ipEntry),
	}
}

// allow reports whether a connection from addr may proceed. When it may not,
// it also returns how many seconds the client should wait. A nil limiter
// allows everything.
func (l *ipLimiter) allow(addr net.Addr) (bool, int) {
	if l == nil {
		return true, 0
	}

	ip := hostOf(addr)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipEntry{limiter: rate.NewLimiter(rate.Limit(l.cfg.Rate), l.cfg.Burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 1
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, int(math.Ceil(delay.Seconds()))
	}
	return true, 0
}

// sweep drops idle entries at most once per IdleTTL. Callers hold mu.
func (l *ipLimiter) sweep(now time.Time) {
	if l.cfg.IdleTTL <= 0 || now.Sub(l.lastSweep) < l.cfg.IdleTTL {
		return
	}
	l.lastSweep = now
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.cfg.IdleTTL {
			delete(l.limiters, ip)
		}
	}
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// hostOf returns the IP part of a network address
func hostOf(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
