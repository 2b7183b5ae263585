package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// defaultMaxBuckets bounds the number of tracked client IPs.
	defaultMaxBuckets = 10000
	// defaultBucketIdle is how long an untouched bucket is kept.
	defaultBucketIdle = 10 * time.Minute
)

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter limits requests per client IP using a token bucket per IP.
type IPRateLimiter struct {
	ips   map[string]*bucket
	mu    sync.Mutex
	limit rate.Limit
	burst int

	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
	// MaxBuckets caps tracked IPs; idle buckets are evicted first, then the oldest.
	MaxBuckets int
	// IdleTimeout is how long a bucket survives without requests.
	IdleTimeout time.Duration

	now func() time.Time
}

// NewIPRateLimiter creates a per-IP rate limiter. limit is events per second;
// for N per minute use rate.Limit(float64(N)/60.0). burst is max tokens per bucket.
func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:         make(map[string]*bucket),
		limit:       limit,
		burst:       burst,
		MaxBuckets:  defaultMaxBuckets,
		IdleTimeout: defaultBucketIdle,
		now:         time.Now,
	}
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if b, ok := l.ips[ip]; ok {
		b.lastSeen = now
		return b.lim
	}
	if l.MaxBuckets > 0 && len(l.ips) >= l.MaxBuckets {
		l.evict(now)
	}
	b := &bucket{lim: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
	l.ips[ip] = b
	return b.lim
}

// evict drops idle buckets; when none are idle it drops the least recently seen one.
// Caller holds l.mu.
func (l *IPRateLimiter) evict(now time.Time) {
	var oldestIP string
	var oldest time.Time
	removed := false
	for ip, b := range l.ips {
		if now.Sub(b.lastSeen) > l.IdleTimeout {
			delete(l.ips, ip)
			removed = true
			continue
		}
		if oldestIP == "" || b.lastSeen.Before(oldest) {
			oldestIP, oldest = ip, b.lastSeen
		}
	}
	if !removed && oldestIP != "" {
		delete(l.ips, oldestIP)
	}
}

// Len reports the number of tracked client IPs.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ips)
}

// clientIP returns the peer address from RemoteAddr. With trustProxy set,
// X-Forwarded-For and then X-Real-IP take precedence.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// First value is the client when behind a single proxy
			return strings.TrimSpace(strings.Split(xff, ",")[0])
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware returns 429 with a Retry-After hint when the client IP exceeds the rate.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lim := l.getLimiter(clientIP(r, l.TrustProxyHeaders))
		if !lim.Allow() {
			retry := 1
			if l.limit > 0 {
				retry = int(1/float64(l.limit)) + 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeError(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthRateLimiter returns a limiter for the anonymous register/login endpoints:
// perMinute requests per minute per IP with the given burst.
func AuthRateLimiter(perMinute, burst int, trustProxy bool) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 5
	}
	l := NewIPRateLimiter(rate.Limit(float64(perMinute)/60.0), burst)
	l.TrustProxyHeaders = trustProxy
	return l
}
