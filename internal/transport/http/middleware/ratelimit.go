package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/microfix/dashboard/internal/constants"
	"github.com/microfix/dashboard/pkg/httputils"
)

// WriteLimiter keeps one token bucket per client. Idle clients fall out of the
// LRU after ttl, so memory stays bounded by maxClients.
type WriteLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func NewWriteLimiter(perMinute, maxClients int, ttl time.Duration) *WriteLimiter {
	if maxClients <= 0 {
		maxClients = 1000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &WriteLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxClients, nil, ttl),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

func (l *WriteLimiter) Allow(key string) bool {
	limiter, ok := l.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters.Add(key, limiter)
	}
	return limiter.Allow()
}

// RateLimitMiddleware limits mutating requests per client IP (see clientIP). Reads and
// preflights are never limited; a nil limiter disables the check.
func RateLimitMiddleware(limiter *WriteLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isReadOnly(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow(clientIP(r)) {
				rateLimitedTotal.Inc()
				w.Header().Set("Retry-After", "60")
				httputils.WriteAPIError(w, r, constants.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isReadOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// clientIP keys the limiter on the connection's peer address. Forwarding
// headers are honoured only when a trusted RealIP middleware has already
// rewritten RemoteAddr from them.
func clientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	// chi's RealIP stores a bare IP without a port.
	if ip := net.ParseIP(addr); ip != nil {
		return ip.String()
	}
	return "unknown"
}

// Chain applies middlewares so the first one listed runs outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
