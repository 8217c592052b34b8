package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/l33tlabs/leetgate/config"
	"github.com/l33tlabs/leetgate/errors"
	"github.com/l33tlabs/leetgate/server/metrics"
	"golang.org/x/time/rate"
)

type rateLimiters struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
}

var limiters = &rateLimiters{
	visitors: make(map[string]*rate.Limiter),
}

func (l *rateLimiters) GetOrCreate(ip string, create func() *rate.Limiter) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.visitors[ip]
	if !exists {
		limiter = create()
		l.visitors[ip] = limiter
	}

	return limiter
}

// RateLimit implements rate limiting per client IP address. Limits come
// from the gateway configuration; a disabled config yields a no-op
// middleware. The metrics collector may be nil.
func RateLimit(cfg config.RateLimitConfig, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		window := cfg.Window
		if window <= 0 {
			window = time.Minute
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Strip port number from the remote address if present
			ip := r.RemoteAddr
			if idx := strings.LastIndex(ip, ":"); idx != -1 {
				ip = ip[:idx]
			}

			limiter := limiters.GetOrCreate(ip, func() *rate.Limiter {
				return rate.NewLimiter(rate.Every(window/time.Duration(cfg.Requests)), cfg.Requests)
			})

			if !limiter.Allow() {
				if m != nil {
					m.RateLimitHits.WithLabelValues(ip).Inc()
				}
				requestID := GetRequestID(r.Context())
				errors.WriteError(w, errors.NewRateLimitError(requestID))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ResetRateLimiters resets all rate limiters. Only used for testing.
func ResetRateLimiters() {
	limiters.mu.Lock()
	defer limiters.mu.Unlock()
	limiters.visitors = make(map[string]*rate.Limiter)
}
