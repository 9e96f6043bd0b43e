package http

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"loan-simulator/metrics"
)

// clientIP returns the host part of RemoteAddr. chi's RealIP middleware may
// already have replaced it with a bare address.
func clientIP(r *http.Request) string {
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if !limiter.Allow(ip) {
				metrics.RateLimited.Inc()
				wait := limiter.RetryAfter(ip).Seconds()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait))))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
