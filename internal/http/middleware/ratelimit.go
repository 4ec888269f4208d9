package middleware

import (
	"net"
	"net/http"

	rl "github.com/rogerio-castellano/ecommerce-analytics/internal/http/rate_limiter"
)

// RateLimit answers 429 once a client exceeds its token bucket. Clients are
// keyed by remote IP, so it should run after chi's RealIP.
func RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
