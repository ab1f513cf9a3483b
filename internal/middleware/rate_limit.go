package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/evyataryagoni/countrydir/internal/limiter"
	"github.com/evyataryagoni/countrydir/internal/metrics"
	"github.com/evyataryagoni/countrydir/internal/models"
)

// RateLimitMessage is the error body of a throttled action
const RateLimitMessage = "Too many actions. Please try again later."

// RateLimitMiddleware throttles view actions per client (429 when exceeded).
// m may be nil.
func RateLimitMiddleware(lim limiter.Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow(ClientKey(r)) {
				if m != nil {
					m.ActionsRateLimited.Inc()
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(models.ErrorResponse{Error: RateLimitMessage})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey identifies the client of a request.
// Priority: X-Real-IP > first X-Forwarded-For entry > RemoteAddr host.
func ClientKey(r *http.Request) string {
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
