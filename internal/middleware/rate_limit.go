package middleware

import (
	"net"
	"net/http"

	"github.com/evyataryagoni/ipscope/internal/limiter"
	"github.com/evyataryagoni/ipscope/internal/logger"
	"github.com/evyataryagoni/ipscope/internal/models"
	"github.com/go-chi/render"
)

// MsgRateLimited is returned with 429 responses
const MsgRateLimited = "Rate limit exceeded. Please try again later."

// RateLimitMiddleware enforces a per-client request budget (429 when exceeded)
// It runs after chi's RealIP, so RemoteAddr already holds the client address.
// Limiter failures let the request through.
func RateLimitMiddleware(lim limiter.Limiter, log *logger.Logger) func(http.Handler) http.Handler {
	log = log.WithComponent("RateLimit")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := ClientIP(r)

			allowed, err := lim.Allow(r.Context(), client)
			if err != nil {
				log.Warn().Err(err).Str("client", client).Msg("Rate limiter unavailable, allowing request")
			}

			if !allowed {
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, models.ErrorResponse{Error: MsgRateLimited})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of r.RemoteAddr
// RealIP may already have replaced it with a bare address; that is returned as is.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
