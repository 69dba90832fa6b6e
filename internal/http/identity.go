package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/hperssn/buildcalc/internal/logging"
)

type contextKey string

const identityKey contextKey = "identity"

// identityHeaders are checked in order; the reverse proxy in front of the
// service authenticates the caller and sets one of them.
var identityHeaders = []string{"X-Auth-User", "X-Forwarded-User", "Remote-User"}

// Identity resolves the caller from the proxy headers, rejects anonymous
// requests and attaches a request scoped logger.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var identity string
		for _, h := range identityHeaders {
			if identity = r.Header.Get(h); identity != "" {
				break
			}
		}

		log := logging.FromContext(r.Context()).With("request_id", middleware.GetReqID(r.Context()))
		if identity == "" {
			log.Warn("request without identity", "path", r.URL.Path)
			respondError(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		ctx = logging.WithLogger(ctx, log.With("identity", identity))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFrom returns the caller resolved by Identity.
func IdentityFrom(r *http.Request) string {
	identity, _ := r.Context().Value(identityKey).(string)
	return identity
}

// withLogger makes log the base logger of every request.
func withLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), log)))
		})
	}
}
