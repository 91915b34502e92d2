package auth

import (
	"log/slog"
	"net/http"

	"github.com/mkranz/labtrack/pkg/debug"
	"github.com/mkranz/labtrack/pkg/observability"
)

// rejectionBody is the fixed 401 response. The message never varies with
// the failure cause (missing, malformed, unsigned, or expired token).
const rejectionBody = `{"error":{"type":"unauthenticated","message":"Could not validate credentials"}}`

// Middleware creates HTTP middleware from an AuthChain. It checks the
// bypass list, runs authentication, and injects the resolved identity
// into the request context.
func Middleware(chain *AuthChain, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check bypass list.
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			// Run auth chain.
			result := chain.Authenticate(r.Context(), r)

			if result.Decision == No {
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)
				observability.AuthFailuresTotal.WithLabelValues("token").Inc()
				http.Error(w, rejectionBody, http.StatusUnauthorized)
				return
			}

			if result.Decision != Yes || result.Identity == nil {
				observability.AuthFailuresTotal.WithLabelValues("missing").Inc()
				http.Error(w, rejectionBody, http.StatusUnauthorized)
				return
			}

			// Validate identity.
			if result.Identity.Subject == "" {
				slog.Error("authenticator returned identity with empty subject")
				http.Error(w, `{"error":{"type":"server_error","message":"internal authentication error"}}`, http.StatusInternalServerError)
				return
			}

			debug.Log("auth", "authentication succeeded",
				"subject", result.Identity.Subject,
				"path", r.URL.Path,
			)

			// Inject identity into context.
			ctx := SetIdentity(r.Context(), result.Identity)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
