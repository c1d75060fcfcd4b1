package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/okarpenko/staybase/internal/auth"
)

// basicRealm is the challenge realm sent when Basic credentials are
// missing.
const basicRealm = `Basic realm="Secure Area"`

// BasicAuth returns a middleware gating routes behind HTTP Basic
// authentication. A request without credentials gets a 401 with a
// WWW-Authenticate challenge; bad credentials get a 401 without one.
// The authenticated identity is attached to the request context.
func BasicAuth(authenticator auth.Authenticator, logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := authenticator.Authenticate(r)
			if err != nil {
				logAuthFailure(logger, r, err)

				switch {
				case errors.Is(err, auth.ErrNoCredentials):
					w.Header().Set("WWW-Authenticate", basicRealm)
					writeJSONError(w, http.StatusUnauthorized, "msg", "Authorization required")
				case errors.Is(err, auth.ErrInvalidCredentials):
					writeJSONError(w, http.StatusUnauthorized, "msg", "Authorization failed")
				default:
					writeJSONError(w, http.StatusInternalServerError, "msg", "Internal server error")
				}

				return
			}

			ctx := auth.WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OperatorAuth returns a middleware gating routes behind a bearer
// token belonging to an operator. Verification failures of any kind
// map to a generic 401; an authenticated non-operator gets a 403.
func OperatorAuth(authenticator auth.Authenticator, logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := authenticator.Authenticate(r)
			if err != nil {
				logAuthFailure(logger, r, err)

				switch {
				case errors.Is(err, auth.ErrNoCredentials):
					writeJSONError(w, http.StatusUnauthorized, "message", "Authentication required")
				case errors.Is(err, auth.ErrPermissionDenied):
					writeJSONError(w, http.StatusForbidden, "message", "Operator access required")
				default:
					writeJSONError(w, http.StatusUnauthorized, "message", "Invalid token")
				}

				return
			}

			if err := auth.Authorize(id, auth.CapabilityManageHotels); err != nil {
				logAuthFailure(logger, r, err)
				writeJSONError(w, http.StatusForbidden, "message", "Operator access required")
				return
			}

			ctx := auth.WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func logAuthFailure(logger *zap.Logger, r *http.Request, err error) {
	logger.Warn("authentication failed",
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("remote_addr", r.RemoteAddr),
		zap.Error(err),
	)
}

// writeJSONError writes a single-field JSON error body. The articles
// routes use "msg" while the hotels routes use "message".
func writeJSONError(w http.ResponseWriter, status int, key, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{key: message})
}
