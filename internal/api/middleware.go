package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"carscene-backend/internal/logger"
	"carscene-backend/internal/security"
)

type contextKey string

const userClaimsKey contextKey = "userClaims"

// Authenticate validates the Bearer token and stores the claims on the
// request context. Requests without a valid access token get a 401.
func Authenticate(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				respondJSON(w, http.StatusUnauthorized, envelope{"success": false, "error": "missing bearer token"})
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil || claims.Type != security.TokenTypeAccess {
				respondJSON(w, http.StatusUnauthorized, envelope{"success": false, "error": "invalid or expired token"})
				return
			}

			ctx := context.WithValue(r.Context(), userClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerID returns the authenticated user's ID, or 0 if the request never
// went through Authenticate.
func CallerID(ctx context.Context) int32 {
	if claims, ok := ctx.Value(userClaimsKey).(*security.UserClaims); ok {
		return claims.UserID
	}
	return 0
}

// RequestLogger logs one line per request with method, path, status and
// duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"durationMs", time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
