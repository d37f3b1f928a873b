package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"carscene-backend/internal/security"
)

func TestAuthenticate(t *testing.T) {
	tokens := security.NewTokenManager("test-secret-at-least-32-characters!!", 60, 10080)

	var seenCallerID int32
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenCallerID = CallerID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(tokens)(next)

	t.Run("ValidAccessToken", func(t *testing.T) {
		token, err := tokens.GenerateAccessToken(7, "ari")
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/inbox", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int32(7), seenCallerID)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/inbox", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("RefreshTokenRejected", func(t *testing.T) {
		token, err := tokens.GenerateRefreshToken(7, "ari")
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/inbox", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/inbox", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
