package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	signingKey = "test-signing-key"
	userID     = "5a0c2f4e-6b7d-4e8f-9a1b-2c3d4e5f6a7b"
)

func echoUserID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "no user", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(id))
	})
}

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateJWTToken(userID, signingKey, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWTToken(token, signingKey)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
}

func TestValidateRejects(t *testing.T) {
	expired, err := GenerateJWTToken(userID, signingKey, -time.Minute)
	require.NoError(t, err)

	wrongKey, err := GenerateJWTToken(userID, "other-key", time.Hour)
	require.NoError(t, err)

	notUUID, err := GenerateJWTToken("42", signingKey, time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":   expired,
		"wrong key": wrongKey,
		"not uuid":  notUUID,
		"alg none":  none,
		"garbage":   "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateJWTToken(token, signingKey)
			assert.Error(t, err)
		})
	}
}

func TestJWTMiddleware(t *testing.T) {
	token, err := GenerateJWTToken(userID, signingKey, time.Hour)
	require.NoError(t, err)
	handler := JWTMiddleware(echoUserID(), signingKey)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, rec.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("query token only for websocket upgrades", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events?access_token="+token, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/api/events?access_token="+token, nil)
		req.Header.Set("Upgrade", "websocket")
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, rec.Body.String())
	})
}
