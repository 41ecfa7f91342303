package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/governs-ai/agent-gateway/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":    "user-1",
		"email":  "user@example.com",
		"org_id": "org-1",
		"exp":    time.Now().Add(time.Hour).Unix(),
		"iat":    time.Now().Unix(),
	}
}

func TestJWTValidator_ValidToken(t *testing.T) {
	v := NewJWTValidator(testSecret)
	token := signToken(t, testSecret, validClaims())

	claims, err := v.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)
	assert.Equal(t, "org-1", claims.OrgID)
}

func TestJWTValidator_WrongSecret(t *testing.T) {
	v := NewJWTValidator(testSecret)
	token := signToken(t, "other-secret", validClaims())

	_, err := v.ValidateToken(context.Background(), token)
	require.Error(t, err)
}

func TestJWTValidator_Expired(t *testing.T) {
	v := NewJWTValidator(testSecret)
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := signToken(t, testSecret, claims)

	_, err := v.ValidateToken(context.Background(), token)
	require.Error(t, err)
}

func TestJWTValidator_MissingSubject(t *testing.T) {
	v := NewJWTValidator(testSecret)
	claims := validClaims()
	delete(claims, "sub")
	token := signToken(t, testSecret, claims)

	_, err := v.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing subject")
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthMiddleware(NewJWTValidator(testSecret), zap.NewNop())

	var gotSubject models.Subject
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = GetSubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims()))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", gotSubject.UserID)
		assert.Equal(t, "org-1", gotSubject.OrgID)
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil)
		req.AddCookie(&http.Cookie{Name: authTokenCookieName, Value: signToken(t, testSecret, validClaims())})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestStaticSubject(t *testing.T) {
	subject := models.Subject{UserID: "dev-user"}

	var gotSubject models.Subject
	handler := StaticSubject(subject)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = GetSubjectFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "dev-user", gotSubject.UserID)
}
