package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func sign(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JwtAuthMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString(PlayerIDKey), "name": c.GetString(PlayerNameKey)})
	})
	return r
}

func do(r *gin.Engine, target, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJwtAuthMiddleware(t *testing.T) {
	r := newRouter()
	valid := sign(t, secret, jwt.MapClaims{
		"sub":  "0xabc",
		"name": "alice",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		target string
		auth   string
		code   int
	}{
		{"bearer header", "/me", "Bearer " + valid, http.StatusOK},
		{"query token", "/me?token=" + valid, "", http.StatusOK},
		{"missing", "/me", "", http.StatusUnauthorized},
		{"malformed header", "/me", "Token " + valid, http.StatusUnauthorized},
		{"garbage", "/me", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong key", "/me", "Bearer " + sign(t, []byte("other"), jwt.MapClaims{
			"sub": "0xabc", "exp": time.Now().Add(time.Hour).Unix(),
		}), http.StatusUnauthorized},
		{"expired", "/me", "Bearer " + sign(t, secret, jwt.MapClaims{
			"sub": "0xabc", "exp": time.Now().Add(-time.Minute).Unix(),
		}), http.StatusUnauthorized},
		{"no exp", "/me", "Bearer " + sign(t, secret, jwt.MapClaims{"sub": "0xabc"}), http.StatusUnauthorized},
		{"no subject", "/me", "Bearer " + sign(t, secret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.target, tt.auth)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.JSONEq(t, `{"id":"0xabc","name":"alice"}`, w.Body.String())
			}
		})
	}
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "x", "exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(secret, raw)
	assert.Error(t, err)
}
