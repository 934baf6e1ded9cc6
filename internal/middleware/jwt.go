package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set for authenticated requests.
const (
	PlayerIDKey   = "playerId"
	PlayerNameKey = "playerName"
)

var errMissingToken = errors.New("missing token")

// JwtAuthMiddleware accepts "Authorization: Bearer <jwt>" or ?token=<jwt>
// (browsers cannot set headers on a websocket upgrade).
func JwtAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := tokenFrom(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		claims, err := ParseToken(secret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		sub, _ := claims.GetSubject()
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}
		c.Set(PlayerIDKey, sub)
		if name, ok := claims["name"].(string); ok {
			c.Set(PlayerNameKey, name)
		}
		c.Next()
	}
}

func tokenFrom(c *gin.Context) (string, error) {
	if h := c.GetHeader("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok && strings.TrimSpace(t) != "" {
			return strings.TrimSpace(t), nil
		}
		return "", errors.New("malformed authorization header")
	}
	if t := c.Query("token"); t != "" {
		return t, nil
	}
	return "", errMissingToken
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(secret []byte, raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return claims, nil
}
