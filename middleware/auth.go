package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	// TriggerTokenType is the "typ" claim required on ingress tokens.
	TriggerTokenType = "trigger"
	SubjectKey       = "subject"
)

var (
	errSecretNotConfigured = errors.New("JWT secret not configured")
	errInvalidToken        = errors.New("invalid or expired token")
	errInvalidTokenType    = errors.New("invalid token type")
)

// ParseAndValidateToken parses an HS256 token and checks its "typ" claim
// against expectedType when that is non-empty.
func ParseAndValidateToken(tokenStr string, secret []byte, expectedType string) (jwt.MapClaims, error) {
	if len(secret) == 0 {
		return nil, errSecretNotConfigured
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}
	if expectedType != "" {
		if typ, ok := claims["typ"].(string); !ok || typ != expectedType {
			return nil, errInvalidTokenType
		}
	}
	return claims, nil
}

// BearerAuth admits requests carrying a valid trigger token in the
// Authorization header.
func BearerAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
			return
		}
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := ParseAndValidateToken(tokenStr, secret, TriggerTokenType)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		if sub, ok := claims["sub"].(string); ok {
			c.Set(SubjectKey, sub)
		}
		c.Next()
	}
}
