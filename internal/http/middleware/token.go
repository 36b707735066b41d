package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vnxcius/accounts-api/internal/auth"
	"github.com/vnxcius/accounts-api/internal/token"
)

const claimsContextKey = "auth.claims"

func TokenAuth(authenticator auth.Authenticator) gin.HandlerFunc {
	const bearerTokenPrefix = "Bearer "

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"type":    "error",
				"message": "Token not found",
			})
			return
		}

		if !strings.HasPrefix(authHeader, bearerTokenPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"type":    "error",
				"message": "Invalid authorization scheme, 'Bearer' prefix required",
			})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, bearerTokenPrefix)
		claims, err := authenticator.CheckToken(tokenStr)
		if err != nil {
			message := "Invalid or expired token"
			if errors.Is(err, auth.ErrTokenRevoked) {
				message = "Session has been terminated"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"type":    "error",
				"message": message,
			})
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the claims set by TokenAuth, or nil when
// the route was not protected.
func ClaimsFromContext(c *gin.Context) *token.UserClaims {
	value, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*token.UserClaims)
	if !ok {
		return nil
	}
	return claims
}
