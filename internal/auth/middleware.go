package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const ctxClaims = "auth_claims"

// Required validates the Bearer token and stores the claims in the Gin
// context. Requests without a valid token are rejected with 401.
func Required(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing or malformed Authorization header"})
			c.Abort()
			return
		}

		claims, err := issuer.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// RequireRole gates a route group to the listed roles. Must run after
// Required.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentUser(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			c.Abort()
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden for role " + claims.Role})
		c.Abort()
	}
}

// CurrentUser returns the verified claims for this request, or nil when the
// request did not pass Required.
func CurrentUser(c *gin.Context) *Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, ok := v.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// extractToken pulls the Bearer token from the Authorization header.
func extractToken(c *gin.Context) string {
	bearer := c.GetHeader("Authorization")
	if strings.HasPrefix(bearer, "Bearer ") && len(bearer) > 7 {
		return bearer[7:]
	}
	return ""
}
