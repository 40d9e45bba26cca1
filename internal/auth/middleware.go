package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// claimsKey is the gin context key the middleware stores claims under.
const claimsKey = "authClaims"

// Middleware validates the session token from the Authorization header or,
// for browser flows like the websocket badge, from the "token" cookie.
func Middleware(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string

		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token = parts[1]
			}
		}
		if token == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				token = cookie
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header or token cookie"})
			return
		}

		claims, err := mgr.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole guards a route group to one role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := FromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
			return
		}
		c.Next()
	}
}

// FromContext returns the claims stored by Middleware.
func FromContext(c *gin.Context) (*Claims, bool) {
	val, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
