package middleware

import (
	"growth_hub/internal/utils" // Utility functions for JWT
	"net/http"                  // HTTP status codes
	"strings"                   // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

// bearerToken returns the token of an "Authorization: Bearer" header, or ""
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// setIdentity stores the token's user on the context for handlers and the rate limiter
func setIdentity(c *gin.Context, claims *utils.Claims) {
	c.Set("userID", claims.UserID) // Store userID in context
	c.Set("role", claims.Role)     // Store role in context
}

// JWTAuthMiddleware validates JWT tokens and extracts user information
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the JWT token
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		setIdentity(c, claims)
		c.Next() // Proceed to the next handler
	}
}

// OptionalJWTMiddleware identifies the caller when a valid token is sent and
// lets anonymous requests through unchanged
func OptionalJWTMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := bearerToken(c); tokenStr != "" {
			if claims, err := utils.ParseJWT(tokenStr, secret); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}
