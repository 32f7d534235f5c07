package middlewares

import (
	"net/http"
	"strings"

	authUtils "cityfix-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Context key under which the verified email is stored.
const EmailKey = "email"

// DenylistPrefix keys logged-out tokens in Redis.
const DenylistPrefix = "denylist:"

// AuthMiddleware extracts the bearer token, rejects denylisted tokens, and
// resolves the credential to an email on the request context. Verification
// failures are 401s; role decisions happen downstream.
func AuthMiddleware(verifier authUtils.Verifier, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			c.Abort()
			return
		}

		if redisClient != nil {
			exists, err := redisClient.Exists(c.Request.Context(), DenylistPrefix+tokenString).Result()
			if err == nil && exists > 0 {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
				c.Abort()
				return
			}
		}

		email, err := verifier.Verify(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			c.Abort()
			return
		}

		c.Set(EmailKey, email)
		c.Set("token", tokenString)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	authHeader := c.Request.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}
