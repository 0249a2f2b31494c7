package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/murmurchat/murmur/pkg/auth"
)

const UserIDKey = "userID"

// BlacklistPrefix — ключи отозванных access-токенов в Redis
const BlacklistPrefix = "blacklist:"

// AuthMiddleware проверяет JWT токен
func AuthMiddleware(jwtManager *auth.JWTManager, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}

		if !validateToken(c, jwtManager, redisClient, token) {
			return
		}

		c.Next()
	}
}

// WSAuthMiddleware — аутентификация websocket-хендшейка.
// Токен берется из query или из Authorization header.
func WSAuthMiddleware(jwtManager *auth.JWTManager, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
					token = parts[1]
				}
			}
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}

		if !validateToken(c, jwtManager, redisClient, token) {
			return
		}

		c.Next()
	}
}

func validateToken(c *gin.Context, jwtManager *auth.JWTManager, redisClient *redis.Client, token string) bool {
	// Отозванные на logout токены лежат в черном списке до истечения
	exists, err := redisClient.Exists(context.Background(), BlacklistPrefix+token).Result()
	if err != nil || exists > 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		c.Abort()
		return false
	}

	claims, err := jwtManager.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		c.Abort()
		return false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		c.Abort()
		return false
	}

	c.Set(UserIDKey, userID)
	return true
}
