package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/murmurchat/murmur/pkg/auth"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTManager, *redis.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jwtMgr := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	r := gin.New()
	r.GET("/protected", AuthMiddleware(jwtMgr, rdb), func(c *gin.Context) {
		userID := c.MustGet(UserIDKey).(uuid.UUID)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	r.GET("/ws", WSAuthMiddleware(jwtMgr, rdb), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r, jwtMgr, rdb
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	r, jwtMgr, _ := setupAuthRouter(t)

	token, err := jwtMgr.Generate(uuid.New(), "a@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	r, _, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/protected", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareMalformedToken(t *testing.T) {
	r, _, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareBlacklistedToken(t *testing.T) {
	r, jwtMgr, rdb := setupAuthRouter(t)

	token, err := jwtMgr.Generate(uuid.New(), "a@example.com")
	require.NoError(t, err)

	require.NoError(t, rdb.Set(context.Background(), BlacklistPrefix+token, 1, time.Hour).Err())

	w := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/protected", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, request)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWSAuthMiddlewareQueryToken(t *testing.T) {
	r, jwtMgr, _ := setupAuthRouter(t)

	token, err := jwtMgr.Generate(uuid.New(), "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws?token="+token, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
