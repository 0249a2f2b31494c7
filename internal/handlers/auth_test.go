package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/murmurchat/murmur/internal/database"
	"github.com/murmurchat/murmur/internal/middleware"
	"github.com/murmurchat/murmur/pkg/auth"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *database.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d := newTestDatabase(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	jwtMgr := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	handler := NewAuthHandler(d, jwtMgr, rdb)

	router := gin.New()
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.GET("/refresh", handler.Refresh)
		authGroup.GET("/logout", middleware.AuthMiddleware(jwtMgr, rdb), handler.Logout)
	}

	return router, d
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine, username string) (token, refresh string) {
	t.Helper()

	w := postJSON(t, router, "/auth/register", gin.H{
		"username":     username,
		"display_name": username,
		"email":        username + "@example.com",
		"password":     "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/auth/login", gin.H{
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	require.NotEmpty(t, body.RefreshToken)
	return body.Token, body.RefreshToken
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	router, _ := setupAuthRouter(t)

	payload := gin.H{
		"username":     "alice",
		"display_name": "Alice",
		"email":        "alice@example.com",
		"password":     "password123",
	}
	w := postJSON(t, router, "/auth/register", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	payload["username"] = "alice2"
	w = postJSON(t, router, "/auth/register", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	router, _ := setupAuthRouter(t)

	registerAndLogin(t, router, "alice")

	w := postJSON(t, router, "/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	_, refresh := registerAndLogin(t, router, "alice")

	req := httptest.NewRequest(http.MethodGet, "/auth/refresh?refresh_token="+refresh, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	require.NotEqual(t, refresh, body.RefreshToken)

	// Отозванный токен больше не работает
	req = httptest.NewRequest(http.MethodGet, "/auth/refresh?refresh_token="+refresh, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Новый — работает
	req = httptest.NewRequest(http.MethodGet, "/auth/refresh?refresh_token="+body.RefreshToken, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutBlacklistsAccessToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	token, refresh := registerAndLogin(t, router, "alice")

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Токен в черном списке: повторный logout не проходит аутентификацию
	req = httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Refresh-токены отозваны
	req = httptest.NewRequest(http.MethodGet, "/auth/refresh?refresh_token="+refresh, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
