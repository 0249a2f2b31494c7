package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/murmurchat/murmur/internal/database"
	"github.com/murmurchat/murmur/internal/handlers/dto"
	"github.com/murmurchat/murmur/internal/middleware"
	"github.com/murmurchat/murmur/internal/models"
	"github.com/murmurchat/murmur/pkg/auth"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	db         *database.Database
	jwtManager *auth.JWTManager
	redis      *redis.Client
}

func NewAuthHandler(db *database.Database, jwtMgr *auth.JWTManager, rdb *redis.Client) *AuthHandler {
	return &AuthHandler{db: db, jwtManager: jwtMgr, redis: rdb}
}

// Register создает пользователя вместе с профилем
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	detail := &models.UserDetail{
		DisplayName: req.DisplayName,
	}

	if err := h.db.SaveUser(user, detail); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user registered", "user": user})
}

// Login выдает access-токен и refresh-токен, refresh хранится на сервере
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.db.FindUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}

	token, err := h.jwtManager.Generate(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}

	refresh, expiresAt, err := h.jwtManager.NewRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}

	if err := h.db.SaveRefreshToken(user.ID, refresh, expiresAt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}

	c.SetCookie(refreshCookieName, refresh, int(time.Until(expiresAt).Seconds()), "/auth", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"message":       "login successful",
		"token":         token,
		"refresh_token": refresh,
		"user":          user,
	})
}

// Refresh меняет действующий refresh-токен на новую пару токенов
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(refreshCookieName)
	if err != nil || refresh == "" {
		refresh = c.Query("refresh_token")
	}
	if refresh == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	row, err := h.db.FindRefreshToken(refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if time.Now().After(row.ExpiresAt) {
		h.db.DeleteRefreshTokens(row.UserID)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	user, err := h.db.GetUser(row.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}

	token, err := h.jwtManager.Generate(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}

	// Ротация: старый токен отзывается, выдается новый
	newRefresh, expiresAt, err := h.jwtManager.NewRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}

	if err := h.db.DeleteRefreshTokens(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}
	if err := h.db.SaveRefreshToken(user.ID, newRefresh, expiresAt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}

	c.SetCookie(refreshCookieName, newRefresh, int(time.Until(expiresAt).Seconds()), "/auth", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"message":       "token refreshed",
		"token":         token,
		"refresh_token": newRefresh,
	})
}

// Logout отзывает refresh-токены и ставит access-токен в черный список до истечения
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	rawToken, err := auth.ExtractTokenFromHeader(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	exp, err := h.jwtManager.Expiry(rawToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	ttl := time.Until(exp)
	if ttl > 0 {
		h.redis.Set(context.Background(), middleware.BlacklistPrefix+rawToken, 1, ttl)
	}

	if err := h.db.DeleteRefreshTokens(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}

	c.SetCookie(refreshCookieName, "", -1, "/auth", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
