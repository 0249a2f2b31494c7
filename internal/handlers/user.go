package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/murmurchat/murmur/internal/database"
	"github.com/murmurchat/murmur/internal/handlers/dto"
	"github.com/murmurchat/murmur/internal/middleware"
	"github.com/murmurchat/murmur/pkg/apierror"
)

type UserHandler struct {
	db *database.Database
}

func NewUserHandler(db *database.Database) *UserHandler {
	return &UserHandler{db: db}
}

// GetMe возвращает текущего пользователя с профилем
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	user, err := h.db.GetUser(userID)
	if err != nil {
		respondError(c, apierror.NotFound("user not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok", "user": user})
}

// UpdateMe обновляет поля профиля текущего пользователя
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		DisplayName string `json:"display_name"`
		Bio         string `json:"bio"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.DisplayName != "" {
		fields["display_name"] = req.DisplayName
	}
	if req.Bio != "" {
		fields["bio"] = req.Bio
	}

	if len(fields) > 0 {
		if err := h.db.UpdateUserDetail(userID, fields); err != nil {
			respondError(c, err)
			return
		}
	}

	user, err := h.db.GetUser(userID)
	if err != nil {
		respondError(c, apierror.NotFound("user not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "user": user})
}

// UpdateEmail меняет email текущего пользователя
func (h *UserHandler) UpdateEmail(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.db.UpdateUserEmail(userID, req.Email); err != nil {
		respondError(c, apierror.BadRequest("failed to update email"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email updated"})
}

// UpdatePassword меняет пароль после проверки старого
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.db.GetUser(userID)
	if err != nil {
		respondError(c, apierror.Unauthorized(""))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		respondError(c, apierror.BadRequest("Invalid credential"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.db.UpdateUserPassword(userID, string(hash)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// SetProfilePicture ставит ссылку на аватар
func (h *UserHandler) SetProfilePicture(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		ProfileURL string `json:"profile_url" binding:"required,url"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.db.UpdateUserDetail(userID, map[string]interface{}{"profile_url": req.ProfileURL}); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile picture updated"})
}

// RemoveProfilePicture убирает аватар
func (h *UserHandler) RemoveProfilePicture(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	if err := h.db.UpdateUserDetail(userID, map[string]interface{}{"profile_url": ""}); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile picture removed"})
}

// SearchUsers — поиск пользователей по keyword с пагинацией
func (h *UserHandler) SearchUsers(c *gin.Context) {
	keyword := c.Query("keyword")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	users, meta, err := h.db.SearchUsers(keyword, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok", "users": users, "meta": meta})
}
