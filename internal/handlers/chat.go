package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/murmurchat/murmur/internal/database"
	"github.com/murmurchat/murmur/internal/handlers/dto"
	"github.com/murmurchat/murmur/internal/middleware"
	"github.com/murmurchat/murmur/internal/models"
	ws "github.com/murmurchat/murmur/internal/websocket"
	"github.com/murmurchat/murmur/pkg/apierror"
)

type ChatHandler struct {
	db  *database.Database
	hub *ws.Hub
}

func NewChatHandler(db *database.Database, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{db: db, hub: hub}
}

// CreateChat создает direct- или group-чат вместе с участниками.
// Политика формы чата проверяется здесь, а не в store:
// direct — ровно два участника, без имени, админа и иконки;
// group — обязателен админ, и он должен быть в списке участников.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if _, err := h.db.GetUser(userID); err != nil {
		respondError(c, apierror.Unauthorized(""))
		return
	}

	participantIDs := make([]uuid.UUID, 0, len(req.Participants))
	for _, raw := range req.Participants {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, apierror.BadRequest("invalid participant id"))
			return
		}
		participantIDs = append(participantIDs, id)
	}

	chat := &models.Chat{
		Type: req.Type,
		Name: req.Name,
	}

	switch req.Type {
	case models.ChatTypeDirect:
		if len(participantIDs) != 2 || req.Name != "" || req.AdminID != "" || req.GroupIcon != "" {
			respondError(c, apierror.BadRequest("Invalid data provided for direct chat"))
			return
		}
		chat.Name = fmt.Sprintf("%s-%s", req.Participants[0], req.Participants[1])

	case models.ChatTypeGroup:
		if req.AdminID == "" {
			respondError(c, apierror.BadRequest("group chat requires an admin"))
			return
		}
		adminID, err := uuid.Parse(req.AdminID)
		if err != nil {
			respondError(c, apierror.BadRequest("invalid admin id"))
			return
		}
		adminListed := false
		for _, id := range participantIDs {
			if id == adminID {
				adminListed = true
				break
			}
		}
		if !adminListed {
			respondError(c, apierror.BadRequest("admin must be a participant"))
			return
		}
		chat.AdminID = &adminID
		chat.GroupIcon = req.GroupIcon
	}

	participants := make([]models.ChatParticipant, len(participantIDs))
	for i, id := range participantIDs {
		role := models.RoleParticipant
		if chat.AdminID != nil && id == *chat.AdminID {
			role = models.RoleAdmin
		}
		participants[i] = models.ChatParticipant{UserID: id, Role: role}
	}

	if err := h.db.CreateChatWithParticipants(chat, participants); err != nil {
		respondError(c, err)
		return
	}

	full, err := h.db.GetChat(chat.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "chat created", "chat": full})
}

// GetMyChats возвращает чаты текущего пользователя с числом участников онлайн
func (h *ChatHandler) GetMyChats(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	chats, err := h.db.GetUserChats(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]gin.H, len(chats))
	for i, chat := range chats {
		response[i] = gin.H{
			"chat":         chat,
			"online_count": len(h.hub.GetRoomUsers(chat.ID)),
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok", "chats": response})
}

// GetChat возвращает чат с участниками; доступен только участникам
func (h *ChatHandler) GetChat(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	chat, ok := h.resolveChat(c)
	if !ok {
		return
	}

	if !h.requireMember(c, chat.ID, userID) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "ok",
		"chat":         chat,
		"online_users": h.hub.GetRoomUsers(chat.ID),
	})
}

// UpdateChat меняет имя/иконку/админа группы. Только админ, только group-чат.
func (h *ChatHandler) UpdateChat(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	chat, ok := h.resolveChat(c)
	if !ok {
		return
	}

	if chat.Type == models.ChatTypeDirect || chat.AdminID == nil || *chat.AdminID != userID {
		respondError(c, apierror.Unauthorized("You don't have permission to modify the chat"))
		return
	}

	var req dto.UpdateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.GroupIcon != "" {
		fields["group_icon"] = req.GroupIcon
	}
	if req.AdminID != "" {
		newAdmin, err := uuid.Parse(req.AdminID)
		if err != nil {
			respondError(c, apierror.BadRequest("invalid admin id"))
			return
		}
		member, err := h.db.IsMember(chat.ID, newAdmin)
		if err != nil {
			respondError(c, err)
			return
		}
		if !member {
			respondError(c, apierror.BadRequest("admin must be a participant"))
			return
		}
		fields["admin_id"] = newAdmin
	}

	updated, err := h.db.UpdateChat(chat.ID, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "chat updated", "chat": updated})
}

// DeleteChat удаляет чат: группу — только админ, direct — любой из двух участников
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	chat, ok := h.resolveChat(c)
	if !ok {
		return
	}

	if chat.Type == models.ChatTypeGroup {
		if chat.AdminID == nil || *chat.AdminID != userID {
			respondError(c, apierror.Unauthorized("You don't have permission for delete"))
			return
		}
	} else {
		if !h.requireMember(c, chat.ID, userID) {
			return
		}
	}

	if err := h.db.DeleteChat(chat.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "chat deleted"})
}

// AddParticipants добавляет участников в группу; только админ
func (h *ChatHandler) AddParticipants(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	chat, ok := h.resolveChat(c)
	if !ok {
		return
	}

	if chat.Type == models.ChatTypeDirect {
		respondError(c, apierror.BadRequest("Can't add participants to a direct chat"))
		return
	}

	if chat.AdminID == nil || *chat.AdminID != userID {
		respondError(c, apierror.Unauthorized("You don't have permission for add participants"))
		return
	}

	var req dto.ParticipantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	participants := make([]models.ChatParticipant, 0, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, apierror.BadRequest("invalid participant id"))
			return
		}
		participants = append(participants, models.ChatParticipant{
			ChatID: chat.ID,
			UserID: id,
			Role:   models.RoleParticipant,
		})
	}

	if err := h.db.AddParticipants(participants); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "participants added"})
}

// RemoveParticipant убирает участника из группы; только админ
func (h *ChatHandler) RemoveParticipant(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	chat, ok := h.resolveChat(c)
	if !ok {
		return
	}

	if chat.Type == models.ChatTypeDirect {
		respondError(c, apierror.BadRequest("Can't remove participants from a direct chat"))
		return
	}

	if chat.AdminID == nil || *chat.AdminID != userID {
		respondError(c, apierror.Unauthorized("You don't have permission for remove participants"))
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondError(c, apierror.BadRequest("invalid participant id"))
		return
	}

	if err := h.db.RemoveParticipant(chat.ID, targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "participant removed"})
}

// GetParticipants возвращает участников чата
func (h *ChatHandler) GetParticipants(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	chat, ok := h.resolveChat(c)
	if !ok {
		return
	}

	if !h.requireMember(c, chat.ID, userID) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok", "participants": chat.Participants})
}

// GetChatMessages возвращает страницу сообщений чата, новые первыми
func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	chat, ok := h.resolveChat(c)
	if !ok {
		return
	}

	if !h.requireMember(c, chat.ID, userID) {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, meta, err := h.db.GetChatMessages(chat.ID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok", "items": messages, "meta": meta})
}

func (h *ChatHandler) resolveChat(c *gin.Context) (*models.Chat, bool) {
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierror.BadRequest("invalid chat id"))
		return nil, false
	}

	chat, err := h.db.GetChat(chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apierror.NotFound("Chat not exists"))
		} else {
			respondError(c, err)
		}
		return nil, false
	}
	return chat, true
}

func (h *ChatHandler) requireMember(c *gin.Context, chatID, userID uuid.UUID) bool {
	member, err := h.db.IsMember(chatID, userID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !member {
		respondError(c, apierror.Unauthorized("you are not a member of this chat"))
		return false
	}
	return true
}
