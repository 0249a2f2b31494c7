package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/murmurchat/murmur/internal/middleware"
	"github.com/murmurchat/murmur/pkg/apierror"
)

// HTTPMessageHandler — HTTP-поверхность поверх ядра доставки
type HTTPMessageHandler struct {
	engine *MessageHandler
}

func NewHTTPMessageHandler(engine *MessageHandler) *HTTPMessageHandler {
	return &HTTPMessageHandler{engine: engine}
}

// DeleteMessage удаляет сообщение в рамках чата и уведомляет комнату
func (h *HTTPMessageHandler) DeleteMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apierror.BadRequest("invalid message id"))
		return
	}

	chatID, err := uuid.Parse(c.Query("chat_id"))
	if err != nil {
		respondError(c, apierror.BadRequest("chat_id is required"))
		return
	}

	deletedID, err := h.engine.Delete(userID, chatID, messageID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted", "deleted_id": deletedID})
}
