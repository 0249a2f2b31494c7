package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/murmurchat/murmur/internal/database"
	"github.com/murmurchat/murmur/internal/handlers/dto"
	"github.com/murmurchat/murmur/internal/models"
	ws "github.com/murmurchat/murmur/internal/websocket"
	"github.com/murmurchat/murmur/pkg/apierror"
)

// MessageHandler — ядро доставки: принимает события соединения,
// сохраняет сообщение вместе со строками статусов в одной транзакции
// и рассылает результат в комнату чата.
type MessageHandler struct {
	db  *database.Database
	hub *ws.Hub
}

func NewMessageHandler(db *database.Database, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{
		db:  db,
		hub: hub,
	}
}

func (h *MessageHandler) HandleEvent(client *ws.Client, msg *ws.Message) error {
	switch msg.Event {
	case ws.EventJoinChats:
		return h.handleJoinChats(client, msg)

	case ws.EventSendMessage:
		return h.handleSendMessage(client, msg)

	default:
		log.Printf("Unknown event: %s", msg.Event)
		return nil
	}
}

// handleJoinChats подписывает соединение только на те чаты,
// в которых пользователь действительно состоит
func (h *MessageHandler) handleJoinChats(client *ws.Client, msg *ws.Message) error {
	var payload struct {
		ChatIDs []string `json:"chatIds"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return ws.ErrInvalidEvent
	}

	var rejected []string
	for _, raw := range payload.ChatIDs {
		chatID, err := uuid.Parse(raw)
		if err != nil {
			rejected = append(rejected, raw)
			continue
		}

		member, err := h.db.IsMember(chatID, client.UserID)
		if err != nil {
			log.Printf("Membership check failed for chat %s: %v", chatID, err)
			rejected = append(rejected, raw)
			continue
		}
		if !member {
			rejected = append(rejected, raw)
			continue
		}

		client.Hub.JoinRoom(client, chatID)
	}

	if err := h.db.SetOnlineStatus(client.UserID, true); err != nil {
		log.Printf("Failed to set online status for %s: %v", client.UserID, err)
	}

	if len(rejected) > 0 {
		client.SendError("not a member of some requested chats")
	}

	return nil
}

// handleSendMessage — конвейер отправки: авторизация -> чат -> членство ->
// множество получателей -> одна транзакция -> рассылка в комнату.
// Любая ошибка уходит error-событием только отправителю, комната ничего не видит.
func (h *MessageHandler) handleSendMessage(client *ws.Client, msg *ws.Message) error {
	var payload dto.SendMessagePayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return ws.ErrInvalidEvent
	}

	message, err := h.Send(client.UserID, payload)
	if err != nil {
		return err
	}

	h.broadcastNewMessage(message)

	return nil
}

// Send выполняет конвейер отправки и возвращает сохраненное сообщение.
// Вынесен отдельно, чтобы HTTP-слой мог пользоваться тем же путем.
func (h *MessageHandler) Send(senderID uuid.UUID, payload dto.SendMessagePayload) (*models.Message, error) {
	user, err := h.db.GetUser(senderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.Unauthorized("")
		}
		return nil, apierror.Internal("failed to resolve sender", err)
	}

	chatID, err := uuid.Parse(payload.ChatID)
	if err != nil {
		return nil, apierror.BadRequest("invalid chat id")
	}

	chat, err := h.db.GetChat(chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.BadRequest("Chat not exists")
		}
		return nil, apierror.Internal("failed to resolve chat", err)
	}

	member, err := h.db.IsMember(chat.ID, user.ID)
	if err != nil {
		return nil, apierror.Internal("membership check failed", err)
	}
	if !member {
		return nil, apierror.Unauthorized("you are not a participant of this chat")
	}

	messageType := payload.MessageType
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	// Множество получателей: все участники, кроме отправителя
	participantIDs, err := h.db.ListParticipantIDs(chat.ID)
	if err != nil {
		return nil, apierror.Internal("failed to list participants", err)
	}
	recipients := make([]uuid.UUID, 0, len(participantIDs))
	for _, id := range participantIDs {
		if id != user.ID {
			recipients = append(recipients, id)
		}
	}

	message := &models.Message{
		ChatID:        chat.ID,
		SenderID:      user.ID,
		Content:       payload.Content,
		AttachmentURL: payload.AttachmentURL,
		MessageType:   messageType,
	}

	// Сообщение и строки статусов пишутся атомарно:
	// откат любой из вставок откатывает обе
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := h.db.CreateMessage(tx, message); err != nil {
			return err
		}
		return h.db.CreateStatusRows(tx, message.ID, models.StatusSent, recipients)
	})
	if err != nil {
		log.Printf("Failed to save message: %v", err)
		return nil, errors.New("Unable to send the message")
	}

	message.Sender = *user

	return message, nil
}

// Delete удаляет сообщение вместе со строками статусов и уведомляет комнату.
// Удалять может автор сообщения или админ чата.
func (h *MessageHandler) Delete(userID, chatID uuid.UUID, messageID int64) (int64, error) {
	if _, err := h.db.GetUser(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apierror.Unauthorized("")
		}
		return 0, apierror.Internal("failed to resolve user", err)
	}

	chat, err := h.db.GetChat(chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apierror.BadRequest("Chat not exists")
		}
		return 0, apierror.Internal("failed to resolve chat", err)
	}

	var deletedID int64
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var message models.Message
		if err := tx.First(&message, "chat_id = ? AND id = ?", chat.ID, messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Message not found")
			}
			return err
		}

		isAdmin := chat.AdminID != nil && *chat.AdminID == userID
		if message.SenderID != userID && !isAdmin {
			return apierror.Unauthorized("You don't have permission for delete")
		}

		deletedID, err = h.db.DeleteMessage(tx, chat.ID, messageID)
		if err != nil {
			return err
		}
		if deletedID == 0 {
			return apierror.NotFound("Message not found")
		}

		return h.db.DeleteStatusRows(tx, deletedID)
	})
	if err != nil {
		return 0, err
	}

	h.broadcastDeleted(chat.ID, deletedID)

	return deletedID, nil
}

func (h *MessageHandler) broadcastNewMessage(message *models.Message) {
	response := dto.MessageResponse{
		ID:            message.ID,
		ChatID:        message.ChatID,
		SenderID:      message.SenderID,
		Content:       message.Content,
		AttachmentURL: message.AttachmentURL,
		MessageType:   message.MessageType,
		CreatedAt:     message.CreatedAt,
		Sender: dto.UserInfo{
			ID:          message.Sender.ID,
			Username:    message.Sender.Username,
			DisplayName: message.Sender.Detail.DisplayName,
			ProfileURL:  message.Sender.Detail.ProfileURL,
		},
	}

	h.sendToRoom(message.ChatID, ws.EventNewMessage, response)
}

func (h *MessageHandler) broadcastDeleted(chatID uuid.UUID, messageID int64) {
	h.sendToRoom(chatID, ws.EventMessageDeleted, dto.MessageDeletedPayload{
		MessageID: messageID,
		ChatID:    chatID,
	})
}

func (h *MessageHandler) sendToRoom(roomID uuid.UUID, event ws.Event, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to marshal %s payload: %v", event, err)
		return
	}

	wsMsg := ws.Message{
		Event:     event,
		Data:      jsonData,
		Timestamp: time.Now(),
	}

	msgData, err := json.Marshal(wsMsg)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event, err)
		return
	}

	h.hub.SendToRoom(roomID, msgData)
}
