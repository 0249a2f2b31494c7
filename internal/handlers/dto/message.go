package dto

import (
	"time"

	"github.com/google/uuid"
)

// SendMessagePayload — входящее send_message событие.
// Отправитель берется из аутентифицированного соединения, не из payload.
type SendMessagePayload struct {
	ChatID        string `json:"chatId"`
	Content       string `json:"content,omitempty"`
	AttachmentURL string `json:"attachmentUrl,omitempty"`
	MessageType   string `json:"messageType"`
}

// MessageResponse — сохраненное сообщение, уходит в new_message и в HTTP-ответы
type MessageResponse struct {
	ID            int64     `json:"id"`
	ChatID        uuid.UUID `json:"chat_id"`
	SenderID      uuid.UUID `json:"sender_id"`
	Content       string    `json:"content,omitempty"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	MessageType   string    `json:"message_type"`
	CreatedAt     time.Time `json:"created_at"`
	Sender        UserInfo  `json:"sender"`
}

// MessageDeletedPayload уходит в комнату после удаления сообщения
type MessageDeletedPayload struct {
	MessageID int64     `json:"message_id"`
	ChatID    uuid.UUID `json:"chat_id"`
}

type UserInfo struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	ProfileURL  string    `json:"profile_url,omitempty"`
}
