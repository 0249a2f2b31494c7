package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
	MessageTypeFile  = "file"
)

const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusSeen      = "seen"
)

// Message — монотонный int64-id, принадлежит чату
type Message struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatID        uuid.UUID `gorm:"type:uuid;not null;index" json:"chat_id"`
	SenderID      uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Content       string    `json:"content,omitempty"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	MessageType   string    `gorm:"not null;default:'text';check:message_type IN ('text','image','video','file')" json:"message_type"`
	CreatedAt     time.Time `json:"created_at"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

// MessageStatus — по строке на каждого получателя, составной ключ (message_id, user_id).
// Статус двигается только вперед: sent -> delivered -> seen.
type MessageStatus struct {
	MessageID int64     `gorm:"primaryKey" json:"message_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Status    string    `gorm:"not null;default:'sent';check:status IN ('sent','delivered','seen')" json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MessageStatus) TableName() string {
	return "message_status"
}

// StatusRank задает порядок продвижения статуса
func StatusRank(status string) int {
	switch status {
	case StatusSent:
		return 0
	case StatusDelivered:
		return 1
	case StatusSeen:
		return 2
	default:
		return -1
	}
}
