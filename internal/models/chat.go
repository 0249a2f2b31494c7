package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChatTypeDirect = "direct"
	ChatTypeGroup  = "group"
)

const (
	RoleAdmin       = "admin"
	RoleParticipant = "participant"
)

type Chat struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	Type      string     `gorm:"not null;check:type IN ('direct','group')" json:"type"`
	AdminID   *uuid.UUID `gorm:"type:uuid" json:"admin_id,omitempty"`
	GroupIcon string     `json:"group_icon,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Связи
	Participants []ChatParticipant `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ChatParticipant — строка членства, составной ключ (chat_id, user_id)
type ChatParticipant struct {
	ChatID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"chat_id"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role     string    `gorm:"not null;default:'participant';check:role IN ('admin','participant')" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (ChatParticipant) TableName() string {
	return "chat_participants"
}
