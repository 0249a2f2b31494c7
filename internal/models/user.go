package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Связи
	Detail UserDetail `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"detail"`
}

// BeforeCreate генерирует uuid на стороне приложения
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserDetail — профиль и online-статус, 1:1 с User
type UserDetail struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	Bio         string    `json:"bio,omitempty"`
	Status      bool      `gorm:"default:false" json:"status"`
	ProfileURL  string    `json:"profile_url,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (UserDetail) TableName() string {
	return "user_details"
}
