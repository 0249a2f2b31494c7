package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/murmurchat/murmur/internal/models"
)

func (d *Database) SaveRefreshToken(userID uuid.UUID, token string, expiresAt time.Time) error {
	row := models.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return d.db.Create(&row).Error
}

func (d *Database) FindRefreshToken(token string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	if err := d.db.Where("token = ?", token).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteRefreshTokens отзывает все refresh-токены пользователя
func (d *Database) DeleteRefreshTokens(userID uuid.UUID) error {
	return d.db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}
