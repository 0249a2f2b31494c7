package database

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/murmurchat/murmur/internal/models"
)

// CreateChatWithParticipants создает чат и строки членства атомарно
func (d *Database) CreateChatWithParticipants(chat *models.Chat, participants []models.ChatParticipant) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		for i := range participants {
			participants[i].ChatID = chat.ID
		}
		return tx.Create(&participants).Error
	})
}

func (d *Database) GetChat(id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := d.db.
		Preload("Participants").
		Preload("Participants.User").
		Preload("Participants.User.Detail").
		First(&chat, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetUserChats возвращает чаты, в которых состоит пользователь
func (d *Database) GetUserChats(userID uuid.UUID) ([]models.Chat, error) {
	var chats []models.Chat
	err := d.db.
		Joins("JOIN chat_participants ON chat_participants.chat_id = chats.id").
		Where("chat_participants.user_id = ?", userID).
		Preload("Participants").
		Preload("Participants.User").
		Find(&chats).Error
	return chats, err
}

// ListParticipantIDs возвращает id всех участников чата
func (d *Database) ListParticipantIDs(chatID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.Model(&models.ChatParticipant{}).
		Where("chat_id = ?", chatID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (d *Database) IsMember(chatID, userID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	return count > 0, err
}

func (d *Database) IsAdmin(chatID, userID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ? AND role = ?", chatID, userID, models.RoleAdmin).
		Count(&count).Error
	return count > 0, err
}

func (d *Database) AddParticipants(participants []models.ChatParticipant) error {
	return d.db.Create(&participants).Error
}

func (d *Database) RemoveParticipant(chatID, userID uuid.UUID) error {
	return d.db.
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&models.ChatParticipant{}).Error
}

// UpdateChat обновляет только переданные поля
func (d *Database) UpdateChat(chatID uuid.UUID, fields map[string]interface{}) (*models.Chat, error) {
	if len(fields) > 0 {
		if err := d.db.Model(&models.Chat{}).Where("id = ?", chatID).Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return d.GetChat(chatID)
}

// DeleteChat удаляет чат вместе с сообщениями, их статусами и членством.
// Каскад делается явно в одной транзакции, не полагаясь на БД.
func (d *Database) DeleteChat(id uuid.UUID) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		subQuery := tx.Model(&models.Message{}).Select("id").Where("chat_id = ?", id)
		if err := tx.Where("message_id IN (?)", subQuery).Delete(&models.MessageStatus{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", id).Delete(&models.ChatParticipant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Chat{}, "id = ?", id).Error
	})
}
