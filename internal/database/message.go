package database

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/murmurchat/murmur/internal/models"
)

const defaultPageLimit = 50

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// CreateMessage вставляет сообщение внутри переданной транзакции
func (d *Database) CreateMessage(tx *gorm.DB, message *models.Message) error {
	return tx.Create(message).Error
}

// CreateStatusRows вставляет по строке статуса на каждого получателя.
// Повторная вставка той же пары (message_id, user_id) — no-op, не ошибка.
func (d *Database) CreateStatusRows(tx *gorm.DB, messageID int64, status string, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}

	rows := make([]models.MessageStatus, len(userIDs))
	for i, id := range userIDs {
		rows[i] = models.MessageStatus{
			MessageID: messageID,
			UserID:    id,
			Status:    status,
			UpdatedAt: time.Now(),
		}
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&rows).Error
}

// GetMessageStatuses возвращает строки статусов сообщения по всем получателям
func (d *Database) GetMessageStatuses(messageID int64) ([]models.MessageStatus, error) {
	var rows []models.MessageStatus
	err := d.db.Where("message_id = ?", messageID).Find(&rows).Error
	return rows, err
}

// AdvanceStatus двигает статус получателя только вперед (sent -> delivered -> seen)
func (d *Database) AdvanceStatus(tx *gorm.DB, messageID int64, userID uuid.UUID, status string) error {
	var row models.MessageStatus
	if err := tx.First(&row, "message_id = ? AND user_id = ?", messageID, userID).Error; err != nil {
		return err
	}

	if models.StatusRank(status) <= models.StatusRank(row.Status) {
		return nil
	}

	return tx.Model(&models.MessageStatus{}).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

// DeleteMessage удаляет сообщение, ограничиваясь chatID,
// чтобы нельзя было угадать id из чужого чата. Возвращает 0, если строки нет.
func (d *Database) DeleteMessage(tx *gorm.DB, chatID uuid.UUID, messageID int64) (int64, error) {
	res := tx.Where("chat_id = ? AND id = ?", chatID, messageID).Delete(&models.Message{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	return messageID, nil
}

// DeleteStatusRows — явный каскад для строк статуса
func (d *Database) DeleteStatusRows(tx *gorm.DB, messageID int64) error {
	return tx.Where("message_id = ?", messageID).Delete(&models.MessageStatus{}).Error
}

// GetChatMessages возвращает страницу сообщений чата, новые первыми
func (d *Database) GetChatMessages(chatID uuid.UUID, page, limit int) ([]models.Message, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}

	var total int64
	if err := d.db.Model(&models.Message{}).Where("chat_id = ?", chatID).Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var messages []models.Message
	err := d.db.
		Where("chat_id = ?", chatID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Preload("Sender").
		Preload("Sender.Detail").
		Find(&messages).Error
	if err != nil {
		return nil, nil, err
	}

	meta := &Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}

	return messages, meta, nil
}
