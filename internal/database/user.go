package database

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/murmurchat/murmur/internal/models"
)

// SaveUser создает пользователя вместе с профилем в одной транзакции
func (d *Database) SaveUser(user *models.User, detail *models.UserDetail) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		detail.UserID = user.ID
		return tx.Create(detail).Error
	})
}

func (d *Database) GetUser(id uuid.UUID) (*models.User, error) {
	user := models.User{}
	if err := d.db.Preload("Detail").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(email string) (*models.User, error) {
	user := models.User{}
	if err := d.db.Preload("Detail").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) UpdateUserEmail(id uuid.UUID, email string) error {
	return d.db.Model(&models.User{}).Where("id = ?", id).Update("email", email).Error
}

func (d *Database) UpdateUserPassword(id uuid.UUID, passwordHash string) error {
	return d.db.Model(&models.User{}).Where("id = ?", id).Update("password_hash", passwordHash).Error
}

// UpdateUserDetail обновляет только переданные поля профиля
func (d *Database) UpdateUserDetail(id uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return d.db.Model(&models.UserDetail{}).Where("user_id = ?", id).Updates(fields).Error
}

// SetOnlineStatus переключает presence-флаг пользователя
func (d *Database) SetOnlineStatus(id uuid.UUID, online bool) error {
	return d.db.Model(&models.UserDetail{}).Where("user_id = ?", id).
		Updates(map[string]interface{}{"status": online, "updated_at": time.Now()}).Error
}

// SearchUsers ищет пользователей по username/display_name с пагинацией
func (d *Database) SearchUsers(keyword string, page, limit int) ([]models.User, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}

	query := d.db.Model(&models.User{})
	if keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.
			Joins("JOIN user_details ON user_details.user_id = users.id").
			Where("users.username LIKE ? OR user_details.display_name LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var users []models.User
	err := query.
		Preload("Detail").
		Order("users.username ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, nil, err
	}

	meta := &Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}

	return users, meta, nil
}
