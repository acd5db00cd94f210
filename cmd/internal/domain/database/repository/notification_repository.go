package repository

import (
	"errors"
	"gestaoacoes/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *DefaultNotificationRepository {
	return &DefaultNotificationRepository{db: db}
}

func (n *DefaultNotificationRepository) Save(notification *entity.Notification) error {
	return n.db.Save(notification).Error
}

// FindByRecipient returns the newest notifications first.
func (n *DefaultNotificationRepository) FindByRecipient(recipientID string, limit, offset int) ([]*entity.Notification, int64, error) {
	var total int64
	err := n.db.Model(&entity.Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var notifications []*entity.Notification
	err = n.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (n *DefaultNotificationRepository) CountUnread(recipientID string) (int64, error) {
	var count int64
	err := n.db.Model(&entity.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkRead returns false when no notification of the recipient has that id.
func (n *DefaultNotificationRepository) MarkRead(recipientID, id string) (bool, error) {
	result := n.db.Model(&entity.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (n *DefaultNotificationRepository) MarkAllRead(recipientID string) error {
	return n.db.Model(&entity.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
}

type DefaultSettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *DefaultSettingsRepository {
	return &DefaultSettingsRepository{db: db}
}

func (s *DefaultSettingsRepository) FindByUserID(userID string) (*entity.NotificationSettings, error) {
	var settings entity.NotificationSettings
	err := s.db.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *DefaultSettingsRepository) Save(settings *entity.NotificationSettings) error {
	return s.db.Save(settings).Error
}
