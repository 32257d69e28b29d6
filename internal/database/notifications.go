package database

import (
	"context"

	"ferretcontrol/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) ListUserIDsExcept(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id <> ?", userID).
		Order("id asc").
		Pluck("id", &ids).Error
	return ids, err
}

// CreateNotifications inserts the whole batch in one statement.
func (r *NotificationRepository) CreateNotifications(ctx context.Context, batch []models.SecurityNotification) error {
	if len(batch) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("User").Create(&batch).Error
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID uint) ([]models.SecurityNotification, error) {
	var out []models.SecurityNotification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

func (r *NotificationRepository) GetForUser(ctx context.Context, userID, id uint) (*models.SecurityNotification, error) {
	var n models.SecurityNotification
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Take(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.SecurityNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// MarkRead flags one notification of userID as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.SecurityNotification{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.SecurityNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
