package database

import (
	"context"
	"time"

	"ferretcontrol/internal/models"

	"gorm.io/gorm"
)

type ResetRepository struct {
	*UserRepository
	db *gorm.DB
}

func NewResetRepository(db *gorm.DB) *ResetRepository {
	return &ResetRepository{UserRepository: NewUserRepository(db), db: db}
}

func (r *ResetRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindByEmail(ctx, email)
}

func (r *ResetRepository) CreateResetCode(ctx context.Context, code *models.PasswordResetCode) error {
	return r.db.WithContext(ctx).Omit("User").Create(code).Error
}

func (r *ResetRepository) LatestResetCode(ctx context.Context, userID uint, codeHash string, now time.Time) (*models.PasswordResetCode, error) {
	var c models.PasswordResetCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND code_hash = ? AND expires_at > ?", userID, codeHash, now).
		Order("created_at desc").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ResetRepository) ReplacePassword(ctx context.Context, userID uint, passwordHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", passwordHash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("user_id = ?", userID).Delete(&models.PasswordResetCode{}).Error
	})
}
