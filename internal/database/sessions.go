package database

import (
	"context"
	"errors"

	"ferretcontrol/internal/models"
	"ferretcontrol/internal/security"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository serializes writers of a user's session row with
// SELECT ... FOR UPDATE inside a transaction.
type SessionRepository struct {
	*UserRepository
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{UserRepository: NewUserRepository(db), db: db}
}

func (r *SessionRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.FindByUsername(ctx, username)
}

func (r *SessionRepository) UpdateSession(ctx context.Context, userID uint, fn security.SessionMutator) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := lockSession(tx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			uid := userID
			fresh := models.UserSessionStatus{UserID: &uid}
			// a parallel first login may insert the row between our select and insert
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoNothing: true,
			}).Omit("User").Create(&fresh).Error; err != nil {
				return err
			}
			st, err = lockSession(tx, userID)
		}
		if err != nil {
			return err
		}

		notes := fn(st)
		if err := tx.Omit("User").Save(st).Error; err != nil {
			return err
		}
		if len(notes) > 0 {
			if err := tx.Omit("User").Create(&notes).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func lockSession(tx *gorm.DB, userID uint) (*models.UserSessionStatus, error) {
	var st models.UserSessionStatus
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Take(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}
