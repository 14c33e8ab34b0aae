package db

import (
	"context"
	"time"

	"github.com/terraincognita07/vitaminpack/internal/models"
	"gorm.io/gorm"
)

type CallbackCodeRepository struct {
	database *gorm.DB
}

func NewCallbackCodeRepository(database *gorm.DB) *CallbackCodeRepository {
	return &CallbackCodeRepository{database: database}
}

func (repo *CallbackCodeRepository) Create(ctx context.Context, code *models.CallbackCode) error {
	return repo.database.WithContext(ctx).Create(code).Error
}

// Consume marks the code used. Unknown, expired, foreign and already used
// codes all report ErrCallbackCodeSpent.
func (repo *CallbackCodeRepository) Consume(ctx context.Context, codeID string, userID uint, now time.Time) error {
	result := repo.database.WithContext(ctx).Model(&models.CallbackCode{}).
		Where("id = ? AND user_id = ? AND used_at IS NULL AND expires_at > ?", codeID, userID, now).
		Update("used_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return ErrCallbackCodeSpent
	}
	return nil
}

func (repo *CallbackCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := repo.database.WithContext(ctx).Where("expires_at < ?", before).Delete(&models.CallbackCode{})
	return result.RowsAffected, result.Error
}
