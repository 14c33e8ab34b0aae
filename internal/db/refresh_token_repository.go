package db

import (
	"context"
	"errors"
	"time"

	"github.com/terraincognita07/vitaminpack/internal/models"
	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	database *gorm.DB
}

func NewRefreshTokenRepository(database *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{database: database}
}

func (repo *RefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return repo.database.WithContext(ctx).Create(token).Error
}

func (repo *RefreshTokenRepository) FindByID(ctx context.Context, tokenID string) (models.RefreshToken, error) {
	var token models.RefreshToken
	err := repo.database.WithContext(ctx).Where("id = ?", tokenID).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RefreshToken{}, ErrRefreshTokenNotFound
	}
	if err != nil {
		return models.RefreshToken{}, err
	}
	return token, nil
}

// Rotate revokes the current link and stores its successor atomically. A
// token that was already revoked cannot be rotated a second time.
func (repo *RefreshTokenRepository) Rotate(ctx context.Context, currentID string, next *models.RefreshToken, now time.Time) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", currentID).
			Updates(map[string]any{
				"revoked_at":  now,
				"replaced_by": next.ID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return ErrRefreshTokenSpent
		}
		return tx.Create(next).Error
	})
}

func (repo *RefreshTokenRepository) Revoke(ctx context.Context, tokenID string, now time.Time) error {
	return repo.database.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", tokenID).
		Update("revoked_at", now).Error
}

func (repo *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uint, now time.Time) error {
	return repo.database.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}

func (repo *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := repo.database.WithContext(ctx).Where("expires_at < ?", before).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
