package db

import (
	"context"
	"errors"

	"github.com/terraincognita07/vitaminpack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) Exists(ctx context.Context, userID uint) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ProfileRepository) FindByUserID(ctx context.Context, userID uint) (models.Profile, error) {
	var profile models.Profile
	err := repo.database.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (repo *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	return repo.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "health_goals", "diet", "updated_at"}),
	}).Create(profile).Error
}
