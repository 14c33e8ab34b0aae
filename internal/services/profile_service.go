package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/vitaminpack/internal/db"
	"github.com/terraincognita07/vitaminpack/internal/models"
)

type ProfileService struct {
	profiles db.ProfileStore
	now      func() time.Time
}

func NewProfileService(profiles db.ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles, now: time.Now}
}

// ProfileExists implements gate.ProfileChecker.
func (service *ProfileService) ProfileExists(ctx context.Context, userID string) (bool, error) {
	id, err := ParseUserID(userID)
	if err != nil {
		return false, err
	}
	return service.profiles.Exists(ctx, id)
}

// LoadProfile reports (profile, false, nil) when the user has not onboarded yet.
func (service *ProfileService) LoadProfile(ctx context.Context, userID uint) (models.Profile, bool, error) {
	profile, err := service.profiles.FindByUserID(ctx, userID)
	if errors.Is(err, db.ErrProfileNotFound) {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, fmt.Errorf("load profile: %w", err)
	}
	return profile, true, nil
}

func (service *ProfileService) CompleteOnboarding(ctx context.Context, userID uint, input OnboardingInput) (models.Profile, error) {
	normalized, err := NormalizeOnboardingInput(input)
	if err != nil {
		return models.Profile{}, err
	}

	now := service.now().UTC()
	profile := models.Profile{
		UserID:      userID,
		DisplayName: normalized.DisplayName,
		HealthGoals: normalized.HealthGoals,
		Diet:        normalized.Diet,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := service.profiles.Upsert(ctx, &profile); err != nil {
		return models.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}
