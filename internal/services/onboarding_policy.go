package services

import (
	"errors"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/terraincognita07/vitaminpack/internal/models"
)

const (
	maxDisplayNameLength = 64
	maxHealthGoals       = 5
)

var (
	ErrInvalidOnboarding       = errors.New("invalid onboarding input")
	ErrOnboardingNameRequired  = errors.New("display name is required")
	ErrOnboardingNameTooLong   = errors.New("display name is too long")
	ErrOnboardingGoalsRequired = errors.New("choose at least one health goal")
	ErrOnboardingTooManyGoals  = errors.New("choose at most five health goals")
	ErrOnboardingUnknownGoal   = errors.New("unknown health goal")
	ErrOnboardingUnknownDiet   = errors.New("unknown dietary preference")
)

type OnboardingInput struct {
	DisplayName string
	HealthGoals []string
	Diet        string
}

type onboardingError struct {
	reason error
}

func (err onboardingError) Error() string {
	return err.reason.Error()
}

func (err onboardingError) Unwrap() []error {
	return []error{ErrInvalidOnboarding, err.reason}
}

// NormalizeOnboardingInput trims and de-duplicates the form values. Any
// returned error matches both ErrInvalidOnboarding and the specific reason.
func NormalizeOnboardingInput(input OnboardingInput) (OnboardingInput, error) {
	normalized := OnboardingInput{
		DisplayName: strings.Join(strings.Fields(input.DisplayName), " "),
		Diet:        strings.ToLower(strings.TrimSpace(input.Diet)),
	}

	if normalized.DisplayName == "" {
		return OnboardingInput{}, onboardingError{ErrOnboardingNameRequired}
	}
	if utf8.RuneCountInString(normalized.DisplayName) > maxDisplayNameLength {
		return OnboardingInput{}, onboardingError{ErrOnboardingNameTooLong}
	}

	for _, raw := range input.HealthGoals {
		goal := strings.ToLower(strings.TrimSpace(raw))
		if goal == "" || slices.Contains(normalized.HealthGoals, goal) {
			continue
		}
		if !slices.Contains(models.HealthGoals, goal) {
			return OnboardingInput{}, onboardingError{ErrOnboardingUnknownGoal}
		}
		normalized.HealthGoals = append(normalized.HealthGoals, goal)
	}
	if len(normalized.HealthGoals) == 0 {
		return OnboardingInput{}, onboardingError{ErrOnboardingGoalsRequired}
	}
	if len(normalized.HealthGoals) > maxHealthGoals {
		return OnboardingInput{}, onboardingError{ErrOnboardingTooManyGoals}
	}

	if normalized.Diet == "" {
		normalized.Diet = models.DietNone
	}
	if !slices.Contains(models.DietaryPreferences, normalized.Diet) {
		return OnboardingInput{}, onboardingError{ErrOnboardingUnknownDiet}
	}

	return normalized, nil
}
