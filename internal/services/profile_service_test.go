package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/vitaminpack/internal/db"
	"github.com/terraincognita07/vitaminpack/internal/models"
)

type stubProfileStore struct {
	profiles map[uint]models.Profile
	err      error
}

func (stub *stubProfileStore) Exists(_ context.Context, userID uint) (bool, error) {
	if stub.err != nil {
		return false, stub.err
	}
	_, ok := stub.profiles[userID]
	return ok, nil
}

func (stub *stubProfileStore) FindByUserID(_ context.Context, userID uint) (models.Profile, error) {
	if stub.err != nil {
		return models.Profile{}, stub.err
	}
	profile, ok := stub.profiles[userID]
	if !ok {
		return models.Profile{}, db.ErrProfileNotFound
	}
	return profile, nil
}

func (stub *stubProfileStore) Upsert(_ context.Context, profile *models.Profile) error {
	if stub.err != nil {
		return stub.err
	}
	if stub.profiles == nil {
		stub.profiles = map[uint]models.Profile{}
	}
	stub.profiles[profile.UserID] = *profile
	return nil
}

func TestProfileServiceProfileExists(t *testing.T) {
	store := &stubProfileStore{profiles: map[uint]models.Profile{3: {UserID: 3}}}
	service := NewProfileService(store)
	ctx := context.Background()

	exists, err := service.ProfileExists(ctx, "3")
	if err != nil || !exists {
		t.Fatalf("expected profile for user 3, got %v %v", exists, err)
	}
	exists, err = service.ProfileExists(ctx, "4")
	if err != nil || exists {
		t.Fatalf("expected no profile for user 4, got %v %v", exists, err)
	}
	if _, err := service.ProfileExists(ctx, "not-a-number"); err == nil {
		t.Fatal("expected malformed user id to fail")
	}

	store.err = errors.New("connection refused")
	if _, err := service.ProfileExists(ctx, "3"); err == nil {
		t.Fatal("expected store error to be returned")
	}
}

func TestProfileServiceCompleteOnboarding(t *testing.T) {
	store := &stubProfileStore{}
	service := NewProfileService(store)
	service.now = func() time.Time { return time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	profile, err := service.CompleteOnboarding(ctx, 5, OnboardingInput{
		DisplayName: "  Sam   Lee ",
		HealthGoals: []string{"Sleep", "focus", "sleep", ""},
	})
	if err != nil {
		t.Fatalf("complete onboarding: %v", err)
	}
	if profile.DisplayName != "Sam Lee" || profile.Diet != models.DietNone {
		t.Fatalf("unexpected normalized profile %+v", profile)
	}
	if len(profile.HealthGoals) != 2 || profile.HealthGoals[0] != "sleep" || profile.HealthGoals[1] != "focus" {
		t.Fatalf("unexpected health goals %#v", profile.HealthGoals)
	}

	loaded, found, err := service.LoadProfile(ctx, 5)
	if err != nil || !found || loaded.DisplayName != "Sam Lee" {
		t.Fatalf("expected stored profile, got %+v %v %v", loaded, found, err)
	}
	_, found, err = service.LoadProfile(ctx, 6)
	if err != nil || found {
		t.Fatalf("expected missing profile to be reported as not found, got %v %v", found, err)
	}

	if _, err := service.CompleteOnboarding(ctx, 5, OnboardingInput{}); !errors.Is(err, ErrInvalidOnboarding) {
		t.Fatalf("expected ErrInvalidOnboarding, got %v", err)
	}
}

func TestNormalizeOnboardingInputRejectsInvalidValues(t *testing.T) {
	validGoals := []string{"energy"}
	testCases := []struct {
		name  string
		input OnboardingInput
		want  error
	}{
		{name: "missing name", input: OnboardingInput{DisplayName: "   ", HealthGoals: validGoals}, want: ErrOnboardingNameRequired},
		{name: "long name", input: OnboardingInput{DisplayName: strings.Repeat("a", 65), HealthGoals: validGoals}, want: ErrOnboardingNameTooLong},
		{name: "no goals", input: OnboardingInput{DisplayName: "Sam"}, want: ErrOnboardingGoalsRequired},
		{name: "unknown goal", input: OnboardingInput{DisplayName: "Sam", HealthGoals: []string{"flying"}}, want: ErrOnboardingUnknownGoal},
		{name: "too many goals", input: OnboardingInput{DisplayName: "Sam", HealthGoals: models.HealthGoals}, want: ErrOnboardingTooManyGoals},
		{name: "unknown diet", input: OnboardingInput{DisplayName: "Sam", HealthGoals: validGoals, Diet: "carnivore"}, want: ErrOnboardingUnknownDiet},
	}

	for _, testCase := range testCases {
		_, err := NormalizeOnboardingInput(testCase.input)
		if !errors.Is(err, testCase.want) || !errors.Is(err, ErrInvalidOnboarding) {
			t.Fatalf("%s: expected %v wrapped in ErrInvalidOnboarding, got %v", testCase.name, testCase.want, err)
		}
	}
}
