package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"
)

func TestCompleteOnboardingRequiresSession(t *testing.T) {
	env := newTestApp(t)

	response := env.postJSON(t, "/api/onboarding", `{"display_name":"Sam","health_goals":["sleep"]}`, nil)
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for JSON caller, got %d", response.StatusCode)
	}

	form := env.postForm(t, "/api/onboarding", url.Values{"display_name": {"Sam"}}, nil)
	assertRedirect(t, form, "/login")
}

func TestCompleteOnboardingValidatesInput(t *testing.T) {
	env := newTestApp(t)
	cookies := env.signup(t, "member@example.com")

	response := env.postJSON(t, "/api/onboarding", `{"display_name":"Sam","health_goals":["flying"]}`, cookies)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", response.StatusCode)
	}

	form := env.postForm(t, "/api/onboarding", url.Values{"display_name": {""}}, cookies)
	assertRedirect(t, form, "/onboarding")
	if flash := responseCookie(form.Cookies(), flashCookieName); flash == nil || flash.Value == "" {
		t.Fatal("expected flash cookie with the onboarding error")
	}
}

func TestCompleteOnboardingStoresProfile(t *testing.T) {
	env := newTestApp(t)
	cookies := env.signup(t, "member@example.com")

	response := env.postJSON(t, "/api/onboarding", `{"display_name":"Sam","health_goals":["sleep","energy"],"diet":"keto"}`, cookies)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}

	user, err := env.repos.Users.FindByNormalizedEmail(context.Background(), "member@example.com")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	profile, err := env.repos.Profiles.FindByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("find profile: %v", err)
	}
	if profile.DisplayName != "Sam" || profile.Diet != "keto" || len(profile.HealthGoals) != 2 {
		t.Fatalf("unexpected stored profile %+v", profile)
	}
}
