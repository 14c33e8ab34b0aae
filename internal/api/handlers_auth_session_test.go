package api

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/terraincognita07/vitaminpack/internal/services"
)

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	env := newTestApp(t)
	env.signup(t, "member@example.com")

	response := env.postJSON(t, "/api/auth/signup", `{"email":"MEMBER@example.com","password":"StrongPass1"}`, nil)
	if response.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", response.StatusCode)
	}

	weak := env.postJSON(t, "/api/auth/signup", `{"email":"other@example.com","password":"weak"}`, nil)
	if weak.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for weak password, got %d", weak.StatusCode)
	}
}

func TestSignupFormErrorRedirectsWithFlash(t *testing.T) {
	env := newTestApp(t)

	response := env.postForm(t, "/api/auth/signup", url.Values{
		"email":    {"member@example.com"},
		"password": {"weak"},
	}, nil)
	assertRedirect(t, response, "/signup")

	flash := responseCookie(response.Cookies(), flashCookieName)
	if flash == nil || flash.Value == "" {
		t.Fatal("expected flash cookie with the auth error")
	}

	page := env.get(t, "/signup", map[string]string{flashCookieName: flash.Value})
	body := readBody(t, page)
	if !strings.Contains(body, "weak password") || !strings.Contains(body, `value="member@example.com"`) {
		t.Fatalf("expected flash error and email on signup page, got:\n%s", body)
	}
}

func TestLoginIssuesSession(t *testing.T) {
	env := newTestApp(t)
	env.signup(t, "member@example.com")

	response := env.postForm(t, "/api/auth/login", url.Values{
		"email":    {"member@example.com"},
		"password": {testPassword},
		"next":     {"/test-pack"},
	}, nil)
	assertRedirect(t, response, "/test-pack")
	cookies := liveCookies(response.Cookies())
	if cookies[services.AccessCookieName] == "" || cookies[services.RefreshCookieName] == "" {
		t.Fatalf("expected session cookies, got %v", cookies)
	}
	access := responseCookie(response.Cookies(), services.AccessCookieName)
	if !access.HttpOnly || access.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected access cookie attributes %+v", access)
	}
}

func TestLoginRejectsBadCredentialsAndOpenRedirects(t *testing.T) {
	env := newTestApp(t)
	env.signup(t, "member@example.com")

	response := env.postJSON(t, "/api/auth/login", `{"email":"member@example.com","password":"WrongPass1"}`, nil)
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", response.StatusCode)
	}

	offsite := env.postForm(t, "/api/auth/login", url.Values{
		"email":    {"member@example.com"},
		"password": {testPassword},
		"next":     {"//evil.example.com/phish"},
	}, nil)
	assertRedirect(t, offsite, "/dashboard")
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestApp(t)
	cookies := env.signup(t, "member@example.com")

	response := env.postForm(t, "/api/auth/logout", url.Values{}, cookies)
	assertRedirect(t, response, "/")
	assertDeletedCookie(t, response, services.AccessCookieName)
	assertDeletedCookie(t, response, services.RefreshCookieName)

	refreshOnly := map[string]string{services.RefreshCookieName: cookies[services.RefreshCookieName]}
	assertRedirect(t, env.get(t, "/dashboard", refreshOnly), "/login")
}

func TestMagicLinkIsDeliveredOutOfBand(t *testing.T) {
	env := newTestApp(t)
	env.signup(t, "member@example.com")

	known := env.postJSON(t, "/api/auth/magic-link", `{"email":"Member@Example.com"}`, nil)
	unknown := env.postJSON(t, "/api/auth/magic-link", `{"email":"nobody@example.com"}`, nil)
	for _, response := range []*http.Response{known, unknown} {
		if response.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", response.StatusCode)
		}
		if body := readBody(t, response); strings.TrimSpace(body) != `{"ok":true}` {
			t.Fatalf("expected identical bodies without a link, got %s", body)
		}
		if len(response.Cookies()) != 0 {
			t.Fatalf("expected no session from requesting a link, got %v", response.Cookies())
		}
	}

	sent := env.outbox.messages()
	if len(sent) != 1 || sent[0].email != "member@example.com" {
		t.Fatalf("expected one link mailed to the account owner, got %+v", sent)
	}
	const prefix = "http://vitaminpack.test/auth/callback?code="
	if !strings.HasPrefix(sent[0].link, prefix) {
		t.Fatalf("expected absolute callback link, got %q", sent[0].link)
	}
}

func TestMagicLinkCallbackIsSingleUse(t *testing.T) {
	env := newTestApp(t)
	env.signup(t, "member@example.com")
	env.postJSON(t, "/api/auth/magic-link", `{"email":"member@example.com"}`, nil)

	sent := env.outbox.messages()
	if len(sent) != 1 {
		t.Fatalf("expected one mailed link, got %d", len(sent))
	}
	path := strings.TrimPrefix(sent[0].link, "http://vitaminpack.test")

	callback := env.get(t, path, nil)
	assertRedirect(t, callback, "/dashboard")
	if liveCookies(callback.Cookies())[services.AccessCookieName] == "" {
		t.Fatalf("expected session cookies from callback, got %v", callback.Cookies())
	}

	replay := env.get(t, path, nil)
	assertRedirect(t, replay, "/login")
	if responseCookie(replay.Cookies(), services.AccessCookieName) != nil {
		t.Fatal("expected a used link to grant no session")
	}
}

func TestAuthCallbackRejectsInvalidCode(t *testing.T) {
	env := newTestApp(t)

	response := env.get(t, "/auth/callback?code=forged", nil)
	assertRedirect(t, response, "/login")
	if responseCookie(response.Cookies(), services.AccessCookieName) != nil {
		t.Fatal("expected no session for an invalid code")
	}
}
