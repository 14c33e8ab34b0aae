package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/terraincognita07/vitaminpack/internal/db"
	"github.com/terraincognita07/vitaminpack/internal/fulfillment"
	"github.com/terraincognita07/vitaminpack/internal/gate"
	"github.com/terraincognita07/vitaminpack/internal/metrics"
	"github.com/terraincognita07/vitaminpack/internal/services"
)

const (
	testSecretKey = "test-secret-key-with-at-least-32-chars"
	testPassword  = "StrongPass1"
)

type testAppOptions struct {
	profileChecker gate.ProfileChecker
	fulfillmentURL string
}

type testApp struct {
	app      *fiber.App
	repos    *db.Repositories
	sessions *services.SessionService
	registry *prometheus.Registry
	outbox   *recordingSender
}

type sentLink struct {
	email string
	link  string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentLink
}

func (sender *recordingSender) SendMagicLink(_ context.Context, email string, link string) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	sender.sent = append(sender.sent, sentLink{email: email, link: link})
	return nil
}

func (sender *recordingSender) messages() []sentLink {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	return append([]sentLink(nil), sender.sent...)
}

type failingProfileChecker struct{}

func (failingProfileChecker) ProfileExists(context.Context, string) (bool, error) {
	return false, io.ErrUnexpectedEOF
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithOptions(t, testAppOptions{})
}

func newTestAppWithOptions(t *testing.T, options testAppOptions) *testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "vitaminpack-api-test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	repos := db.NewRepositories(database, nil)
	sessions, err := services.NewSessionService(repos.RefreshTokens, repos.CallbackCodes, services.SessionConfig{SecretKey: []byte(testSecretKey)})
	if err != nil {
		t.Fatalf("init sessions: %v", err)
	}
	profiles := services.NewProfileService(repos.Profiles)

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewGateRecorder(registry)
	if err != nil {
		t.Fatalf("init metrics: %v", err)
	}

	outbox := &recordingSender{}
	var checker gate.ProfileChecker = profiles
	if options.profileChecker != nil {
		checker = options.profileChecker
	}

	handler, err := NewHandler(Dependencies{
		Gate:        gate.New(sessions, checker, gate.Options{Recorder: recorder}),
		Auth:        services.NewAuthService(repos.Users),
		Sessions:    sessions,
		Profiles:    profiles,
		Fulfillment: fulfillment.NewClient(fulfillment.Config{URL: options.fulfillmentURL}, nil),
		MagicLinks:  outbox,
		Metrics:     registry,
		PublicURL:   "http://vitaminpack.test/",
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	return &testApp{app: app, repos: repos, sessions: sessions, registry: registry, outbox: outbox}
}

func (env *testApp) do(t *testing.T, request *http.Request) *http.Response {
	t.Helper()

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", request.Method, request.URL.Path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func (env *testApp) get(t *testing.T, path string, cookies map[string]string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	setCookieHeader(request, cookies)
	return env.do(t, request)
}

func (env *testApp) postForm(t *testing.T, path string, form url.Values, cookies map[string]string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	setCookieHeader(request, cookies)
	return env.do(t, request)
}

func (env *testApp) postJSON(t *testing.T, path string, body string, cookies map[string]string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	setCookieHeader(request, cookies)
	return env.do(t, request)
}

// signup registers a user through the API and returns the session cookies.
func (env *testApp) signup(t *testing.T, email string) map[string]string {
	t.Helper()

	response := env.postForm(t, "/api/auth/signup", url.Values{
		"email":    {email},
		"password": {testPassword},
	}, nil)
	assertRedirect(t, response, "/dashboard")

	cookies := liveCookies(response.Cookies())
	if cookies[services.AccessCookieName] == "" || cookies[services.RefreshCookieName] == "" {
		t.Fatalf("expected session cookies after signup, got %v", cookies)
	}
	return cookies
}

func (env *testApp) onboard(t *testing.T, cookies map[string]string) *http.Response {
	t.Helper()

	return env.postForm(t, "/api/onboarding", url.Values{
		"display_name": {"Sam"},
		"health_goals": {"sleep", "focus"},
		"diet":         {"vegan"},
	}, cookies)
}

func setCookieHeader(request *http.Request, cookies map[string]string) {
	for name, value := range cookies {
		request.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

// liveCookies keeps cookies that were set, not deleted.
func liveCookies(cookies []*http.Cookie) map[string]string {
	jar := map[string]string{}
	for _, cookie := range cookies {
		if cookie.Value != "" {
			jar[cookie.Name] = cookie.Value
		}
	}
	return jar
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func assertRedirect(t *testing.T, response *http.Response, location string) {
	t.Helper()

	if response.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 to %s, got %d", location, response.StatusCode)
	}
	if got := response.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %q", location, got)
	}
}

func assertDeletedCookie(t *testing.T, response *http.Response, name string) {
	t.Helper()

	cookie := responseCookie(response.Cookies(), name)
	if cookie == nil {
		t.Fatalf("expected %s to be deleted, no Set-Cookie found", name)
	}
	if cookie.Value != "" || cookie.Expires.Year() > 1970 {
		t.Fatalf("expected %s deletion, got %+v", name, cookie)
	}
}

func readBody(t *testing.T, response *http.Response) string {
	t.Helper()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}
