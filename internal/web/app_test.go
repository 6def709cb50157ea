package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/taskflow/vacation/client"
	"github.com/taskflow/vacation/internal/db"
	"github.com/taskflow/vacation/internal/models"
	"github.com/taskflow/vacation/internal/server"
	"github.com/taskflow/vacation/view"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func startAPI(t *testing.T) *httptest.Server {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:web_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbi.AutoMigrate(&models.User{}, &models.VacationRequest{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Seed(dbi); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ts := httptest.NewServer(server.New(dbi))
	t.Cleanup(ts.Close)
	return ts
}

func TestSessionCookieRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	sess := &client.Session{Token: "tok", UserID: 3, Email: "a@b.c", Name: "A", Role: client.RoleManager}
	if err := writeSession(w, sess); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	got, ok := readSession(r)
	if !ok || got.Token != "tok" || got.Role != client.RoleManager {
		t.Fatalf("round trip failed: %+v ok=%v", got, ok)
	}
}

func TestLoginPageRenders(t *testing.T) {
	view.ResetForTests()
	app := New("http://unused.invalid")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Sign in") {
		t.Fatalf("login form missing: %s", w.Body.String())
	}
}

func TestLoginAndDashboardFlow(t *testing.T) {
	view.ResetForTests()
	api := startAPI(t)
	app := New(api.URL)

	// wrong password re-renders the form
	form := url.Values{"email": {"admin@taskflow.com"}, "password": {"nope"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "invalid email or password") {
		t.Fatalf("bad login: code=%d body=%s", w.Code, w.Body.String())
	}

	// good credentials set the session cookie and redirect
	form.Set("password", "admin123")
	r = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	app.ServeHTTP(w, r)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect got %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no session cookie set")
	}

	r = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w = httptest.NewRecorder()
	app.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"Vacation requests", "Users", "Request time off"} {
		if !strings.Contains(body, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}

	// without the cookie the dashboard bounces to login
	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect for anonymous viewer, got %d", w.Code)
	}
}
