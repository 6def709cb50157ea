package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskflow/vacation/auth"
	"github.com/taskflow/vacation/internal/models"
)

func TestLoginIssuesToken(t *testing.T) {
	db := setupTestDB(t)
	u := seedTestUser(t, db, "admin@taskflow.com", "admin123", models.RoleAdmin, nil)

	h := NewAuthHandler(db)
	r := authedRequest(t, http.MethodPost, "/auth/login",
		map[string]string{"email": "admin@taskflow.com", "password": "admin123"}, nil)
	w := httptest.NewRecorder()
	h.Login(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp sessionResponse
	decodeBody(t, w, &resp)
	if resp.Token == "" {
		t.Fatalf("missing token in %s", w.Body.String())
	}
	if resp.UserID != u.ID || resp.Role != models.RoleAdmin {
		t.Fatalf("unexpected session payload: %+v", resp)
	}
	uid, err := auth.ParseToken(resp.Token)
	if err != nil || uid != u.ID {
		t.Fatalf("token does not resolve to user: uid=%d err=%v", uid, err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	seedTestUser(t, db, "admin@taskflow.com", "admin123", models.RoleAdmin, nil)
	h := NewAuthHandler(db)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"wrong password", map[string]string{"email": "admin@taskflow.com", "password": "nope"}},
		{"unknown email", map[string]string{"email": "ghost@taskflow.com", "password": "admin123"}},
		{"empty password", map[string]string{"email": "admin@taskflow.com", "password": ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := authedRequest(t, http.MethodPost, "/auth/login", tc.body, nil)
			w := httptest.NewRecorder()
			h.Login(w, r)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 got %d", w.Code)
			}
			var resp map[string]string
			decodeBody(t, w, &resp)
			if resp["error"] != "invalid_credentials" {
				t.Fatalf("expected generic error, got %q", resp["error"])
			}
		})
	}
}
