package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/taskflow/vacation/httpx"
	"github.com/taskflow/vacation/internal/models"
	"github.com/taskflow/vacation/internal/services"
)

func TestUserListAdminOnly(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, "admin@taskflow.com", "admin123", models.RoleAdmin, nil)
	collab := seedTestUser(t, db, "user@taskflow.com", "user123", models.RoleCollaborator, nil)
	h := NewUserHandler(db, services.NewUserService(db))

	w := httptest.NewRecorder()
	h.List(w, authedRequest(t, http.MethodGet, "/users", nil, collab))
	if w.Code != http.StatusForbidden {
		t.Fatalf("collaborator list: expected 403 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.List(w, authedRequest(t, http.MethodGet, "/users", nil, admin))
	if w.Code != http.StatusOK {
		t.Fatalf("admin list: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var users []models.User
	decodeBody(t, w, &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 users got %d", len(users))
	}
}

func TestUserCreate(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, "admin@taskflow.com", "admin123", models.RoleAdmin, nil)
	manager := seedTestUser(t, db, "manager@taskflow.com", "manager123", models.RoleManager, nil)
	h := NewUserHandler(db, services.NewUserService(db))

	body := map[string]any{
		"email": "ana@taskflow.com", "password": "secret1", "name": "Ana Silva",
		"role": "COLLABORATOR", "managerId": manager.ID,
	}
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/users", body, admin))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created models.User
	decodeBody(t, w, &created)
	if created.ID == 0 || created.Email != "ana@taskflow.com" {
		t.Fatalf("unexpected created user: %+v", created)
	}
	if created.ManagerID == nil || *created.ManagerID != manager.ID {
		t.Fatalf("managerId not persisted: %+v", created)
	}

	// duplicate email
	w = httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/users", body, admin))
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate email: expected 409 got %d", w.Code)
	}

	// unknown manager
	ghost := uint(9999)
	body2 := map[string]any{
		"email": "bob@taskflow.com", "password": "secret1", "name": "Bob",
		"role": "COLLABORATOR", "managerId": ghost,
	}
	w = httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/users", body2, admin))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown manager: expected 400 got %d body=%s", w.Code, w.Body.String())
	}

	// missing fields
	w = httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/users", map[string]any{"email": "x@y.z"}, admin))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("validation: expected 400 got %d", w.Code)
	}
}

func TestUserUpdate(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, "admin@taskflow.com", "admin123", models.RoleAdmin, nil)
	target := seedTestUser(t, db, "user@taskflow.com", "user123", models.RoleCollaborator, nil)
	h := NewUserHandler(db, services.NewUserService(db))

	r := authedRequest(t, http.MethodPut, "/users/"+strconv.Itoa(int(target.ID)),
		map[string]any{"name": "Renamed", "role": "MANAGER"}, admin)
	r.SetPathValue("id", strconv.Itoa(int(target.ID)))
	w := httptest.NewRecorder()
	h.Update(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var updated models.User
	decodeBody(t, w, &updated)
	if updated.Name != "Renamed" || updated.Role != models.RoleManager {
		t.Fatalf("update not applied: %+v", updated)
	}

	r = authedRequest(t, http.MethodPut, "/users/9999", map[string]any{"name": "X"}, admin)
	r.SetPathValue("id", "9999")
	w = httptest.NewRecorder()
	h.Update(w, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing user: expected 404 got %d", w.Code)
	}
}

func TestUserDeleteFlags(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, "admin@taskflow.com", "admin123", models.RoleAdmin, nil)
	withVac := seedTestUser(t, db, "busy@taskflow.com", "user123", models.RoleCollaborator, nil)
	clean := seedTestUser(t, db, "idle@taskflow.com", "user123", models.RoleCollaborator, nil)
	seedTestVacation(t, db, withVac.ID, models.NewDate(2026, 9, 1), models.NewDate(2026, 9, 5), models.StatusPending)
	h := NewUserHandler(db, services.NewUserService(db))

	del := func(id uint) *httptest.ResponseRecorder {
		r := authedRequest(t, http.MethodDelete, "/users/"+strconv.Itoa(int(id)), nil, admin)
		r.SetPathValue("id", strconv.Itoa(int(id)))
		w := httptest.NewRecorder()
		h.Delete(w, r)
		return w
	}

	w := del(withVac.ID)
	if w.Code != http.StatusConflict {
		t.Fatalf("user with vacations: expected 409 got %d body=%s", w.Code, w.Body.String())
	}
	var resp httpx.ErrorResponse
	decodeBody(t, w, &resp)
	if !resp.HasVacations || resp.CannotDeleteSelf {
		t.Fatalf("expected hasVacations flag, got %+v", resp)
	}

	w = del(admin.ID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self delete: expected 400 got %d", w.Code)
	}
	resp = httpx.ErrorResponse{}
	decodeBody(t, w, &resp)
	if !resp.CannotDeleteSelf || resp.HasVacations {
		t.Fatalf("expected cannotDeleteSelf flag, got %+v", resp)
	}

	w = del(clean.ID)
	if w.Code != http.StatusNoContent {
		t.Fatalf("clean delete: expected 204 got %d body=%s", w.Code, w.Body.String())
	}
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", clean.ID).Count(&count).Error; err != nil || count != 0 {
		t.Fatalf("user not deleted: count=%d err=%v", count, err)
	}
}
