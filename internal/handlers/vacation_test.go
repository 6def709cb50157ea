package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/taskflow/vacation/internal/models"
	"github.com/taskflow/vacation/internal/services"
)

func TestVacationListScoping(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, "admin@taskflow.com", "admin123", models.RoleAdmin, nil)
	manager := seedTestUser(t, db, "manager@taskflow.com", "manager123", models.RoleManager, nil)
	collab := seedTestUser(t, db, "user@taskflow.com", "user123", models.RoleCollaborator, &manager.ID)
	outsider := seedTestUser(t, db, "other@taskflow.com", "user123", models.RoleCollaborator, nil)

	seedTestVacation(t, db, collab.ID, models.NewDate(2026, 9, 1), models.NewDate(2026, 9, 5), models.StatusPending)
	seedTestVacation(t, db, outsider.ID, models.NewDate(2026, 9, 10), models.NewDate(2026, 9, 12), models.StatusPending)
	seedTestVacation(t, db, manager.ID, models.NewDate(2026, 10, 1), models.NewDate(2026, 10, 2), models.StatusPending)

	h := NewVacationHandler(db, services.NewVacationService(db))
	list := func(viewer *models.User) []models.VacationResponse {
		w := httptest.NewRecorder()
		h.List(w, authedRequest(t, http.MethodGet, "/vacations", nil, viewer))
		if w.Code != http.StatusOK {
			t.Fatalf("list for %s: expected 200 got %d body=%s", viewer.Email, w.Code, w.Body.String())
		}
		var out []models.VacationResponse
		decodeBody(t, w, &out)
		return out
	}

	if got := list(admin); len(got) != 3 {
		t.Fatalf("admin sees %d requests, want 3", len(got))
	}
	// Manager sees their team's requests plus their own.
	if got := list(manager); len(got) != 2 {
		t.Fatalf("manager sees %d requests, want 2", len(got))
	}
	got := list(collab)
	if len(got) != 1 || got[0].UserID != collab.ID {
		t.Fatalf("collaborator should only see own requests, got %+v", got)
	}
	if got[0].UserName != collab.Name {
		t.Fatalf("response missing denormalized user name: %+v", got[0])
	}
}

func TestVacationCreate(t *testing.T) {
	db := setupTestDB(t)
	collab := seedTestUser(t, db, "user@taskflow.com", "user123", models.RoleCollaborator, nil)
	other := seedTestUser(t, db, "other@taskflow.com", "user123", models.RoleCollaborator, nil)
	h := NewVacationHandler(db, services.NewVacationService(db))

	create := func(body map[string]string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.Create(w, authedRequest(t, http.MethodPost, "/vacations", body, collab))
		return w
	}

	w := create(map[string]string{"startDate": "2026-09-01", "endDate": "2026-09-05"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var resp models.VacationResponse
	decodeBody(t, w, &resp)
	if resp.Status != models.StatusPending || resp.UserID != collab.ID {
		t.Fatalf("new request should be pending and owned by requester: %+v", resp)
	}

	// end before start
	w = create(map[string]string{"startDate": "2026-09-10", "endDate": "2026-09-08"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("reversed dates: expected 400 got %d", w.Code)
	}

	// overlap with another employee's approved vacation
	seedTestVacation(t, db, other.ID, models.NewDate(2026, 10, 1), models.NewDate(2026, 10, 10), models.StatusApproved)
	w = create(map[string]string{"startDate": "2026-10-05", "endDate": "2026-10-15"})
	if w.Code != http.StatusConflict {
		t.Fatalf("overlap: expected 409 got %d body=%s", w.Code, w.Body.String())
	}

	// overlapping a pending request is allowed
	w = create(map[string]string{"startDate": "2026-11-01", "endDate": "2026-11-05"})
	if w.Code != http.StatusCreated {
		t.Fatalf("setup create failed: %d", w.Code)
	}
	w2 := httptest.NewRecorder()
	h.Create(w2, authedRequest(t, http.MethodPost, "/vacations",
		map[string]string{"startDate": "2026-11-03", "endDate": "2026-11-07"}, other))
	if w2.Code != http.StatusCreated {
		t.Fatalf("pending overlap should pass, got %d body=%s", w2.Code, w2.Body.String())
	}
}

func TestVacationApproveRejectPolicy(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, "admin@taskflow.com", "admin123", models.RoleAdmin, nil)
	manager := seedTestUser(t, db, "manager@taskflow.com", "manager123", models.RoleManager, nil)
	collab := seedTestUser(t, db, "user@taskflow.com", "user123", models.RoleCollaborator, &manager.ID)
	outsider := seedTestUser(t, db, "other@taskflow.com", "user123", models.RoleCollaborator, nil)
	h := NewVacationHandler(db, services.NewVacationService(db))

	put := func(viewer *models.User, id uint, action string) *httptest.ResponseRecorder {
		idStr := strconv.Itoa(int(id))
		r := authedRequest(t, http.MethodPut, "/vacations/"+idStr+"/"+action, nil, viewer)
		r.SetPathValue("id", idStr)
		w := httptest.NewRecorder()
		if action == "approve" {
			h.Approve(w, r)
		} else {
			h.Reject(w, r)
		}
		return w
	}

	vr := seedTestVacation(t, db, collab.ID, models.NewDate(2026, 9, 1), models.NewDate(2026, 9, 5), models.StatusPending)

	// collaborators cannot moderate
	if w := put(collab, vr.ID, "approve"); w.Code != http.StatusForbidden {
		t.Fatalf("collaborator approve: expected 403 got %d", w.Code)
	}
	// manager approves own team
	w := put(manager, vr.ID, "approve")
	if w.Code != http.StatusOK {
		t.Fatalf("manager approve: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp models.VacationResponse
	decodeBody(t, w, &resp)
	if resp.Status != models.StatusApproved {
		t.Fatalf("expected APPROVED got %s", resp.Status)
	}
	// already decided
	if w := put(manager, vr.ID, "reject"); w.Code != http.StatusConflict {
		t.Fatalf("re-decide: expected 409 got %d", w.Code)
	}

	// manager cannot moderate outside their team
	foreign := seedTestVacation(t, db, outsider.ID, models.NewDate(2026, 9, 10), models.NewDate(2026, 9, 12), models.StatusPending)
	if w := put(manager, foreign.ID, "reject"); w.Code != http.StatusForbidden {
		t.Fatalf("manager foreign reject: expected 403 got %d", w.Code)
	}
	// admin can
	w = put(admin, foreign.ID, "reject")
	if w.Code != http.StatusOK {
		t.Fatalf("admin reject: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	decodeBody(t, w, &resp)
	if resp.Status != models.StatusRejected {
		t.Fatalf("expected REJECTED got %s", resp.Status)
	}

	if w := put(admin, 9999, "approve"); w.Code != http.StatusNotFound {
		t.Fatalf("missing request: expected 404 got %d", w.Code)
	}
}

func TestVacationDeleteOwnership(t *testing.T) {
	db := setupTestDB(t)
	admin := seedTestUser(t, db, "admin@taskflow.com", "admin123", models.RoleAdmin, nil)
	collab := seedTestUser(t, db, "user@taskflow.com", "user123", models.RoleCollaborator, nil)
	outsider := seedTestUser(t, db, "other@taskflow.com", "user123", models.RoleCollaborator, nil)
	h := NewVacationHandler(db, services.NewVacationService(db))

	del := func(viewer *models.User, id uint) *httptest.ResponseRecorder {
		idStr := strconv.Itoa(int(id))
		r := authedRequest(t, http.MethodDelete, "/vacations/"+idStr, nil, viewer)
		r.SetPathValue("id", idStr)
		w := httptest.NewRecorder()
		h.Delete(w, r)
		return w
	}

	vr := seedTestVacation(t, db, collab.ID, models.NewDate(2026, 9, 1), models.NewDate(2026, 9, 5), models.StatusPending)
	if w := del(outsider, vr.ID); w.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: expected 403 got %d", w.Code)
	}
	if w := del(collab, vr.ID); w.Code != http.StatusNoContent {
		t.Fatalf("own delete: expected 204 got %d", w.Code)
	}

	vr2 := seedTestVacation(t, db, collab.ID, models.NewDate(2026, 10, 1), models.NewDate(2026, 10, 5), models.StatusApproved)
	if w := del(admin, vr2.ID); w.Code != http.StatusNoContent {
		t.Fatalf("admin delete: expected 204 got %d", w.Code)
	}
	if w := del(admin, vr2.ID); w.Code != http.StatusNotFound {
		t.Fatalf("double delete: expected 404 got %d", w.Code)
	}
}
