package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskflow/vacation/auth"
	"github.com/taskflow/vacation/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbi.AutoMigrate(&models.User{}, &models.VacationRequest{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbi
}

func seedTestUser(t *testing.T, db *gorm.DB, email, password string, role models.Role, managerID *uint) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{Email: email, Password: string(hash), Name: email, Role: role, ManagerID: managerID}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return &u
}

func seedTestVacation(t *testing.T, db *gorm.DB, userID uint, start, end models.Date, status models.VacationStatus) *models.VacationRequest {
	t.Helper()
	vr := models.VacationRequest{UserID: userID, StartDate: start, EndDate: end, Status: status}
	if err := db.Create(&vr).Error; err != nil {
		t.Fatalf("seed vacation: %v", err)
	}
	return &vr
}

// authedRequest builds a request already carrying the viewer's identity, the
// way the auth middleware would after token validation.
func authedRequest(t *testing.T, method, target string, body any, viewer *models.User) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	if viewer != nil {
		r = r.WithContext(auth.WithUserID(r.Context(), viewer.ID))
	}
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}
