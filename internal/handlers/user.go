package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/taskflow/vacation/httpx"
	"github.com/taskflow/vacation/internal/models"
	"github.com/taskflow/vacation/internal/services"
	"github.com/taskflow/vacation/validation"

	"gorm.io/gorm"
)

// UserHandler exposes admin-only account management.
type UserHandler struct {
	DB  *gorm.DB
	Svc *services.UserService
}

func NewUserHandler(db *gorm.DB, svc *services.UserService) *UserHandler {
	return &UserHandler{DB: db, Svc: svc}
}

func (h *UserHandler) requireAdmin(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	viewer, ok := currentUser(w, r, h.DB)
	if !ok {
		return nil, false
	}
	if viewer.Role != models.RoleAdmin {
		httpx.JSONError(w, http.StatusForbidden, "admin_only", nil)
		return nil, false
	}
	return viewer, true
}

// List: GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	users, err := h.Svc.List()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_users", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

type createUserReq struct {
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	ManagerID *uint       `json:"managerId"`
}

// Create: POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("email", req.Email, v)
	if _, ok := v["email"]; !ok {
		validation.Email("email", req.Email, v)
	}
	validation.Required("password", req.Password, v)
	validation.Required("name", req.Name, v)
	validation.OneOf("role", string(req.Role), []string{
		string(models.RoleAdmin), string(models.RoleManager), string(models.RoleCollaborator),
	}, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	user, err := h.Svc.Create(services.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Role:      req.Role,
		ManagerID: req.ManagerID,
	})
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		httpx.JSONError(w, http.StatusConflict, "email_already_exists", nil)
		return
	case errors.Is(err, services.ErrManagerNotFound):
		httpx.JSONError(w, http.StatusBadRequest, "manager_not_found", nil)
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_user", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

type updateUserReq struct {
	Email     *string      `json:"email"`
	Name      *string      `json:"name"`
	Role      *models.Role `json:"role"`
	ManagerID *uint        `json:"managerId"`
}

// Update: PUT /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Role != nil && !req.Role.Valid() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"role": "invalid_value"})
		return
	}
	user, err := h.Svc.Update(id, services.UpdateUserInput{
		Email:     req.Email,
		Name:      req.Name,
		Role:      req.Role,
		ManagerID: req.ManagerID,
	})
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	case errors.Is(err, services.ErrEmailTaken):
		httpx.JSONError(w, http.StatusConflict, "email_already_exists", nil)
		return
	case errors.Is(err, services.ErrManagerNotFound):
		httpx.JSONError(w, http.StatusBadRequest, "manager_not_found", nil)
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_user", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// Delete: DELETE /users/{id}. Blocked deletions carry structured flags the
// dashboard branches on (dependent vacations, own account).
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.Svc.Delete(viewer, id)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	case errors.Is(err, services.ErrUserHasVacations):
		httpx.JSONErrorFlags(w, http.StatusConflict, "user_has_vacations", true, false)
		return
	case errors.Is(err, services.ErrCannotDeleteSelf):
		httpx.JSONErrorFlags(w, http.StatusBadRequest, "cannot_delete_self", false, true)
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_user", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path value, or writes 400.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := r.PathValue("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}
