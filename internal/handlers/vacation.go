package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskflow/vacation/httpx"
	"github.com/taskflow/vacation/internal/models"
	"github.com/taskflow/vacation/internal/services"
	"github.com/taskflow/vacation/validation"

	"gorm.io/gorm"
)

// VacationHandler exposes the vacation-request lifecycle.
type VacationHandler struct {
	DB  *gorm.DB
	Svc *services.VacationService
}

func NewVacationHandler(db *gorm.DB, svc *services.VacationService) *VacationHandler {
	return &VacationHandler{DB: db, Svc: svc}
}

// List: GET /vacations, scoped to the viewer's role.
func (h *VacationHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r, h.DB)
	if !ok {
		return
	}
	vacations, err := h.Svc.ListFor(viewer)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_vacations", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, vacations)
}

type createVacationReq struct {
	StartDate models.Date `json:"startDate"`
	EndDate   models.Date `json:"endDate"`
}

// Create: POST /vacations. The request is always filed for the viewer.
func (h *VacationHandler) Create(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r, h.DB)
	if !ok {
		return
	}
	var req createVacationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("startDate", req.StartDate.String(), v)
	validation.Required("endDate", req.EndDate.String(), v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	resp, err := h.Svc.Create(viewer, req.StartDate, req.EndDate)
	switch {
	case errors.Is(err, services.ErrDateOrder):
		httpx.JSONError(w, http.StatusBadRequest, "start_after_end", nil)
		return
	case errors.Is(err, services.ErrOverlap):
		httpx.JSONError(w, http.StatusConflict, "dates_overlap_approved_vacation", nil)
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_vacation", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, resp)
}

// Approve: PUT /vacations/{id}/approve
func (h *VacationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.Approve)
}

// Reject: PUT /vacations/{id}/reject
func (h *VacationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.Reject)
}

func (h *VacationHandler) transition(w http.ResponseWriter, r *http.Request,
	op func(*models.User, uint) (*models.VacationResponse, error)) {
	viewer, ok := currentUser(w, r, h.DB)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	resp, err := op(viewer, id)
	switch {
	case errors.Is(err, services.ErrVacationNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	case errors.Is(err, services.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	case errors.Is(err, services.ErrNotPending):
		httpx.JSONError(w, http.StatusConflict, "request_not_pending", nil)
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_vacation", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// Delete: DELETE /vacations/{id}
func (h *VacationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r, h.DB)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.Svc.Delete(viewer, id)
	switch {
	case errors.Is(err, services.ErrVacationNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	case errors.Is(err, services.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	case err != nil:
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_vacation", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
