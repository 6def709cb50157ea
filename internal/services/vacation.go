package services

import (
	"errors"
	"fmt"

	"github.com/taskflow/vacation/internal/models"

	"gorm.io/gorm"
)

var (
	ErrVacationNotFound = errors.New("vacation_not_found")
	ErrDateOrder        = errors.New("start_after_end")
	ErrOverlap          = errors.New("dates_overlap_approved_vacation")
	ErrNotPending       = errors.New("request_not_pending")
	ErrForbidden        = errors.New("forbidden")
)

// VacationService owns the vacation-request lifecycle and its role-based
// visibility rules.
type VacationService struct{ DB *gorm.DB }

func NewVacationService(db *gorm.DB) *VacationService { return &VacationService{DB: db} }

// ListFor returns the requests the viewer is allowed to see: admins see all,
// managers see their team's, collaborators only their own.
func (s *VacationService) ListFor(viewer *models.User) ([]models.VacationResponse, error) {
	q := s.DB.Preload("User").Order("id")
	switch viewer.Role {
	case models.RoleAdmin:
		// no scoping
	case models.RoleManager:
		q = q.Joins("JOIN users ON users.id = vacation_requests.user_id").
			Where("users.manager_id = ? OR vacation_requests.user_id = ?", viewer.ID, viewer.ID)
	default:
		q = q.Where("user_id = ?", viewer.ID)
	}
	var reqs []models.VacationRequest
	if err := q.Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("list vacations: %w", err)
	}
	out := make([]models.VacationResponse, 0, len(reqs))
	for _, vr := range reqs {
		out = append(out, vr.ToResponse())
	}
	return out, nil
}

// Create records a PENDING request for the requester after checking date order
// and overlap against other employees' already-approved vacations.
func (s *VacationService) Create(requester *models.User, start, end models.Date) (*models.VacationResponse, error) {
	if start.After(end.Time) {
		return nil, ErrDateOrder
	}
	var overlapping int64
	err := s.DB.Model(&models.VacationRequest{}).
		Where("user_id != ? AND status = ? AND start_date <= ? AND end_date >= ?",
			requester.ID, models.StatusApproved, end, start).
		Count(&overlapping).Error
	if err != nil {
		return nil, fmt.Errorf("overlap check: %w", err)
	}
	if overlapping > 0 {
		return nil, ErrOverlap
	}
	vr := models.VacationRequest{
		UserID:    requester.ID,
		User:      requester,
		StartDate: start,
		EndDate:   end,
		Status:    models.StatusPending,
	}
	if err := s.DB.Create(&vr).Error; err != nil {
		return nil, fmt.Errorf("create vacation: %w", err)
	}
	resp := vr.ToResponse()
	return &resp, nil
}

// Approve transitions a PENDING request to APPROVED.
func (s *VacationService) Approve(viewer *models.User, id uint) (*models.VacationResponse, error) {
	return s.transition(viewer, id, models.StatusApproved)
}

// Reject transitions a PENDING request to REJECTED.
func (s *VacationService) Reject(viewer *models.User, id uint) (*models.VacationResponse, error) {
	return s.transition(viewer, id, models.StatusRejected)
}

func (s *VacationService) transition(viewer *models.User, id uint, to models.VacationStatus) (*models.VacationResponse, error) {
	vr, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !viewer.Role.CanModerate() {
		return nil, ErrForbidden
	}
	if viewer.Role == models.RoleManager {
		// Managers only moderate requests from their own team.
		if vr.User == nil || vr.User.ManagerID == nil || *vr.User.ManagerID != viewer.ID {
			return nil, ErrForbidden
		}
	}
	if vr.Status != models.StatusPending {
		return nil, ErrNotPending
	}
	if err := s.DB.Model(vr).Update("status", to).Error; err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	vr.Status = to
	resp := vr.ToResponse()
	return &resp, nil
}

// Delete removes a request. Collaborators may only delete their own.
func (s *VacationService) Delete(viewer *models.User, id uint) error {
	vr, err := s.load(id)
	if err != nil {
		return err
	}
	if viewer.Role == models.RoleCollaborator && vr.UserID != viewer.ID {
		return ErrForbidden
	}
	if err := s.DB.Delete(&models.VacationRequest{}, id).Error; err != nil {
		return fmt.Errorf("delete vacation: %w", err)
	}
	return nil
}

func (s *VacationService) load(id uint) (*models.VacationRequest, error) {
	var vr models.VacationRequest
	if err := s.DB.Preload("User").First(&vr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVacationNotFound
		}
		return nil, fmt.Errorf("load vacation: %w", err)
	}
	return &vr, nil
}
