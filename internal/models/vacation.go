package models

import "time"

// VacationStatus is the lifecycle state of a vacation request.
type VacationStatus string

const (
	StatusPending  VacationStatus = "PENDING"
	StatusApproved VacationStatus = "APPROVED"
	StatusRejected VacationStatus = "REJECTED"
)

// VacationRequest is the persisted request entity.
type VacationRequest struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	UserID    uint           `gorm:"index;not null" json:"userId"`
	User      *User          `gorm:"foreignKey:UserID" json:"-"`
	StartDate Date           `gorm:"not null" json:"startDate"`
	EndDate   Date           `gorm:"not null" json:"endDate"`
	Status    VacationStatus `gorm:"size:32;not null" json:"status"`
}

// VacationResponse is the wire shape sent to clients: the entity plus the
// requester's name denormalized for display.
type VacationResponse struct {
	ID        uint           `json:"id"`
	UserID    uint           `json:"userId"`
	UserName  string         `json:"userName"`
	StartDate Date           `json:"startDate"`
	EndDate   Date           `json:"endDate"`
	Status    VacationStatus `json:"status"`
}

// ToResponse denormalizes the requester name into the wire shape.
func (vr VacationRequest) ToResponse() VacationResponse {
	name := ""
	if vr.User != nil {
		name = vr.User.Name
	}
	return VacationResponse{
		ID:        vr.ID,
		UserID:    vr.UserID,
		UserName:  name,
		StartDate: vr.StartDate,
		EndDate:   vr.EndDate,
		Status:    vr.Status,
	}
}
