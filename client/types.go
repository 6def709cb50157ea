package client

import (
	"fmt"
	"strings"
	"time"
)

// Role mirrors the server-side account roles.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleManager      Role = "MANAGER"
	RoleCollaborator Role = "COLLABORATOR"
)

// CanModerate reports whether the role may approve or reject requests.
func (r Role) CanModerate() bool { return r == RoleAdmin || r == RoleManager }

// Status is the lifecycle state of a vacation request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

const dateFormat = "2006-01-02"

// Date is a calendar day carried as yyyy-mm-dd on the wire.
type Date struct{ time.Time }

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// Today returns the current day at midnight UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateFormat)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateFormat) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Session is the authenticated identity returned by Login. Callers attach it
// to a Client explicitly; the package keeps no ambient token state.
type Session struct {
	Token  string `json:"token"`
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// User is the wire shape of an account (password never crosses the wire back).
type User struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	ManagerID *uint  `json:"managerId,omitempty"`
}

// VacationRequest is the wire shape of a request, with the requester's name
// denormalized for display.
type VacationRequest struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"userId"`
	UserName  string `json:"userName"`
	StartDate Date   `json:"startDate"`
	EndDate   Date   `json:"endDate"`
	Status    Status `json:"status"`
}

// CreateUserInput is the payload for CreateUser.
type CreateUserInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	ManagerID *uint  `json:"managerId,omitempty"`
}

// UpdateUserInput carries the fields to change; nil fields are left untouched.
type UpdateUserInput struct {
	Email     *string `json:"email,omitempty"`
	Name      *string `json:"name,omitempty"`
	Role      *Role   `json:"role,omitempty"`
	ManagerID *uint   `json:"managerId,omitempty"`
}
