package models

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleManager      Role = "MANAGER"
	RoleCollaborator Role = "COLLABORATOR"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleCollaborator
}

// CanModerate reports whether the role may approve or reject vacation requests.
func (r Role) CanModerate() bool {
	return r == RoleAdmin || r == RoleManager
}

// User represents an account in the system.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"` // hashed, never exposed in JSON
	Role      Role      `gorm:"size:32;not null" json:"role"`
	// ManagerID links a collaborator to their manager. The manager is not
	// owned by the collaborator; it is a plain relational reference.
	ManagerID *uint `gorm:"index" json:"managerId,omitempty"`
	Manager   *User `gorm:"foreignKey:ManagerID" json:"-"`
}
