package db

import (
	"fmt"

	"github.com/taskflow/vacation/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed creates the three default accounts when the user table is empty:
// an admin, a manager, and a collaborator reporting to that manager.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := seedUser(db, "admin@taskflow.com", "admin123", "Admin User", models.RoleAdmin, nil); err != nil {
		return err
	}
	manager, err := seedUser(db, "manager@taskflow.com", "manager123", "Manager User", models.RoleManager, nil)
	if err != nil {
		return err
	}
	if _, err := seedUser(db, "user@taskflow.com", "user123", "Collaborator User", models.RoleCollaborator, &manager.ID); err != nil {
		return err
	}
	return nil
}

func seedUser(db *gorm.DB, email, password, name string, role models.Role, managerID *uint) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", email, err)
	}
	u := models.User{Email: email, Password: string(hash), Name: name, Role: role, ManagerID: managerID}
	if err := db.Create(&u).Error; err != nil {
		return nil, fmt.Errorf("seed user %s: %w", email, err)
	}
	return &u, nil
}
