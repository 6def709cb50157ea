package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskflow/vacation/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound     = errors.New("user_not_found")
	ErrEmailTaken       = errors.New("email_already_exists")
	ErrManagerNotFound  = errors.New("manager_not_found")
	ErrUserHasVacations = errors.New("user_has_vacations")
	ErrCannotDeleteSelf = errors.New("cannot_delete_self")
)

// UserService owns account management (admin-only at the HTTP layer).
type UserService struct{ DB *gorm.DB }

func NewUserService(db *gorm.DB) *UserService { return &UserService{DB: db} }

type CreateUserInput struct {
	Email     string
	Password  string
	Name      string
	Role      models.Role
	ManagerID *uint
}

type UpdateUserInput struct {
	Email     *string
	Name      *string
	Role      *models.Role
	ManagerID *uint
}

func (s *UserService) List() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(id uint) (*models.User, error) {
	var u models.User
	if err := s.DB.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &u, nil
}

// GetByEmail looks an account up by its (unique) email.
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var u models.User
	if err := s.DB.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user by email: %w", err)
	}
	return &u, nil
}

func (s *UserService) Create(in CreateUserInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	if in.ManagerID != nil {
		if err := s.ensureManagerExists(*in.ManagerID); err != nil {
			return nil, err
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{
		Email:     email,
		Password:  string(hash),
		Name:      in.Name,
		Role:      in.Role,
		ManagerID: in.ManagerID,
	}
	if err := s.DB.Create(&u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *UserService) Update(id uint, in UpdateUserInput) (*models.User, error) {
	u, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil && *in.Email != u.Email {
		var count int64
		if err := s.DB.Model(&models.User{}).Where("email = ?", *in.Email).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return nil, ErrEmailTaken
		}
		u.Email = *in.Email
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.ManagerID != nil {
		if err := s.ensureManagerExists(*in.ManagerID); err != nil {
			return nil, err
		}
		u.ManagerID = in.ManagerID
	}
	if err := s.DB.Save(u).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Delete removes an account. It refuses the viewer's own account and any
// account that still owns vacation requests; the caller decides whether to
// cascade by deleting those requests first.
func (s *UserService) Delete(viewer *models.User, id uint) error {
	if viewer != nil && viewer.ID == id {
		return ErrCannotDeleteSelf
	}
	if _, err := s.Get(id); err != nil {
		return err
	}
	var vacations int64
	if err := s.DB.Model(&models.VacationRequest{}).Where("user_id = ?", id).Count(&vacations).Error; err != nil {
		return fmt.Errorf("count vacations: %w", err)
	}
	if vacations > 0 {
		return ErrUserHasVacations
	}
	if err := s.DB.Delete(&models.User{}, id).Error; err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *UserService) ensureManagerExists(id uint) error {
	var count int64
	if err := s.DB.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check manager: %w", err)
	}
	if count == 0 {
		return ErrManagerNotFound
	}
	return nil
}
